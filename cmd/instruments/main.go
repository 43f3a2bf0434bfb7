package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joripage/superorder/config"
	"github.com/joripage/superorder/pkg/app"
	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		configFile string
		exchange   string
		expiry     string
		strike     string
		optionType string
	)
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&exchange, "exchange", "NSE", "Exchange for lookup")
	flag.StringVar(&expiry, "expiry", "", "Contract expiry (YYYY-MM-DD) for derivatives")
	flag.StringVar(&strike, "strike", "", "Option strike")
	flag.StringVar(&optionType, "option-type", "", "CE or PE")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: instruments [flags] refresh | lookup <symbol>")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	store, _, err := a.LoadInstruments(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load instruments: %v\n", err)
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "", "refresh":
		fmt.Printf("loaded %d instruments from %s at %s\n", store.Len(), store.Source(), store.LoadedAt().Format("2006-01-02 15:04:05"))
	case "lookup":
		var contract *model.ContractSpec
		if expiry != "" {
			contract = &model.ContractSpec{Expiry: expiry, OptionType: model.OptionType(strings.ToUpper(optionType))}
			if strike != "" {
				contract.Strike, err = decimal.NewFromString(strike)
				if err != nil {
					fmt.Fprintf(os.Stderr, "strike: %v\n", err)
					os.Exit(2)
				}
			}
		}
		inst, err := instrument.NewResolver(store).Resolve(flag.Arg(1), model.Exchange(strings.ToUpper(exchange)), contract)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(inst)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
