package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joripage/superorder/config"
	"github.com/joripage/superorder/pkg/api"
	"github.com/joripage/superorder/pkg/app"
	"github.com/joripage/superorder/pkg/oms"
	"github.com/joripage/superorder/pkg/oms/model"
	"go.uber.org/zap"
)

const usage = `usage: oms [flags] <command>

commands:
  serve              run the HTTP API (default)
  place    -orders   place the orders in a JSON file (one object or an array)
  validate -orders   validate without submitting

flags:
`

func main() {
	var (
		configFile string
		ordersFile string
	)
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&ordersFile, "orders", "-", "Orders JSON file, - for stdin")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "serve"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, command, ordersFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, command, ordersFile string) error {
	dryRun := command == "validate"
	if !dryRun {
		if err := cfg.CheckDhanCredentials(); err != nil {
			return err
		}
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	store, _, err := a.LoadInstruments(ctx)
	if err != nil {
		return fmt.Errorf("load instruments: %w", err)
	}
	o, err := a.NewOMS(ctx, store, dryRun)
	if err != nil {
		return err
	}
	batch := a.NewBatchPlacer(o)

	switch command {
	case "serve":
		go a.ServeMetrics(ctx)
		addr := cfg.Server.ListenAddr
		if addr == "" {
			addr = ":8080"
		}
		h := api.NewHandler(o, batch, store, a.Metrics.Handler(), a.Logger)
		app.Serve(ctx, a.Logger, addr, h.NewRouter())
		zap.S().Info("Exited cleanly.")
		return nil
	case "place", "validate":
		reqs, err := readOrders(ordersFile)
		if err != nil {
			return err
		}
		return report(os.Stdout, placeOrValidate(ctx, o, batch, reqs, dryRun))
	}
	return fmt.Errorf("unknown command %q", command)
}

type outcome struct {
	Index   int                     `json:"index"`
	Symbol  string                  `json:"symbol"`
	Result  *model.SubmissionResult `json:"result,omitempty"`
	Payload *model.WirePayload      `json:"payload,omitempty"`
	Kind    model.ErrorKind         `json:"error_kind,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func placeOrValidate(ctx context.Context, o *oms.OMS, batch *oms.BatchPlacer, reqs []*model.OrderRequest, dryRun bool) []outcome {
	out := make([]outcome, len(reqs))
	if dryRun {
		for i, req := range reqs {
			out[i] = outcome{Index: i, Symbol: req.Symbol}
			payload, err := o.ValidateOnly(ctx, req)
			out[i].Payload = payload
			setError(&out[i], err)
		}
		return out
	}
	for i, res := range batch.PlaceAll(ctx, reqs) {
		out[i] = outcome{Index: res.Index, Symbol: res.Request.Symbol, Result: res.Result}
		setError(&out[i], res.Err)
	}
	return out
}

func setError(o *outcome, err error) {
	if err == nil {
		return
	}
	o.Kind = oms.KindOf(err)
	o.Error = err.Error()
}

func report(w io.Writer, outcomes []outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		return err
	}
	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d orders failed", failed, len(outcomes))
	}
	return nil
}

// readOrders accepts a single JSON object or an array of them.
func readOrders(path string) ([]*model.OrderRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var raws []model.RawOrder
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		var one model.RawOrder
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		raws = append(raws, one)
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	if len(raws) == 0 {
		return nil, errors.New("no orders")
	}

	reqs := make([]*model.OrderRequest, len(raws))
	for i := range raws {
		reqs[i] = raws[i].ToRequest()
	}
	return reqs, nil
}
