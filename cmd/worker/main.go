package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joripage/superorder/config"
	"github.com/joripage/superorder/pkg/app"
	kafkawrapper "github.com/joripage/superorder/pkg/kafka_wrapper"
	"github.com/joripage/superorder/pkg/oms/worker"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Repo == nil {
		return errors.New("worker needs oms_db")
	}
	go a.ServeMetrics(ctx)

	w := worker.NewWorker(a.Repo, a.Logger)

	switch cfg.Events.Bus {
	case config.BusKafka:
		cg, err := kafkawrapper.NewConsumerGroup(cfg.Events.Kafka.Consumer())
		if err != nil {
			return err
		}
		defer cg.Close()
		a.Logger.Info(ctx, "consuming placement events", zap.String("topic", cfg.Events.Kafka.Topic))
		return w.RunKafka(ctx, cg)
	case config.BusNATS:
		js, err := a.JetStream()
		if err != nil {
			return err
		}
		a.Logger.Info(ctx, "consuming placement events", zap.String("subject", cfg.Events.Subject))
		return w.StartConsumer(ctx, js, cfg.Events.Subject, cfg.Events.Durable)
	}
	return fmt.Errorf("events.bus %q has nothing to consume", cfg.Events.Bus)
}
