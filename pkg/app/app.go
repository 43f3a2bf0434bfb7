// Package app wires the collaborators named in config into a running
// service. Every binary under cmd/ builds on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joripage/superorder/config"
	postgres_wrapper "github.com/joripage/superorder/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/superorder/pkg/infra/redis"
	kafkawrapper "github.com/joripage/superorder/pkg/kafka_wrapper"
	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/metrics"
	"github.com/joripage/superorder/pkg/oms"
	"github.com/joripage/superorder/pkg/oms/dhan"
	eventstore "github.com/joripage/superorder/pkg/oms/event_store"
	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/joripage/superorder/pkg/oms/repo"
	riskrule "github.com/joripage/superorder/pkg/oms/risk_rule"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the long-lived resources of a process. Close releases them in
// reverse order of creation.
type App struct {
	Config  *config.AppConfig
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	DB      *gorm.DB
	Repo    repo.IRepo
	Redis   *redis.Client

	closers []func()
}

func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	logger := logging.NewLoggerWithConfig(cfg.Log).With(zap.String("service", cfg.ServiceName))
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewMetrics(nil),
	}
	a.onClose(func() { _ = logger.Sync() })
	a.onClose(logger.ReplaceGlobals())

	if cfg.OmsDB != nil {
		db, err := postgres_wrapper.InitPostgresWithBackoff(cfg.OmsDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
		a.DB = db
		a.Repo = repo.NewRepo(db)
		if sqlDB, err := db.DB(); err == nil {
			a.onClose(func() { _ = sqlDB.Close() })
		}
	}

	if cfg.Redis != nil && cfg.Redis.ConnectionURL != "" {
		rdb, err := redis_wrapper.InitRedis(ctx, cfg.Redis)
		if err != nil {
			// the cache is optional; instruments still load from other sources
			logger.Warn(ctx, "redis unavailable", zap.Error(err))
		} else {
			a.Redis = rdb
			a.onClose(func() { _ = rdb.Close() })
		}
	}

	return a, nil
}

func (a *App) onClose(f func()) {
	a.closers = append(a.closers, f)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// InstrumentSources returns the configured sources in lookup order and the
// sinks a successful load is copied to.
func (a *App) InstrumentSources(ctx context.Context) ([]instrument.Source, []instrument.Sink) {
	cfg := a.Config.Instruments
	var (
		sources []instrument.Source
		sinks   []instrument.Sink
	)
	for _, name := range cfg.Sources {
		switch name {
		case "redis":
			if a.Redis == nil {
				continue
			}
			cache := instrument.NewRedisCache(a.Redis, cfg.RedisKey, cfg.RedisTTL())
			sources = append(sources, cache)
			sinks = append(sinks, cache)
		case "db":
			if a.Repo == nil {
				continue
			}
			src := instrument.NewSQLSource(a.Repo.Instrument())
			sources = append(sources, src)
			sinks = append(sinks, src)
		case "file":
			if cfg.CSVPath == "" {
				continue
			}
			sources = append(sources, &instrument.FileSource{Path: cfg.CSVPath})
		case "s3":
			if cfg.S3.Bucket == "" {
				continue
			}
			src, err := instrument.NewS3SourceFromDefaultConfig(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Key)
			if err != nil {
				a.Logger.Warn(ctx, "skip s3 instrument source", zap.Error(err))
				continue
			}
			sources = append(sources, src)
		case "http":
			sources = append(sources, &instrument.HTTPSource{
				URL:        cfg.DownloadURL,
				SavePath:   cfg.CSVPath,
				MetaPath:   cfg.MetaPath,
				MaxRetries: cfg.DownloadRetries,
			})
		}
	}
	return sources, sinks
}

// LoadInstruments builds a store, fills it once and starts the periodic
// refresh when an interval is configured.
func (a *App) LoadInstruments(ctx context.Context) (*instrument.Store, *instrument.Refresher, error) {
	sources, sinks := a.InstrumentSources(ctx)
	if len(sources) == 0 {
		return nil, nil, instrument.ErrNoSource
	}

	store := instrument.NewStore()
	refresher := instrument.NewRefresher(store, sources,
		instrument.WithSinks(sinks...),
		instrument.WithRefresherLogger(a.Logger),
		instrument.WithRefresherMetrics(a.Metrics),
	)
	if err := refresher.Refresh(ctx); err != nil {
		return nil, nil, err
	}

	if interval := a.Config.Instruments.RefreshInterval(); interval > 0 {
		go refresher.Run(ctx, interval)
	}
	return store, refresher, nil
}

// EventStore builds the placement event sink for the configured bus. The
// in-memory store is always included so recent events can be inspected.
func (a *App) EventStore(ctx context.Context) (eventstore.EventStore, error) {
	cfg := a.Config.Events
	stores := eventstore.Multi{eventstore.NewInMemoryEventStore()}

	switch cfg.Bus {
	case config.BusKafka:
		producer := kafkawrapper.NewProducer(cfg.Kafka.Producer())
		a.onClose(func() { _ = producer.Close(context.Background()) })
		stores = append(stores, eventstore.NewKafkaEventStore(producer, cfg.Kafka.Topic, a.Logger))
	case config.BusNATS:
		js, err := a.JetStream()
		if err != nil {
			return nil, err
		}
		stores = append(stores, eventstore.NewJetStreamEventStore(js, cfg.Subject, a.Logger))
	}

	if cfg.PersistToDB {
		if a.Repo == nil {
			return nil, errors.New("persist_to_db needs a database")
		}
		stores = append(stores, eventstore.NewSQLEventStore(a.Repo.PlacementEvent(), a.Logger))
	}

	a.Logger.Info(ctx, "placement events", zap.String("bus", cfg.Bus), zap.Bool("persist_to_db", cfg.PersistToDB))
	return stores, nil
}

// JetStream connects to NATS and makes sure the events stream exists.
func (a *App) JetStream() (nats.JetStreamContext, error) {
	cfg := a.Config.Events
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(a.Config.ServiceName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	a.onClose(func() { _ = nc.Drain() })

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if _, err := js.StreamInfo(cfg.Stream); errors.Is(err, nats.ErrStreamNotFound) {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{cfg.Subject},
		})
		if err != nil {
			return nil, fmt.Errorf("add stream %s: %w", cfg.Stream, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stream info %s: %w", cfg.Stream, err)
	}
	return js, nil
}

// BrokerOptions turns the validation section into riskrule options.
func (a *App) BrokerOptions() (riskrule.BrokerOptions, riskrule.MarketPolicy, error) {
	v := a.Config.Validation
	policy, err := riskrule.ParseMarketPolicy(v.MarketPricePolicy)
	if err != nil {
		return riskrule.BrokerOptions{}, "", err
	}
	opts := riskrule.BrokerOptions{TagPattern: v.TagPattern}
	if v.TickSizeFile != "" {
		rule, err := riskrule.NewTickSizeRuleFromFile(v.TickSizeFile)
		if err != nil {
			return riskrule.BrokerOptions{}, "", fmt.Errorf("tick size rules: %w", err)
		}
		opts.TickSize = rule
	}
	return opts, policy, nil
}

// NewOMS builds the orchestrator on top of a Dhan client. With dryRun set
// the credentials may be empty and nothing is ever submitted.
func (a *App) NewOMS(ctx context.Context, store *instrument.Store, dryRun bool) (*oms.OMS, error) {
	opts, policy, err := a.BrokerOptions()
	if err != nil {
		return nil, err
	}
	events, err := a.EventStore(ctx)
	if err != nil {
		return nil, err
	}

	omsOpts := []oms.Option{
		oms.WithLogger(a.Logger),
		oms.WithMetrics(a.Metrics),
		oms.WithEventStore(events),
		oms.WithMarketPolicy(policy),
		oms.WithBrokerOptions(opts),
	}

	var gateway oms.OrderGateway = dryRunGateway{}
	clientID := a.Config.Dhan.ClientID
	if !dryRun {
		client, err := dhan.NewClient(a.Config.Dhan, nil)
		if err != nil {
			return nil, err
		}
		gateway = client
		omsOpts = append(omsOpts, oms.WithPriceSource(client))
	}

	return oms.NewOMS(gateway, instrument.NewResolver(store), clientID, omsOpts...)
}

// NewBatchPlacer starts a batch placer over o that Close stops.
func (a *App) NewBatchPlacer(o oms.IOMS) *oms.BatchPlacer {
	b := oms.NewBatchPlacer(o, a.Metrics)
	a.onClose(b.Close)
	return b
}

type dryRunGateway struct{}

func (dryRunGateway) PlaceSuperOrder(context.Context, *model.WirePayload) (*model.SubmissionResult, error) {
	return nil, errors.New("submission disabled in dry-run mode")
}

// ServeMetrics exposes /metrics on its own listener until ctx is done.
func (a *App) ServeMetrics(ctx context.Context) {
	addr := a.Config.Metrics.ListenAddr
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	Serve(ctx, a.Logger, addr, mux)
}

// Serve runs an HTTP server until ctx is done, then shuts it down.
func Serve(ctx context.Context, logger *logging.Logger, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info(ctx, "http listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, "http server stopped", zap.String("addr", addr), zap.Error(err))
	}
}
