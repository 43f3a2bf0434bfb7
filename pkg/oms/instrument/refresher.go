package instrument

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/metrics"
	"go.uber.org/zap"
)

// Refresher reloads the Store from the first source that works and copies
// the result to every sink other than that source.
type Refresher struct {
	store   *Store
	sources []Source
	sinks   []Sink
	logger  *logging.Logger
	metrics *metrics.Metrics
}

type RefresherOption func(*Refresher)

func WithSinks(sinks ...Sink) RefresherOption {
	return func(r *Refresher) { r.sinks = append(r.sinks, sinks...) }
}

func WithRefresherLogger(l *logging.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = l }
}

func WithRefresherMetrics(m *metrics.Metrics) RefresherOption {
	return func(r *Refresher) { r.metrics = m }
}

func NewRefresher(store *Store, sources []Source, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:   store,
		sources: sources,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Refresher) Refresh(ctx context.Context) error {
	if len(r.sources) == 0 {
		return ErrNoSource
	}

	var errs []error
	for _, src := range r.sources {
		err := r.store.Load(ctx, src)
		r.metrics.ObserveInstrumentLoad(src.Name(), r.store.Len(), err)
		if err != nil {
			r.logger.Warn(ctx, "instrument source failed", zap.String("source", src.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		r.logger.Info(ctx, "instruments loaded",
			zap.String("source", src.Name()),
			zap.Int("rows", r.store.Len()))
		r.saveSinks(ctx, src.Name())
		return nil
	}
	return fmt.Errorf("all instrument sources failed: %w", errors.Join(errs...))
}

func (r *Refresher) saveSinks(ctx context.Context, loadedFrom string) {
	if len(r.sinks) == 0 {
		return
	}
	rows := r.store.Snapshot()
	for _, sink := range r.sinks {
		if sink.Name() == loadedFrom {
			continue
		}
		if err := sink.Save(ctx, rows); err != nil {
			r.logger.Warn(ctx, "instrument sink failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}

// Run refreshes every interval until ctx is done. Failures keep the previous
// table.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Error(ctx, "instrument refresh failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
