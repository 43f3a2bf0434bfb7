package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkawrapper "github.com/joripage/superorder/pkg/kafka_wrapper"
	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/joripage/superorder/pkg/oms/repo"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const fetchBatch = 10

// Worker persists placement events published by the OMS.
type Worker struct {
	placementEvent repo.IPlacementEvent
	logger         *logging.Logger
}

func NewWorker(repo repo.IRepo, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		placementEvent: repo.PlacementEvent(),
		logger:         logger,
	}
}

// StartConsumer pulls events from a durable JetStream consumer until ctx is
// done. Undecodable messages are acked and dropped.
func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msgs, err := cons.Fetch(fetchBatch, nats.MaxWait(2*time.Second))
		if errors.Is(err, nats.ErrTimeout) {
			continue
		}
		if err != nil {
			w.logger.Warn(ctx, "fetch placement events", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			ev, err := decodeEvent(msg.Data)
			if err != nil {
				w.logger.Warn(ctx, "drop undecodable placement event", zap.Error(err))
				_ = msg.Ack()
				continue
			}
			if _, err := w.placementEvent.Create(ctx, ev); err != nil {
				w.logger.Error(ctx, "store placement event", zap.String("event_id", ev.EventID), zap.Error(err))
				_ = msg.Nak()
				continue
			}
			_ = msg.Ack()
		}
	}
}

// RunKafka consumes batches from a consumer group and stores each batch in
// one insert. A failed insert is retried by the consumer group.
func (w *Worker) RunKafka(ctx context.Context, cg *kafkawrapper.ConsumerGroup) error {
	return cg.Run(ctx, w.HandleBatch)
}

func (w *Worker) HandleBatch(ctx context.Context, msgs []kafkawrapper.Message) error {
	events := make([]*model.PlacementEvent, 0, len(msgs))
	for _, m := range msgs {
		ev, err := decodeEvent(m.Value)
		if err != nil {
			w.logger.Warn(ctx, "drop undecodable placement event",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil
	}
	_, err := w.placementEvent.BulkCreate(ctx, events)
	return err
}

func decodeEvent(data []byte) (*model.PlacementEvent, error) {
	var ev model.PlacementEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.EventID == "" {
		return nil, errors.New("placement event without event_id")
	}
	return &ev, nil
}
