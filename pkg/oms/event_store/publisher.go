package eventstore

import (
	"context"
	"encoding/json"

	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, topic string, key string, v any, headers map[string]string) error
}

// KafkaEventStore publishes events as JSON keyed by symbol, so one symbol's
// events stay on one partition.
type KafkaEventStore struct {
	producer jsonPublisher
	topic    string
	logger   *logging.Logger
}

func NewKafkaEventStore(producer jsonPublisher, topic string, logger *logging.Logger) *KafkaEventStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &KafkaEventStore{producer: producer, topic: topic, logger: logger}
}

func (s *KafkaEventStore) AddEvent(ctx context.Context, ev *model.PlacementEvent) {
	headers := map[string]string{"kind": string(ev.Kind)}
	if err := s.producer.PublishJSON(ctx, s.topic, ev.Symbol, ev, headers); err != nil {
		s.logger.Error(ctx, "publish placement event", zap.String("event_id", ev.EventID), zap.Error(err))
	}
}

type jetStreamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// JetStreamEventStore publishes events to a JetStream subject. The event id
// is used as the message id so redelivered publishes are deduplicated.
type JetStreamEventStore struct {
	js      jetStreamPublisher
	subject string
	logger  *logging.Logger
}

func NewJetStreamEventStore(js jetStreamPublisher, subject string, logger *logging.Logger) *JetStreamEventStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &JetStreamEventStore{js: js, subject: subject, logger: logger}
}

func (s *JetStreamEventStore) AddEvent(ctx context.Context, ev *model.PlacementEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error(ctx, "encode placement event", zap.String("event_id", ev.EventID), zap.Error(err))
		return
	}
	if _, err := s.js.Publish(s.subject, data, nats.MsgId(ev.EventID), nats.Context(ctx)); err != nil {
		s.logger.Error(ctx, "publish placement event", zap.String("event_id", ev.EventID), zap.Error(err))
	}
}
