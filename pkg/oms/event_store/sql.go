package eventstore

import (
	"context"

	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/oms/model"
	"go.uber.org/zap"
)

type eventCreator interface {
	Create(ctx context.Context, record *model.PlacementEvent) (*model.PlacementEvent, error)
}

// SQLEventStore writes events synchronously to the placement_events table.
type SQLEventStore struct {
	repo   eventCreator
	logger *logging.Logger
}

func NewSQLEventStore(repo eventCreator, logger *logging.Logger) *SQLEventStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SQLEventStore{repo: repo, logger: logger}
}

func (s *SQLEventStore) AddEvent(ctx context.Context, ev *model.PlacementEvent) {
	if _, err := s.repo.Create(ctx, ev); err != nil {
		s.logger.Error(ctx, "store placement event", zap.String("event_id", ev.EventID), zap.Error(err))
	}
}
