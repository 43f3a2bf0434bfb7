package repo

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
)

type IInstrument interface {
	List(ctx context.Context) ([]model.Instrument, error)
	ReplaceAll(ctx context.Context, rows []model.Instrument) error
	Count(ctx context.Context) (int64, error)
}

type IPlacementEvent interface {
	Create(ctx context.Context, record *model.PlacementEvent) (*model.PlacementEvent, error)
	BulkCreate(ctx context.Context, records []*model.PlacementEvent) ([]*model.PlacementEvent, error)
	ListByCorrelationID(ctx context.Context, correlationID string) ([]*model.PlacementEvent, error)
}
