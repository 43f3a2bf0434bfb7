package repo

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlacementEventSQLRepo struct {
	db *gorm.DB
}

func NewPlacementEventSQLRepo(db *gorm.DB) *PlacementEventSQLRepo {
	return &PlacementEventSQLRepo{
		db: db,
	}
}

func (s *PlacementEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create ignores an event id that is already stored, so redelivered
// messages are harmless.
func (r *PlacementEventSQLRepo) Create(ctx context.Context, record *model.PlacementEvent) (*model.PlacementEvent, error) {
	return record, r.dbWithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
}

func (r *PlacementEventSQLRepo) BulkCreate(ctx context.Context, records []*model.PlacementEvent) ([]*model.PlacementEvent, error) {
	if len(records) == 0 {
		return records, nil
	}
	return records, r.dbWithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(records).Error
}

func (r *PlacementEventSQLRepo) ListByCorrelationID(ctx context.Context, correlationID string) ([]*model.PlacementEvent, error) {
	var out []*model.PlacementEvent
	err := r.dbWithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
