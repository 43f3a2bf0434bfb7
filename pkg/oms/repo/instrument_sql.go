package repo

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
	"gorm.io/gorm"
)

const instrumentBatchSize = 1000

type InstrumentSQLRepo struct {
	db *gorm.DB
}

func NewInstrumentSQLRepo(db *gorm.DB) *InstrumentSQLRepo {
	return &InstrumentSQLRepo{
		db: db,
	}
}

func (s *InstrumentSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (r *InstrumentSQLRepo) List(ctx context.Context) ([]model.Instrument, error) {
	var out []model.Instrument
	err := r.dbWithContext(ctx).Order("exchange, security_id").Find(&out).Error
	return out, err
}

// ReplaceAll swaps the whole table inside one transaction.
func (r *InstrumentSQLRepo) ReplaceAll(ctx context.Context, rows []model.Instrument) error {
	return r.dbWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Instrument{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, instrumentBatchSize).Error
	})
}

func (r *InstrumentSQLRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.dbWithContext(ctx).Model(&model.Instrument{}).Count(&n).Error
	return n, err
}
