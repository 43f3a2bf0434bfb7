package instrument

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
)

// InstrumentRepo is the persistence the SQL source needs.
type InstrumentRepo interface {
	List(ctx context.Context) ([]model.Instrument, error)
	ReplaceAll(ctx context.Context, rows []model.Instrument) error
}

// SQLSource serves and stores the table through the instruments table.
type SQLSource struct {
	repo InstrumentRepo
}

func NewSQLSource(repo InstrumentRepo) *SQLSource {
	return &SQLSource{repo: repo}
}

func (s *SQLSource) Name() string { return "db" }

func (s *SQLSource) Fetch(ctx context.Context) ([]model.Instrument, error) {
	return s.repo.List(ctx)
}

func (s *SQLSource) Save(ctx context.Context, rows []model.Instrument) error {
	return s.repo.ReplaceAll(ctx, rows)
}
