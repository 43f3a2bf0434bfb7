package repo

import (
	"github.com/joripage/superorder/pkg/oms/model"
	"gorm.io/gorm"
)

type IRepo interface {
	Instrument() IInstrument
	PlacementEvent() IPlacementEvent
}

type Repo struct {
	omsDB *gorm.DB
}

func NewRepo(omsDB *gorm.DB) IRepo {
	return &Repo{
		omsDB: omsDB,
	}
}

func (r *Repo) Instrument() IInstrument {
	return NewInstrumentSQLRepo(r.omsDB)
}

func (r *Repo) PlacementEvent() IPlacementEvent {
	return NewPlacementEventSQLRepo(r.omsDB)
}

// AutoMigrate creates the tables from the models. Production databases use
// the SQL files under migration/sql instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Instrument{}, &model.PlacementEvent{})
}
