package model

import "github.com/shopspring/decimal"

// Instrument is one tradable row of the broker's instrument master.
type Instrument struct {
	SecurityID     string          `json:"security_id" gorm:"column:security_id;uniqueIndex:idx_instruments_exchange_security"`
	Symbol         string          `json:"symbol" gorm:"column:symbol;index"`
	Exchange       Exchange        `json:"exchange" gorm:"column:exchange;uniqueIndex:idx_instruments_exchange_security"`
	Segment        ExchangeSegment `json:"segment" gorm:"column:segment"`
	LotSize        int64           `json:"lot_size" gorm:"column:lot_size"`
	TickSize       decimal.Decimal `json:"tick_size" gorm:"column:tick_size;type:numeric"`
	InstrumentType string          `json:"instrument_type,omitempty" gorm:"column:instrument_type"`
	Underlying     string          `json:"underlying,omitempty" gorm:"column:underlying"`
	Expiry         string          `json:"expiry,omitempty" gorm:"column:expiry"`
	Strike         decimal.Decimal `json:"strike" gorm:"column:strike;type:numeric"`
	OptionType     OptionType      `json:"option_type,omitempty" gorm:"column:option_type"`
}

func (Instrument) TableName() string {
	return "instruments"
}

// IsDerivative reports whether the row is a future or an option.
func (i *Instrument) IsDerivative() bool {
	return i.Expiry != "" || i.Exchange.IsDerivative()
}
