package riskrule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

type tickSizeConfig struct {
	MaxPrice decimal.Decimal `json:"maxPrice"` // 0 = no limit
	Step     decimal.Decimal `json:"step"`
}

// TickSizeRule holds price bands per exchange. The first band whose
// MaxPrice covers the price decides the step.
type TickSizeRule struct {
	Config map[model.Exchange][]tickSizeConfig
}

func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewTickSizeRule(data)
}

func NewTickSizeRule(data []byte) (*TickSizeRule, error) {
	var cfg map[model.Exchange][]tickSizeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tick size config: %w", err)
	}
	return &TickSizeRule{Config: cfg}, nil
}

func (r *TickSizeRule) Check(in *Input) []Violation {
	bands, ok := r.Config[in.Order.Exchange]
	if !ok { // no config -> no rule
		return nil
	}

	var out []Violation
	check := func(field string, price decimal.Decimal) {
		if !price.IsPositive() {
			return
		}
		step := stepFor(bands, price)
		if !step.IsPositive() {
			return
		}
		if !price.Mod(step).IsZero() {
			out = append(out, structural(fmt.Sprintf("%s %s is not a multiple of tick size %s", field, price, step), field))
		}
	}

	if in.Order.HasPrice() {
		check("price", in.Order.Price.Decimal)
	}
	check("target_price", in.Order.TargetPrice)
	check("stop_loss_price", in.Order.StopLossPrice)
	return out
}

func stepFor(bands []tickSizeConfig, price decimal.Decimal) decimal.Decimal {
	for _, band := range bands {
		if band.MaxPrice.IsZero() || price.LessThanOrEqual(band.MaxPrice) {
			return band.Step
		}
	}
	return decimal.Zero
}
