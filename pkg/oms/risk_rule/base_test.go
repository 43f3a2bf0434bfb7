package riskrule

import (
	"testing"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

func TestBaseStage(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *model.OrderRequest)
		field  string
	}{
		{"valid", func(o *model.OrderRequest) {}, ""},
		{"zero quantity", func(o *model.OrderRequest) { o.Quantity = 0 }, "quantity"},
		{"negative quantity", func(o *model.OrderRequest) { o.Quantity = -5 }, "quantity"},
		{"unknown order type", func(o *model.OrderRequest) { o.OrderType = "SL" }, "order_type"},
		{"limit without price", func(o *model.OrderRequest) { o.Price = decimal.NullDecimal{} }, "price"},
		{"market with price", func(o *model.OrderRequest) { o.OrderType = model.OrderTypeMarket }, "price"},
		{"zero price", func(o *model.OrderRequest) { o.Price = decimal.NewNullDecimal(decimal.Zero) }, "price"},
		{"unknown side", func(o *model.OrderRequest) { o.TransactionType = "SHORT" }, "transaction_type"},
		{"unknown exchange", func(o *model.OrderRequest) { o.Exchange = "NYSE" }, "exchange"},
		{"negative trailing jump", func(o *model.OrderRequest) { o.TrailingJump = d("-1") }, "trailing_jump"},
		{"zero trailing jump", func(o *model.OrderRequest) { o.TrailingJump = decimal.Zero }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := limitOrder(model.TransactionTypeBuy, "100", "110", "90")
			tt.mutate(o)
			err := BaseStage().Run(&Input{Order: o})
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verr := validationErr(t, err)
			if len(verr.Violations) != 1 {
				t.Fatalf("expected 1 violation, got %v", verr)
			}
			if got := verr.Violations[0].Fields[0]; got != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, got)
			}
		})
	}
}

func TestBaseStageMarketWithoutPrice(t *testing.T) {
	o := marketOrder(model.TransactionTypeSell, "90", "110")
	if err := BaseStage().Run(&Input{Order: o}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBaseStageDoesNotModifyOrder(t *testing.T) {
	o := limitOrder(model.TransactionTypeBuy, "100", "110", "90")
	o.Quantity = 0
	before := *o
	_ = BaseStage().Run(&Input{Order: o})
	_ = BaseStage().Run(&Input{Order: o})
	if o.Quantity != before.Quantity || !o.Price.Decimal.Equal(before.Price.Decimal) || o.Symbol != before.Symbol {
		t.Errorf("order modified: %+v", o)
	}
}
