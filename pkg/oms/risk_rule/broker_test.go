package riskrule

import (
	"testing"

	"github.com/joripage/superorder/pkg/oms/model"
)

func TestDhanStage(t *testing.T) {
	stage, err := DhanStage(BrokerOptions{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(o *model.OrderRequest)
		field  string
	}{
		{"valid", func(o *model.OrderRequest) {}, ""},
		{"currency exchange unsupported", func(o *model.OrderRequest) { o.Exchange = model.ExchangeCDS }, "exchange"},
		{"unknown product", func(o *model.OrderRequest) { o.ProductType = "BO" }, "product_type"},
		{"empty symbol", func(o *model.OrderRequest) { o.Symbol = "" }, "symbol"},
		{"tag with space", func(o *model.OrderRequest) { o.Tag = "my tag" }, "tag"},
		{"tag too long", func(o *model.OrderRequest) { o.Tag = "abcdefghijklmnopqrstuvwxyz" }, "tag"},
		{"valid tag", func(o *model.OrderRequest) { o.Tag = "strat_1-a" }, ""},
		{"intraday", func(o *model.OrderRequest) { o.ProductType = model.ProductTypeIntraday }, ""},
		{"mcx", func(o *model.OrderRequest) { o.Exchange = model.ExchangeMCX }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := limitOrder(model.TransactionTypeBuy, "100", "110", "90")
			tt.mutate(o)
			err := stage.Run(&Input{Order: o})
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verr := validationErr(t, err)
			if verr.Stage != StageBroker {
				t.Errorf("expected stage %s, got %s", StageBroker, verr.Stage)
			}
			if got := verr.Violations[0].Fields[0]; got != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, got)
			}
		})
	}
}

func TestDhanStageInvalidTagPattern(t *testing.T) {
	if _, err := DhanStage(BrokerOptions{TagPattern: "("}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestTickSizeRule(t *testing.T) {
	rule, err := NewTickSizeRule([]byte(`{"NSE":[{"maxPrice":"250","step":"0.01"},{"maxPrice":"0","step":"0.05"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	stage, err := DhanStage(BrokerOptions{TickSize: rule})
	if err != nil {
		t.Fatal(err)
	}

	if err := stage.Run(&Input{Order: limitOrder(model.TransactionTypeBuy, "100.01", "110.02", "90.03")}); err != nil {
		t.Errorf("cheap stock on 0.01 ticks: %v", err)
	}

	err = stage.Run(&Input{Order: limitOrder(model.TransactionTypeBuy, "1500.03", "1600", "1400.05")})
	verr := validationErr(t, err)
	if len(verr.Violations) != 1 || verr.Violations[0].Fields[0] != "price" {
		t.Errorf("expected one price violation, got %v", verr)
	}

	o := limitOrder(model.TransactionTypeBuy, "1500.03", "1600", "1400.05")
	o.Exchange = model.ExchangeBSE
	if err := stage.Run(&Input{Order: o}); err != nil {
		t.Errorf("exchange without bands must pass: %v", err)
	}
}
