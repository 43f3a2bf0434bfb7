package riskrule

import (
	"testing"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

var equity = &model.Instrument{SecurityID: "1333", Symbol: "HDFCBANK", Exchange: model.ExchangeNSE, LotSize: 1}

func TestSuperOrderLimitBrackets(t *testing.T) {
	tests := []struct {
		name   string
		order  *model.OrderRequest
		wantOK bool
	}{
		{"buy ok", limitOrder(model.TransactionTypeBuy, "1500", "1600", "1400"), true},
		{"buy stop above price", limitOrder(model.TransactionTypeBuy, "1300", "1600", "1400"), false},
		{"buy target below price", limitOrder(model.TransactionTypeBuy, "1500", "1450", "1400"), false},
		{"buy stop equals price", limitOrder(model.TransactionTypeBuy, "1500", "1600", "1500"), false},
		{"buy target equals price", limitOrder(model.TransactionTypeBuy, "1500", "1500", "1400"), false},
		{"sell ok", limitOrder(model.TransactionTypeSell, "1500", "1400", "1600"), true},
		{"sell mirrored buy legs", limitOrder(model.TransactionTypeSell, "1500", "1600", "1400"), false},
		{"sell stop equals price", limitOrder(model.TransactionTypeSell, "1500", "1400", "1500"), false},
	}

	stage := SuperOrderStage(MarketPolicyBracket)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := stage.Run(&Input{Order: tt.order, Instrument: equity})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verr := validationErr(t, err)
			if verr.Kind() != model.ErrorKindPriceRelationship {
				t.Errorf("expected PRICE_RELATIONSHIP, got %s", verr.Kind())
			}
		})
	}
}

func TestSuperOrderBuyStopAboveMessage(t *testing.T) {
	o := limitOrder(model.TransactionTypeBuy, "1300", "1600", "1400")
	verr := validationErr(t, SuperOrderStage("").Run(&Input{Order: o, Instrument: equity}))

	want := "BUY requires stop_loss_price < price, got stop_loss_price 1400 and price 1300"
	if verr.Violations[0].Message != want {
		t.Errorf("expected %q, got %q", want, verr.Violations[0].Message)
	}
	fields := verr.Violations[0].Fields
	if len(fields) != 2 || fields[0] != "stop_loss_price" || fields[1] != "price" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestSuperOrderMarketPolicies(t *testing.T) {
	inverted := marketOrder(model.TransactionTypeBuy, "1400", "1600")
	ordered := marketOrder(model.TransactionTypeBuy, "1600", "1400")

	tests := []struct {
		name   string
		policy MarketPolicy
		order  *model.OrderRequest
		ltp    decimal.NullDecimal
		wantOK bool
	}{
		{"none ignores inverted legs", MarketPolicyNone, inverted, decimal.NullDecimal{}, true},
		{"bracket rejects inverted legs", MarketPolicyBracket, inverted, decimal.NullDecimal{}, false},
		{"bracket accepts ordered legs", MarketPolicyBracket, ordered, decimal.NullDecimal{}, true},
		{"ltp inside bracket", MarketPolicyLTP, ordered, decimal.NewNullDecimal(d("1500")), true},
		{"ltp below stop", MarketPolicyLTP, ordered, decimal.NewNullDecimal(d("1350")), false},
		{"ltp above target", MarketPolicyLTP, ordered, decimal.NewNullDecimal(d("1650")), false},
		{"ltp unknown falls back to bracket", MarketPolicyLTP, inverted, decimal.NullDecimal{}, false},
		{"ltp unknown ordered legs", MarketPolicyLTP, ordered, decimal.NullDecimal{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SuperOrderStage(tt.policy).Run(&Input{Order: tt.order, Instrument: equity, LastPrice: tt.ltp})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verr := validationErr(t, err)
			if verr.Kind() != model.ErrorKindPriceRelationship {
				t.Errorf("expected PRICE_RELATIONSHIP, got %s", verr.Kind())
			}
		})
	}
}

func TestSuperOrderLegPricesMustBePositive(t *testing.T) {
	o := limitOrder(model.TransactionTypeBuy, "1500", "0", "-1")
	verr := validationErr(t, SuperOrderStage(MarketPolicyBracket).Run(&Input{Order: o, Instrument: equity}))
	if len(verr.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", verr)
	}
	for _, v := range verr.Violations {
		if v.Kind != model.ErrorKindStructural {
			t.Errorf("expected structural, got %+v", v)
		}
	}
}

func TestSuperOrderCategory(t *testing.T) {
	o := limitOrder(model.TransactionTypeBuy, "1500", "1600", "1400")
	o.Category = "BRACKET"
	verr := validationErr(t, SuperOrderStage(MarketPolicyBracket).Run(&Input{Order: o, Instrument: equity}))
	if verr.Violations[0].Fields[0] != "order_category" {
		t.Errorf("unexpected violation %+v", verr.Violations[0])
	}
}

func TestSuperOrderTrailingJump(t *testing.T) {
	tests := []struct {
		name   string
		order  *model.OrderRequest
		jump   string
		ltp    decimal.NullDecimal
		policy MarketPolicy
		wantOK bool
	}{
		{"buy jump below distance", limitOrder(model.TransactionTypeBuy, "1500", "1600", "1400"), "10", decimal.NullDecimal{}, MarketPolicyBracket, true},
		{"buy jump equals distance", limitOrder(model.TransactionTypeBuy, "1500", "1600", "1400"), "100", decimal.NullDecimal{}, MarketPolicyBracket, false},
		{"sell jump above distance", limitOrder(model.TransactionTypeSell, "1500", "1400", "1550"), "60", decimal.NullDecimal{}, MarketPolicyBracket, false},
		{"market without ref skips jump", marketOrder(model.TransactionTypeBuy, "1600", "1400"), "500", decimal.NullDecimal{}, MarketPolicyBracket, true},
		{"market ltp ref checks jump", marketOrder(model.TransactionTypeBuy, "1600", "1400"), "50", decimal.NewNullDecimal(d("1420")), MarketPolicyLTP, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.order.TrailingJump = d(tt.jump)
			err := SuperOrderStage(tt.policy).Run(&Input{Order: tt.order, Instrument: equity, LastPrice: tt.ltp})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verr := validationErr(t, err)
			if verr.Violations[0].Fields[0] != "trailing_jump" {
				t.Errorf("expected trailing_jump violation, got %+v", verr.Violations[0])
			}
		})
	}
}

func TestSuperOrderLotSize(t *testing.T) {
	future := &model.Instrument{SecurityID: "35000", Symbol: "NIFTY-Oct2026-FUT", Exchange: model.ExchangeNFO, LotSize: 50}
	o := limitOrder(model.TransactionTypeBuy, "25000", "25100", "24900")
	o.Exchange = model.ExchangeNFO
	o.Quantity = 51

	verr := validationErr(t, SuperOrderStage(MarketPolicyBracket).Run(&Input{Order: o, Instrument: future}))
	if verr.Kind() != model.ErrorKindLotSize {
		t.Fatalf("expected LOT_SIZE, got %s", verr.Kind())
	}
	want := "quantity 51 must be a multiple of lot size 50"
	if verr.Violations[0].Message != want {
		t.Errorf("expected %q, got %q", want, verr.Violations[0].Message)
	}

	o.Quantity = 100
	if err := SuperOrderStage(MarketPolicyBracket).Run(&Input{Order: o, Instrument: future}); err != nil {
		t.Errorf("unexpected error for two lots: %v", err)
	}
}

func TestSuperOrderStageIsIdempotent(t *testing.T) {
	o := limitOrder(model.TransactionTypeSell, "1500", "1600", "1400")
	stage := SuperOrderStage(MarketPolicyBracket)
	first := validationErr(t, stage.Run(&Input{Order: o, Instrument: equity}))
	second := validationErr(t, stage.Run(&Input{Order: o, Instrument: equity}))
	if first.Error() != second.Error() {
		t.Errorf("results differ: %q vs %q", first.Error(), second.Error())
	}
}

func TestParseMarketPolicy(t *testing.T) {
	for in, want := range map[string]MarketPolicy{"": MarketPolicyBracket, "none": MarketPolicyNone, "ltp": MarketPolicyLTP} {
		got, err := ParseMarketPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseMarketPolicy(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseMarketPolicy("mid"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestBracketFor(t *testing.T) {
	below, above, ok := BracketFor(model.TransactionTypeSell)
	if !ok || below != "target_price" || above != "stop_loss_price" {
		t.Errorf("unexpected sell bracket %s < price < %s", below, above)
	}
	if _, _, ok := BracketFor("HOLD"); ok {
		t.Error("expected no bracket for unknown side")
	}
}
