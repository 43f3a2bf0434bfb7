package riskrule

import (
	"errors"
	"strings"
	"testing"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func limitOrder(tx model.TransactionType, price, target, stop string) *model.OrderRequest {
	return &model.OrderRequest{
		Symbol:          "HDFCBANK",
		Exchange:        model.ExchangeNSE,
		TransactionType: tx,
		Quantity:        10,
		OrderType:       model.OrderTypeLimit,
		Price:           decimal.NewNullDecimal(d(price)),
		ProductType:     model.ProductTypeCNC,
		TargetPrice:     d(target),
		StopLossPrice:   d(stop),
		Category:        model.OrderCategorySuper,
	}
}

func marketOrder(tx model.TransactionType, target, stop string) *model.OrderRequest {
	o := limitOrder(tx, "1", target, stop)
	o.OrderType = model.OrderTypeMarket
	o.Price = decimal.NullDecimal{}
	return o
}

func validationErr(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr
}

func TestStageCollectsEveryViolation(t *testing.T) {
	o := limitOrder(model.TransactionTypeBuy, "100", "110", "90")
	o.Quantity = 0
	o.OrderType = "STOP"
	o.TransactionType = "HOLD"

	verr := validationErr(t, BaseStage().Run(&Input{Order: o}))
	if verr.Stage != StageBase {
		t.Errorf("expected stage %s, got %s", StageBase, verr.Stage)
	}
	if len(verr.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(verr.Violations), verr)
	}
	for _, v := range verr.Violations {
		if v.Kind != model.ErrorKindStructural {
			t.Errorf("expected structural violation, got %+v", v)
		}
	}
}

func TestPipelineStopsAtFirstFailingStage(t *testing.T) {
	calls := 0
	counting := Stage{Name: "second", Rules: []RiskRule{RuleFunc(func(*Input) []Violation {
		calls++
		return nil
	})}}

	o := limitOrder(model.TransactionTypeBuy, "100", "110", "90")
	o.Quantity = -1
	err := NewPipeline(BaseStage(), counting).Run(&Input{Order: o})

	verr := validationErr(t, err)
	if verr.Stage != StageBase {
		t.Errorf("expected base stage failure, got %s", verr.Stage)
	}
	if calls != 0 {
		t.Errorf("expected later stage not to run, ran %d times", calls)
	}
}

func TestPipelinePassesValidOrder(t *testing.T) {
	broker, err := DhanStage(BrokerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipeline(BaseStage(), broker, SuperOrderStage(MarketPolicyBracket))
	in := &Input{
		Order:      limitOrder(model.TransactionTypeBuy, "1500", "1600", "1400"),
		Instrument: &model.Instrument{SecurityID: "1333", LotSize: 1},
	}
	if err := p.Run(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Stages()) != 3 {
		t.Errorf("expected 3 stages, got %d", len(p.Stages()))
	}
}

func TestValidationErrorKind(t *testing.T) {
	verr := &ValidationError{Stage: StageSuperOrder, Violations: []Violation{
		{Kind: model.ErrorKindPriceRelationship, Message: "a"},
		{Kind: model.ErrorKindLotSize, Message: "b"},
	}}
	if verr.Kind() != model.ErrorKindPriceRelationship {
		t.Errorf("expected first violation kind, got %s", verr.Kind())
	}
	if !verr.HasKind(model.ErrorKindLotSize) {
		t.Errorf("expected HasKind(LOT_SIZE)")
	}
	if verr.HasKind(model.ErrorKindTransport) {
		t.Errorf("unexpected HasKind(TRANSPORT)")
	}
	if !strings.HasPrefix(verr.Error(), "super_order validation failed") {
		t.Errorf("unexpected message %q", verr.Error())
	}
}
