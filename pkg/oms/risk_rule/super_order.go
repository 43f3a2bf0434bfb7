package riskrule

import (
	"fmt"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

// MarketPolicy decides how price relationships are checked for MARKET orders,
// which carry no price of their own.
type MarketPolicy string

const (
	// MarketPolicyNone skips every relational check for MARKET orders.
	MarketPolicyNone MarketPolicy = "none"
	// MarketPolicyBracket only orders target and stop-loss against each other.
	MarketPolicyBracket MarketPolicy = "bracket"
	// MarketPolicyLTP uses the last traded price as the entry price and falls
	// back to MarketPolicyBracket when none is known.
	MarketPolicyLTP MarketPolicy = "ltp"
)

func ParseMarketPolicy(s string) (MarketPolicy, error) {
	switch p := MarketPolicy(s); p {
	case MarketPolicyNone, MarketPolicyBracket, MarketPolicyLTP:
		return p, nil
	case "":
		return MarketPolicyBracket, nil
	}
	return "", fmt.Errorf("unknown market price policy %q", s)
}

type leg struct {
	field string
	value func(o *model.OrderRequest) decimal.Decimal
}

var (
	targetLeg = leg{field: "target_price", value: func(o *model.OrderRequest) decimal.Decimal { return o.TargetPrice }}
	stopLeg   = leg{field: "stop_loss_price", value: func(o *model.OrderRequest) decimal.Decimal { return o.StopLossPrice }}
)

// bracket says which leg must sit below and which above the entry price.
type bracket struct {
	below leg
	above leg
}

var brackets = map[model.TransactionType]bracket{
	model.TransactionTypeBuy:  {below: stopLeg, above: targetLeg},
	model.TransactionTypeSell: {below: targetLeg, above: stopLeg},
}

// BracketFor returns the field names that must sit below and above the entry
// price for the given direction.
func BracketFor(t model.TransactionType) (below, above string, ok bool) {
	b, ok := brackets[t]
	if !ok {
		return "", "", false
	}
	return b.below.field, b.above.field, true
}

// SuperOrderStage holds the super order checks. It needs the resolved
// instrument for the lot size check.
func SuperOrderStage(policy MarketPolicy) Stage {
	if policy == "" {
		policy = MarketPolicyBracket
	}
	return Stage{
		Name: StageSuperOrder,
		Rules: []RiskRule{
			RuleFunc(checkCategory),
			RuleFunc(checkLegPrices),
			priceRelationshipRule{policy: policy},
			RuleFunc(checkLotSize),
		},
	}
}

func checkCategory(in *Input) []Violation {
	if in.Order.Category != model.OrderCategorySuper {
		return []Violation{structural(fmt.Sprintf("order_category %q must be SUPER", in.Order.Category), "order_category")}
	}
	return nil
}

func checkLegPrices(in *Input) []Violation {
	var out []Violation
	for _, l := range []leg{targetLeg, stopLeg} {
		if v := l.value(in.Order); !v.IsPositive() {
			out = append(out, structural(fmt.Sprintf("%s must be positive, got %s", l.field, v), l.field))
		}
	}
	return out
}

type priceRelationshipRule struct {
	policy MarketPolicy
}

// entry returns the price the legs are ordered around and the name it is
// reported under.
func (r priceRelationshipRule) entry(in *Input) (decimal.Decimal, string, bool) {
	o := in.Order
	if o.OrderType == model.OrderTypeLimit && o.HasPrice() {
		return o.Price.Decimal, "price", true
	}
	if o.OrderType == model.OrderTypeMarket && r.policy == MarketPolicyLTP && in.LastPrice.Valid {
		return in.LastPrice.Decimal, "last_traded_price", true
	}
	return decimal.Zero, "", false
}

func (r priceRelationshipRule) Check(in *Input) []Violation {
	o := in.Order
	b, ok := brackets[o.TransactionType]
	if !ok {
		return nil
	}
	below, above := b.below.value(o), b.above.value(o)
	if !below.IsPositive() || !above.IsPositive() {
		// reported by checkLegPrices
		return nil
	}
	if o.OrderType == model.OrderTypeMarket && r.policy == MarketPolicyNone {
		return nil
	}

	ref, refName, hasRef := r.entry(in)
	var out []Violation
	if hasRef {
		if !below.LessThan(ref) {
			out = append(out, relationViolation(o.TransactionType, b.below.field, below, refName, ref))
		}
		if !ref.LessThan(above) {
			out = append(out, relationViolation(o.TransactionType, refName, ref, b.above.field, above))
		}
	} else if !below.LessThan(above) {
		out = append(out, relationViolation(o.TransactionType, b.below.field, below, b.above.field, above))
	}
	if len(out) > 0 || !hasRef || !o.IsTrailing() {
		return out
	}

	distance := ref.Sub(o.StopLossPrice).Abs()
	if !o.TrailingJump.LessThan(distance) {
		out = append(out, violation(model.ErrorKindPriceRelationship,
			fmt.Sprintf("trailing_jump %s must be less than the distance %s between %s %s and stop_loss_price %s",
				o.TrailingJump, distance, refName, ref, o.StopLossPrice),
			"trailing_jump", "stop_loss_price"))
	}
	return out
}

func relationViolation(t model.TransactionType, lowField string, low decimal.Decimal, highField string, high decimal.Decimal) Violation {
	return violation(model.ErrorKindPriceRelationship,
		fmt.Sprintf("%s requires %s < %s, got %s %s and %s %s", t, lowField, highField, lowField, low, highField, high),
		lowField, highField)
}

func checkLotSize(in *Input) []Violation {
	if in.Instrument == nil || in.Order.Quantity <= 0 {
		return nil
	}
	lot := in.Instrument.LotSize
	if lot <= 1 {
		return nil
	}
	if in.Order.Quantity%lot != 0 {
		return []Violation{violation(model.ErrorKindLotSize,
			fmt.Sprintf("quantity %d must be a multiple of lot size %d", in.Order.Quantity, lot),
			"quantity")}
	}
	return nil
}
