package riskrule

import (
	"fmt"

	"github.com/joripage/superorder/pkg/oms/model"
)

// BaseStage holds the broker independent checks.
func BaseStage() Stage {
	return Stage{
		Name: StageBase,
		Rules: []RiskRule{
			RuleFunc(checkQuantity),
			RuleFunc(checkOrderType),
			RuleFunc(checkPricePresence),
			RuleFunc(checkTransactionType),
			RuleFunc(checkExchange),
			RuleFunc(checkTrailingJump),
		},
	}
}

func checkQuantity(in *Input) []Violation {
	if in.Order.Quantity <= 0 {
		return []Violation{structural(fmt.Sprintf("quantity must be a positive integer, got %d", in.Order.Quantity), "quantity")}
	}
	return nil
}

func checkOrderType(in *Input) []Violation {
	if !in.Order.OrderType.Valid() {
		return []Violation{structural(fmt.Sprintf("order_type %q must be MARKET or LIMIT", in.Order.OrderType), "order_type")}
	}
	return nil
}

func checkPricePresence(in *Input) []Violation {
	o := in.Order
	var out []Violation

	switch o.OrderType {
	case model.OrderTypeLimit:
		if !o.HasPrice() {
			out = append(out, structural("price is required for LIMIT orders", "price", "order_type"))
		}
	case model.OrderTypeMarket:
		if o.HasPrice() {
			out = append(out, structural("price must be absent for MARKET orders", "price", "order_type"))
		}
	}

	if o.HasPrice() && !o.Price.Decimal.IsPositive() {
		out = append(out, structural(fmt.Sprintf("price must be positive, got %s", o.Price.Decimal), "price"))
	}
	return out
}

func checkTransactionType(in *Input) []Violation {
	if !in.Order.TransactionType.Valid() {
		return []Violation{structural(fmt.Sprintf("transaction_type %q must be BUY or SELL", in.Order.TransactionType), "transaction_type")}
	}
	return nil
}

func checkExchange(in *Input) []Violation {
	if !in.Order.Exchange.Valid() {
		return []Violation{structural(fmt.Sprintf("unknown exchange %q", in.Order.Exchange), "exchange")}
	}
	return nil
}

func checkTrailingJump(in *Input) []Violation {
	if in.Order.TrailingJump.IsNegative() {
		return []Violation{structural(fmt.Sprintf("trailing_jump must not be negative, got %s", in.Order.TrailingJump), "trailing_jump")}
	}
	return nil
}
