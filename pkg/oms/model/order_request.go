package model

import "github.com/shopspring/decimal"

// OrderRequest is a super order as submitted by a caller. Stages and the
// payload builder only read it.
type OrderRequest struct {
	Symbol          string
	Exchange        Exchange
	TransactionType TransactionType
	Quantity        int64
	OrderType       OrderType
	Price           decimal.NullDecimal
	ProductType     ProductType
	TargetPrice     decimal.Decimal
	StopLossPrice   decimal.Decimal
	TrailingJump    decimal.Decimal
	Category        OrderCategory
	Tag             string

	// Contract narrows the lookup to one derivative when the symbol alone
	// is ambiguous.
	Contract *ContractSpec
}

// ContractSpec identifies a derivative by expiry date (YYYY-MM-DD),
// strike and option type. Futures leave Strike zero and OptionType empty.
type ContractSpec struct {
	Expiry     string
	Strike     decimal.Decimal
	OptionType OptionType
}

func (r *OrderRequest) HasPrice() bool {
	return r.Price.Valid
}

func (r *OrderRequest) IsTrailing() bool {
	return r.TrailingJump.IsPositive()
}
