package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawOrder is the loosely typed order accepted from files and HTTP bodies.
type RawOrder struct {
	Symbol          string           `json:"symbol"`
	Exchange        string           `json:"exchange"`
	TransactionType string           `json:"transaction_type"`
	Quantity        int64            `json:"quantity"`
	OrderType       string           `json:"order_type"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	ProductType     string           `json:"product_type"`
	TargetPrice     decimal.Decimal  `json:"target_price"`
	StopLossPrice   decimal.Decimal  `json:"stop_loss_price"`
	TrailingJump    decimal.Decimal  `json:"trailing_jump"`
	OrderCategory   string           `json:"order_category,omitempty"`
	Tag             string           `json:"tag,omitempty"`

	Expiry     string           `json:"expiry,omitempty"`
	Strike     *decimal.Decimal `json:"strike,omitempty"`
	OptionType string           `json:"option_type,omitempty"`
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Normalize trims and upper-cases every code field in place.
func (o *RawOrder) Normalize() {
	o.Symbol = normalizeCode(o.Symbol)
	o.Exchange = normalizeCode(o.Exchange)
	o.TransactionType = normalizeCode(o.TransactionType)
	o.OrderType = normalizeCode(o.OrderType)
	o.ProductType = normalizeCode(o.ProductType)
	o.OrderCategory = normalizeCode(o.OrderCategory)
	o.OptionType = normalizeCode(o.OptionType)
	o.Expiry = strings.TrimSpace(o.Expiry)
	o.Tag = strings.TrimSpace(o.Tag)
}

// ToRequest normalizes the raw order and converts it. Unknown codes are kept
// verbatim so validation can report them.
func (o RawOrder) ToRequest() *OrderRequest {
	o.Normalize()

	req := &OrderRequest{
		Symbol:          o.Symbol,
		Exchange:        Exchange(o.Exchange),
		TransactionType: TransactionType(o.TransactionType),
		Quantity:        o.Quantity,
		OrderType:       OrderType(o.OrderType),
		ProductType:     ProductType(o.ProductType),
		TargetPrice:     o.TargetPrice,
		StopLossPrice:   o.StopLossPrice,
		TrailingJump:    o.TrailingJump,
		Category:        OrderCategory(o.OrderCategory),
		Tag:             o.Tag,
	}
	if req.Category == "" {
		req.Category = OrderCategorySuper
	}
	if o.Price != nil {
		req.Price = decimal.NewNullDecimal(*o.Price)
	}
	if o.Expiry != "" {
		spec := &ContractSpec{
			Expiry:     o.Expiry,
			OptionType: OptionType(o.OptionType),
		}
		if o.Strike != nil {
			spec.Strike = *o.Strike
		}
		req.Contract = spec
	}

	return req
}
