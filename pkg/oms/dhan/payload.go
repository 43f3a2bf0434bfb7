package dhan

import (
	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
)

// Build maps a validated order and its instrument onto the super order body.
// It assumes every validation stage has passed.
func Build(req *model.OrderRequest, inst model.Instrument, clientID string) *model.WirePayload {
	segment, _ := instrument.ToSegment(req.Exchange)

	payload := &model.WirePayload{
		DhanClientID:    clientID,
		CorrelationID:   req.Tag,
		TransactionType: req.TransactionType,
		ExchangeSegment: segment,
		ProductType:     req.ProductType,
		OrderType:       req.OrderType,
		SecurityID:      inst.SecurityID,
		Quantity:        req.Quantity,
		TargetPrice:     req.TargetPrice.InexactFloat64(),
		StopLossPrice:   req.StopLossPrice.InexactFloat64(),
		TrailingJump:    req.TrailingJump.InexactFloat64(),
	}
	if req.OrderType == model.OrderTypeLimit && req.HasPrice() {
		price := req.Price.Decimal.InexactFloat64()
		payload.Price = &price
	}
	return payload
}
