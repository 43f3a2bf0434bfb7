package oms

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

// OrderGateway submits a built payload to the broker.
type OrderGateway interface {
	PlaceSuperOrder(ctx context.Context, payload *model.WirePayload) (*model.SubmissionResult, error)
}

// PriceSource supplies last traded prices for the ltp market policy.
type PriceSource interface {
	LastTradedPrice(ctx context.Context, segment model.ExchangeSegment, securityID string) (decimal.Decimal, error)
}
