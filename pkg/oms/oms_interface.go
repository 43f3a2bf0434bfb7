package oms

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
)

type IOMS interface {
	PlaceSuperOrder(ctx context.Context, req *model.OrderRequest) (*model.SubmissionResult, error)
	ValidateOnly(ctx context.Context, req *model.OrderRequest) (*model.WirePayload, error)
}

var _ IOMS = (*OMS)(nil)
