package oms

import (
	"context"
	"testing"

	eventstore "github.com/joripage/superorder/pkg/oms/event_store"
	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
)

type nopGateway struct{}

func (nopGateway) PlaceSuperOrder(context.Context, *model.WirePayload) (*model.SubmissionResult, error) {
	return &model.SubmissionResult{OrderID: "1", OrderStatus: "PENDING"}, nil
}

func newBenchOMS(b *testing.B) *OMS {
	b.Helper()
	// an empty Multi drops events so memory stays flat across iterations
	o, err := NewOMS(nopGateway{}, instrument.NewResolver(testStore()), "c", WithEventStore(eventstore.Multi{}))
	if err != nil {
		b.Fatal(err)
	}
	return o
}

func BenchmarkValidateOnly(b *testing.B) {
	o := newBenchOMS(b)
	req := hdfcRequest()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := o.ValidateOnly(ctx, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPlaceSuperOrder(b *testing.B) {
	o := newBenchOMS(b)
	req := hdfcRequest()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := o.PlaceSuperOrder(ctx, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBatchPlaceAll(b *testing.B) {
	placer := NewBatchPlacer(newBenchOMS(b), nil)
	reqs := make([]*model.OrderRequest, 1000)
	for i := range reqs {
		reqs[i] = hdfcRequest()
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		placer.PlaceAll(context.Background(), reqs)
	}
}
