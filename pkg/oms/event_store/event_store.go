package eventstore

import (
	"context"

	"github.com/joripage/superorder/pkg/oms/model"
)

// EventStore receives one event per placement attempt. Implementations must
// not block the caller on remote failures.
type EventStore interface {
	AddEvent(ctx context.Context, ev *model.PlacementEvent)
}

// Multi fans an event out to several stores in order.
type Multi []EventStore

func (m Multi) AddEvent(ctx context.Context, ev *model.PlacementEvent) {
	for _, s := range m {
		s.AddEvent(ctx, ev)
	}
}
