package eventstore

import (
	"context"
	"sync"

	"github.com/joripage/superorder/pkg/oms/model"
)

type InMemoryEventStore struct {
	mu            sync.RWMutex
	events        []*model.PlacementEvent
	byCorrelation map[string][]*model.PlacementEvent
	latestOrderID map[string]string // CorrelationID -> last broker OrderID
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		byCorrelation: make(map[string][]*model.PlacementEvent),
		latestOrderID: make(map[string]string),
	}
}

func (s *InMemoryEventStore) AddEvent(_ context.Context, ev *model.PlacementEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	if ev.CorrelationID == "" {
		return
	}
	s.byCorrelation[ev.CorrelationID] = append(s.byCorrelation[ev.CorrelationID], ev)
	if ev.OrderID != "" {
		s.latestOrderID[ev.CorrelationID] = ev.OrderID
	}
}

// Events returns every event in arrival order.
func (s *InMemoryEventStore) Events() []*model.PlacementEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PlacementEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *InMemoryEventStore) EventsByCorrelationID(correlationID string) []*model.PlacementEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.byCorrelation[correlationID]
	out := make([]*model.PlacementEvent, len(evs))
	copy(out, evs)
	return out
}

// LatestOrderID returns the broker order id last placed under correlationID.
func (s *InMemoryEventStore) LatestOrderID(correlationID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestOrderID[correlationID]
}
