package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkawrapper "github.com/joripage/superorder/pkg/kafka_wrapper"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/joripage/superorder/pkg/oms/repo"
)

type fakePlacementEvents struct {
	batches [][]*model.PlacementEvent
	err     error
}

func (f *fakePlacementEvents) Create(_ context.Context, ev *model.PlacementEvent) (*model.PlacementEvent, error) {
	f.batches = append(f.batches, []*model.PlacementEvent{ev})
	return ev, f.err
}

func (f *fakePlacementEvents) BulkCreate(_ context.Context, evs []*model.PlacementEvent) ([]*model.PlacementEvent, error) {
	f.batches = append(f.batches, evs)
	return evs, f.err
}

func (f *fakePlacementEvents) ListByCorrelationID(context.Context, string) ([]*model.PlacementEvent, error) {
	return nil, nil
}

type fakeRepo struct {
	events *fakePlacementEvents
}

func (r fakeRepo) Instrument() repo.IInstrument { return nil }
func (r fakeRepo) PlacementEvent() repo.IPlacementEvent { return r.events }

func encode(t *testing.T, ev model.PlacementEvent) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleBatch(t *testing.T) {
	events := &fakePlacementEvents{}
	w := NewWorker(fakeRepo{events: events}, nil)

	msgs := []kafkawrapper.Message{
		{Value: encode(t, model.PlacementEvent{EventID: "e-1", Symbol: "HDFCBANK", Kind: model.PlacementEventPlaced})},
		{Value: []byte("not json"), Offset: 7},
		{Value: encode(t, model.PlacementEvent{Symbol: "NOID"})},
		{Value: encode(t, model.PlacementEvent{EventID: "e-2", Symbol: "RELIANCE", Kind: model.PlacementEventFailed})},
	}
	if err := w.HandleBatch(context.Background(), msgs); err != nil {
		t.Fatal(err)
	}
	if len(events.batches) != 1 {
		t.Fatalf("expected one bulk insert, got %d", len(events.batches))
	}
	got := events.batches[0]
	if len(got) != 2 || got[0].EventID != "e-1" || got[1].EventID != "e-2" {
		t.Errorf("unexpected stored events %+v", got)
	}
}

func TestHandleBatchPropagatesStoreError(t *testing.T) {
	events := &fakePlacementEvents{err: errors.New("db down")}
	w := NewWorker(fakeRepo{events: events}, nil)

	msgs := []kafkawrapper.Message{{Value: encode(t, model.PlacementEvent{EventID: "e-1"})}}
	if err := w.HandleBatch(context.Background(), msgs); err == nil {
		t.Fatal("expected error so the batch is retried")
	}
}

func TestHandleBatchOnlyUndecodable(t *testing.T) {
	events := &fakePlacementEvents{}
	w := NewWorker(fakeRepo{events: events}, nil)
	if err := w.HandleBatch(context.Background(), []kafkawrapper.Message{{Value: []byte("{")}}); err != nil {
		t.Fatal(err)
	}
	if len(events.batches) != 0 {
		t.Errorf("nothing should be stored, got %d batches", len(events.batches))
	}
}
