package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/joripage/superorder/pkg/metrics"
	"github.com/joripage/superorder/pkg/oms"
	eventstore "github.com/joripage/superorder/pkg/oms/event_store"
	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

const (
	numSymbols = 200
	minPrice   = 100.0
	maxPrice   = 200.0
	maxQty     = 100
)

// ackGateway accepts every payload without any network round trip.
type ackGateway struct {
	seq atomic.Int64
}

func (g *ackGateway) PlaceSuperOrder(context.Context, *model.WirePayload) (*model.SubmissionResult, error) {
	return &model.SubmissionResult{OrderID: strconv.FormatInt(g.seq.Add(1), 10), OrderStatus: "PENDING"}, nil
}

func symbol(i int) string {
	return fmt.Sprintf("SYM%03d", i)
}

func instruments() []model.Instrument {
	rows := make([]model.Instrument, numSymbols)
	for i := range rows {
		rows[i] = model.Instrument{SecurityID: strconv.Itoa(10000 + i), Symbol: symbol(i), Exchange: model.ExchangeNSE, LotSize: 1}
	}
	return rows
}

// randomOrder returns a valid bracket most of the time and an inverted one
// otherwise, so both the accept and reject paths are measured.
func randomOrder(id int) *model.OrderRequest {
	price := decimal.NewFromFloat(minPrice + rand.Float64()*(maxPrice-minPrice)).Round(2)
	spread := decimal.NewFromInt(int64(rand.Intn(10) + 1))

	tx := model.TransactionTypeBuy
	target, stop := price.Add(spread), price.Sub(spread)
	if rand.Intn(2) == 0 {
		tx = model.TransactionTypeSell
		target, stop = stop, target
	}
	if rand.Intn(10) == 0 {
		target, stop = stop, target
	}

	return &model.OrderRequest{
		Symbol:          symbol(rand.Intn(numSymbols)),
		Exchange:        model.ExchangeNSE,
		TransactionType: tx,
		Quantity:        int64(rand.Intn(maxQty) + 1),
		OrderType:       model.OrderTypeLimit,
		Price:           decimal.NewNullDecimal(price),
		ProductType:     model.ProductTypeIntraday,
		TargetPrice:     target,
		StopLossPrice:   stop,
		Category:        model.OrderCategorySuper,
		Tag:             fmt.Sprintf("bench-%06d", id),
	}
}

func main() {
	numOrders := flag.Int("orders", 100_000, "number of orders to place")
	natsURL := flag.String("nats", "", "publish placement events to this NATS server")
	subject := flag.String("subject", "SUPERORDER.events", "JetStream subject for placement events")
	flag.Parse()

	store := instrument.NewStore()
	store.Replace("benchmark", instruments())

	m := metrics.NewMetrics(nil)
	var events eventstore.EventStore = eventstore.NewInMemoryEventStore()
	if *natsURL != "" {
		nc, err := nats.Connect(*natsURL)
		if err != nil {
			log.Fatalf("connect nats: %v", err)
		}
		defer nc.Drain()
		js, err := nc.JetStream(nats.PublishAsyncMaxPending(65536))
		if err != nil {
			log.Fatalf("jetstream: %v", err)
		}
		events = eventstore.NewJetStreamEventStore(js, *subject, nil)
	}

	o, err := oms.NewOMS(&ackGateway{}, instrument.NewResolver(store), "bench", oms.WithMetrics(m), oms.WithEventStore(events))
	if err != nil {
		log.Fatal(err)
	}

	reqs := make([]*model.OrderRequest, *numOrders)
	for i := range reqs {
		reqs[i] = randomOrder(i + 1)
	}

	placer := oms.NewBatchPlacer(o, m)
	defer placer.Close()

	start := time.Now()
	results := placer.PlaceAll(context.Background(), reqs)
	elapsed := time.Since(start)

	placed, rejected := 0, 0
	for _, r := range results {
		if r.Err != nil {
			rejected++
			if rejected <= 3 {
				log.Printf("rejected #%d: %v", r.Index, r.Err)
			}
			continue
		}
		placed++
	}

	fmt.Println("--------")
	fmt.Printf("Total Orders : %d\n", *numOrders)
	fmt.Printf("Placed       : %d\n", placed)
	fmt.Printf("Rejected     : %d\n", rejected)
	fmt.Printf("Time Taken   : %s\n", elapsed)
	fmt.Printf("Throughput   : %.0f orders/sec\n", float64(*numOrders)/elapsed.Seconds())
}
