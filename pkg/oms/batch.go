package oms

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joripage/go_util/pkg/shardqueue"
	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/metrics"
	"github.com/joripage/superorder/pkg/oms/model"
)

const (
	numShards = 8
	queueSize = 10_000
)

type BatchResult struct {
	Index   int
	Request *model.OrderRequest
	Result  *model.SubmissionResult
	Err     error
}

type batchJob struct {
	ctx  context.Context
	req  *model.OrderRequest
	out  *BatchResult
	done func()
}

// BatchPlacer places many orders concurrently. Orders sharing a symbol land
// on the same shard and are submitted one after another.
type BatchPlacer struct {
	placer     IOMS
	shardQueue *shardqueue.Shardqueue
	metrics    *metrics.Metrics
	pending    atomic.Int64

	mu     sync.RWMutex
	closed bool
}

func NewBatchPlacer(placer IOMS, m *metrics.Metrics) *BatchPlacer {
	b := &BatchPlacer{
		placer:     placer,
		shardQueue: shardqueue.NewShardQueue(numShards, queueSize),
		metrics:    m,
	}
	b.shardQueue.Start(func(msg interface{}) error {
		if job, ok := msg.(*batchJob); ok {
			b.run(job)
		}
		return nil
	})
	return b
}

func (b *BatchPlacer) run(job *batchJob) {
	defer job.done()

	if err := job.ctx.Err(); err != nil {
		job.out.Err = err
		return
	}
	job.out.Result, job.out.Err = b.placer.PlaceSuperOrder(job.ctx, job.req)
}

// Close stops the shard workers once queued orders are done. PlaceAll
// after Close fails every order with ErrBatchClosed.
func (b *BatchPlacer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.shardQueue.Stop()
}

// PlaceAll returns one result per request, in input order.
func (b *BatchPlacer) PlaceAll(ctx context.Context, reqs []*model.OrderRequest) []BatchResult {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		results := make([]BatchResult, len(reqs))
		for i, req := range reqs {
			results[i] = BatchResult{Index: i, Request: req, Err: ErrBatchClosed}
		}
		return results
	}

	if !logging.HasRequestID(ctx) {
		ctx = logging.WithRequestID(ctx, logging.NewRequestID())
	}
	parentID := logging.RequestID(ctx)

	results := make([]BatchResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		results[i] = BatchResult{Index: i, Request: req}
		wg.Add(1)
		b.metrics.SetBatchPending(int(b.pending.Add(1)))

		job := &batchJob{
			ctx: logging.WithRequestID(ctx, fmt.Sprintf("%s-%d", parentID, i)),
			req: req,
			out: &results[i],
			done: func() {
				b.metrics.SetBatchPending(int(b.pending.Add(-1)))
				wg.Done()
			},
		}
		b.shardQueue.Shard(shardKey(req), job)
	}
	wg.Wait()
	return results
}

func shardKey(req *model.OrderRequest) string {
	if req == nil {
		return ""
	}
	return string(req.Exchange) + ":" + req.Symbol
}
