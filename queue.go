package graphwalk

import (
	"container/list"
	"context"

	"github.com/kalenfeld/graphwalk/internal/futurepool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// pendingQueue holds in-flight child-expansion futures and reveals their
// results in submission-position order, not wall-clock completion order —
// the Go analogue of Rust's FuturesOrdered. Each future starts running the
// moment it's pushed; next only blocks on whichever future is currently at
// the front.
//
// Not safe for concurrent use: it is only ever touched by the single
// goroutine driving an engine's Next calls.
type pendingQueue[K comparable] struct {
	list *list.List // of *futureSlot[K]
	cfg  *engineConfig
}

type futureSlot[K comparable] struct {
	depth  int
	future *futurepool.Future[ChildStream[K]]
}

func newPendingQueue[K comparable](cfg *engineConfig) *pendingQueue[K] {
	return &pendingQueue[K]{list: list.New(), cfg: cfg}
}

// pushBack schedules node's expansion at the given depth, to be drained
// after every future already in the queue. Used by Bfs.
func (q *pendingQueue[K]) pushBack(ctx context.Context, node Node[K], depth int) {
	q.list.PushBack(q.schedule(ctx, node, depth))
}

// pushFront schedules node's expansion at the given depth, to be drained
// before every future already in the queue. Used by Dfs.
func (q *pendingQueue[K]) pushFront(ctx context.Context, node Node[K], depth int) {
	q.list.PushFront(q.schedule(ctx, node, depth))
}

func (q *pendingQueue[K]) schedule(ctx context.Context, node Node[K], depth int) *futureSlot[K] {
	logger := q.cfg.logger
	tracer := q.cfg.tracer
	future := futurepool.Go(ctx, func(ctx context.Context) (ChildStream[K], error) {
		if tracer != nil {
			var span trace.Span
			ctx, span = tracer.Start(ctx, "graphwalk.expand", trace.WithAttributes(
				attribute.Int("graphwalk.depth", depth),
			))
			defer span.End()
			stream, err := node.Children(ctx, depth)
			if err != nil {
				span.RecordError(err)
			}
			return stream, err
		}
		return node.Children(ctx, depth)
	})
	logger.Debug("graphwalk: expansion scheduled", zap.Int("depth", depth))
	return &futureSlot[K]{depth: depth, future: future}
}

// empty reports whether the queue holds no futures at all, in flight or
// otherwise.
func (q *pendingQueue[K]) empty() bool {
	return q.list.Len() == 0
}

// next blocks on the queue's current front future and returns its result.
// ok is false only when the queue was already empty. If ctx is done before
// the front future resolves, fatal is the context error and the caller
// must abort the whole traversal (the future itself keeps running and will
// simply never be read again).
func (q *pendingQueue[K]) next(ctx context.Context) (depth int, stream ChildStream[K], expansionErr error, ok bool, fatal error) {
	front := q.list.Front()
	if front == nil {
		return 0, nil, nil, false, nil
	}
	slot := q.list.Remove(front).(*futureSlot[K])

	stream, err := slot.future.Wait(ctx)
	if ctx.Err() != nil {
		return slot.depth, nil, nil, true, ctx.Err()
	}
	return slot.depth, stream, err, true, nil
}
