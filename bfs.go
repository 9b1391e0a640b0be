package graphwalk

import (
	"context"

	"go.uber.org/zap"
)

// Bfs walks the reachable closure of a root node in breadth-first order:
// generation k's children are all scheduled before any grandchild of
// generation k enters the pending queue, so level k is fully emitted
// before level k+1 begins.
//
// Within a single generation, emission order follows the completion order
// of sibling expansion futures, not the parent's position in the previous
// generation — "breadth-first" here means level-by-level, not strictly
// parent-ordered.
type Bfs[K comparable] struct {
	cfg          *engineConfig
	pending      *pendingQueue[K]
	current      ChildStream[K]
	currentDepth int
	visited      map[K]struct{}
	maxDepth     *int
	allowCircles bool
	runCtx       context.Context
	cancel       context.CancelFunc
	closed       bool
}

// NewBfs arms a breadth-first traversal of root. maxDepth of nil means
// unbounded. When allowCircles is false, each distinct node (by Key) is
// emitted at most once and root is pre-marked visited at construction.
//
// Every expansion future, including ones scheduled later from inside Next,
// is launched against the context derived here rather than whatever ctx a
// particular Next call happens to pass in, so that Close reliably cancels
// every in-flight Children call, not just whichever one is current.
func NewBfs[K comparable](ctx context.Context, root Node[K], maxDepth *int, allowCircles bool, opts ...Option) *Bfs[K] {
	cfg := newEngineConfig(opts)
	runCtx, cancel := context.WithCancel(ctx)

	b := &Bfs[K]{
		cfg:          cfg,
		pending:      newPendingQueue[K](cfg),
		maxDepth:     maxDepth,
		allowCircles: allowCircles,
		runCtx:       runCtx,
		cancel:       cancel,
	}
	if !allowCircles {
		b.visited = map[K]struct{}{root.Key(): {}}
	}
	b.pending.pushBack(b.runCtx, root, 1)
	return b
}

// Next implements Stream. It drains the current child-stream to exhaustion
// before acquiring the next one from the pending queue, which — combined
// with back-of-queue insertion at construction/acceptance time — is what
// produces level-by-level emission.
func (b *Bfs[K]) Next(ctx context.Context) (Node[K], error) {
	if b.closed {
		return nil, ErrClosed
	}
	for {
		if b.current != nil {
			node, err := b.current.Next(ctx)
			switch {
			case err == End:
				b.current.Close()
				b.current = nil
			case err != nil:
				return nil, err
			default:
				if accept, emitOnly := b.accept(node); accept {
					if !emitOnly {
						b.pending.pushBack(b.runCtx, node, b.currentDepth+1)
					}
					return node, nil
				}
				// duplicate under cycle-avoidance: drop and keep draining
				// the same current stream.
				continue
			}
		}

		depth, stream, expansionErr, ok, fatal := b.pending.next(b.runCtx)
		if fatal != nil {
			return nil, fatal
		}
		if !ok {
			return nil, End
		}
		if expansionErr != nil {
			b.cfg.logger.Debug("graphwalk: expansion failed", zap.Int("depth", depth), zap.Error(expansionErr))
			b.current = ErrorStream[K](expansionErr)
		} else {
			b.current = stream
		}
		b.currentDepth = depth
	}
}

// accept applies the visited/max-depth rules shared with Dfs. It returns
// accept=false when the node must be dropped (already visited), and
// emitOnly=true when the node should be yielded without scheduling further
// expansion (because it's at the depth cutoff).
func (b *Bfs[K]) accept(node Node[K]) (accept bool, emitOnly bool) {
	// A node beyond the cutoff is dropped outright rather than emitted —
	// this only ever fires for the depth-1 root children when maxDepth is
	// Some(0), since the engine never schedules expansion past the
	// cutoff otherwise. See the max_depth=0 decision in DESIGN.md.
	if b.maxDepth != nil && b.currentDepth > *b.maxDepth {
		return false, false
	}
	if !b.allowCircles {
		if _, seen := b.visited[node.Key()]; seen {
			b.cfg.logger.Debug("graphwalk: visited-set hit, dropping node", zap.Int("depth", b.currentDepth), zap.Any("key", node.Key()))
			return false, false
		}
		b.visited[node.Key()] = struct{}{}
	}
	if b.maxDepth != nil && b.currentDepth == *b.maxDepth {
		return true, true
	}
	return true, false
}

// Close cancels any in-flight expansion and releases the current stream.
// Safe to call more than once.
func (b *Bfs[K]) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.cancel()
	if b.current != nil {
		b.current.Close()
		b.current = nil
	}
}
