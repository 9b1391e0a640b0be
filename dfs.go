package graphwalk

import (
	"context"

	"go.uber.org/zap"
)

// Dfs walks the reachable closure of a root node depth-first: each time a
// node is emitted, its expansion future jumps to the front of the pending
// queue, so it is the next future to complete and land on top of the
// stack — diving into that subtree before any further sibling of an
// ancestor is visited.
type Dfs[K comparable] struct {
	cfg          *engineConfig
	pending      *pendingQueue[K]
	stack        []dfsFrame[K]
	visited      map[K]struct{}
	maxDepth     *int
	allowCircles bool
	runCtx       context.Context
	cancel       context.CancelFunc
	closed       bool
}

type dfsFrame[K comparable] struct {
	depth  int
	stream ChildStream[K]
}

// NewDfs arms a depth-first traversal of root with the same semantics as
// NewBfs, differing only in emission order. As with NewBfs, every expansion
// future — including ones scheduled later from inside Next — is launched
// against the context derived here rather than whatever ctx a particular
// Next call happens to pass in, so that Close reliably cancels every
// in-flight Children call.
func NewDfs[K comparable](ctx context.Context, root Node[K], maxDepth *int, allowCircles bool, opts ...Option) *Dfs[K] {
	cfg := newEngineConfig(opts)
	runCtx, cancel := context.WithCancel(ctx)

	d := &Dfs[K]{
		cfg:          cfg,
		pending:      newPendingQueue[K](cfg),
		maxDepth:     maxDepth,
		allowCircles: allowCircles,
		runCtx:       runCtx,
		cancel:       cancel,
	}
	if !allowCircles {
		d.visited = map[K]struct{}{root.Key(): {}}
	}
	d.pending.pushFront(d.runCtx, root, 1)
	return d
}

// Next implements Stream. On each call it first absorbs the queue's front
// future onto the stack — blocking on it when the queue is non-empty, even
// if the stack already has ready work, which is what forces the dive
// discipline: a parent's stream is never redrained until the child future
// just scheduled in front of it has resolved. It then drains from the
// stack top, popping and immediately re-inspecting the new top on
// exhaustion rather than returning — in the blocking translation a pop is
// simply a continue, never a return, matching the "no pending return after
// a pop" rule from the original poll-based design.
func (d *Dfs[K]) Next(ctx context.Context) (Node[K], error) {
	if d.closed {
		return nil, ErrClosed
	}

	depth, stream, expansionErr, hadFuture, fatal := d.pending.next(d.runCtx)
	if fatal != nil {
		return nil, fatal
	}
	if hadFuture {
		if expansionErr != nil {
			d.cfg.logger.Debug("graphwalk: expansion failed", zap.Int("depth", depth), zap.Error(expansionErr))
			stream = ErrorStream[K](expansionErr)
		}
		d.stack = append(d.stack, dfsFrame[K]{depth: depth, stream: stream})
	}

	for {
		if len(d.stack) == 0 {
			return nil, End
		}
		top := &d.stack[len(d.stack)-1]
		node, err := top.stream.Next(ctx)
		switch {
		case err == End:
			top.stream.Close()
			d.stack = d.stack[:len(d.stack)-1]
			continue
		case err != nil:
			return nil, err
		default:
			if accept, emitOnly := d.accept(top.depth, node); accept {
				if !emitOnly {
					d.pending.pushFront(d.runCtx, node, top.depth+1)
				}
				return node, nil
			}
			continue
		}
	}
}

// accept mirrors Bfs.accept; depth is passed explicitly since Dfs tracks
// per-frame depth rather than a single current depth.
func (d *Dfs[K]) accept(depth int, node Node[K]) (accept bool, emitOnly bool) {
	if d.maxDepth != nil && depth > *d.maxDepth {
		return false, false
	}
	if !d.allowCircles {
		if _, seen := d.visited[node.Key()]; seen {
			d.cfg.logger.Debug("graphwalk: visited-set hit, dropping node", zap.Int("depth", depth), zap.Any("key", node.Key()))
			return false, false
		}
		d.visited[node.Key()] = struct{}{}
	}
	if d.maxDepth != nil && depth == *d.maxDepth {
		return true, true
	}
	return true, false
}

// Close cancels any in-flight expansion and releases every stream held on
// the stack. Safe to call more than once.
func (d *Dfs[K]) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.cancel()
	for _, frame := range d.stack {
		frame.stream.Close()
	}
	d.stack = nil
}
