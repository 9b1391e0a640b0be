// Package graphwalk exposes graph traversal as a lazy, pull-based stream.
//
// A caller supplies a Node type whose children are produced by an
// asynchronous, fallible expansion operation (Node.Children). Bfs and Dfs
// walk the reachable closure of a root node in breadth-first or
// depth-first order, to an optional max depth, optionally de-duplicating
// repeated nodes to avoid cycles.
package graphwalk

import (
	"context"
	"errors"
)

// End is returned from Stream.Next when the stream has been fully drained.
// Once Next returns End, every subsequent call also returns End.
var End = errors.New("graphwalk: end of stream")

// ErrClosed is returned by Stream.Next after Close has been called.
var ErrClosed = errors.New("graphwalk: stream closed")

// Node is a user-supplied graph vertex. K is the comparable key type used
// to detect previously-visited nodes when cycle-avoidance is enabled.
type Node[K comparable] interface {
	// Key identifies this node for equality and cycle-avoidance purposes.
	Key() K

	// Children asynchronously and fallibly produces this node's children.
	// depth is the depth the returned children will be at (the caller's
	// depth + 1); implementations may use it to short-circuit expansion,
	// but the engine enforces its own max-depth cutoff regardless.
	//
	// The outer error means expansion failed outright. Individual items
	// yielded by the returned ChildStream may themselves be errors,
	// representing a child that could not be produced.
	Children(ctx context.Context, depth int) (ChildStream[K], error)
}

// ChildStream is a lazy, possibly-finite sequence of a node's children.
// It is owned exclusively by whichever engine created it and is never
// shared across streams.
type ChildStream[K comparable] interface {
	// Next advances the stream. It returns End once exhausted; every call
	// after that must also return End.
	Next(ctx context.Context) (Node[K], error)
	// Close releases any resources held by the stream. Safe to call more
	// than once and safe to call before exhaustion.
	Close()
}

// Stream is the pull-based contract both Bfs and Dfs implement.
type Stream[K comparable] interface {
	// Next returns the next node in the traversal, or End once exhausted.
	Next(ctx context.Context) (Node[K], error)
	// Close cancels any in-flight expansion and releases held streams.
	Close()
}

// Drain consumes s to completion, returning every successfully emitted node
// and every error encountered along the way, in the order they occurred.
// It stops early only if ctx is done.
func Drain[K comparable](ctx context.Context, s Stream[K]) (nodes []Node[K], errs []error) {
	for {
		node, err := s.Next(ctx)
		switch {
		case err == nil:
			nodes = append(nodes, node)
		case errors.Is(err, End):
			return nodes, errs
		case ctx.Err() != nil:
			errs = append(errs, err)
			return nodes, errs
		default:
			errs = append(errs, err)
		}
	}
}
