package graphwalk

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBfs(t *testing.T) {
	Convey("Given a binary tree of integers with delayed children", t, func() {
		ctx := context.Background()

		Convey("Bfs with allow_circles=true collects the full level-by-level closure", func() {
			maxDepth := 3
			bfs := NewBfs[int](ctx, binaryTreeNode{n: 0, delay: 10 * time.Millisecond}, &maxDepth, true)
			defer bfs.Close()

			nodes, errs := Drain[int](ctx, bfs)
			So(errs, ShouldBeEmpty)

			want := []int{1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3, 3}
			got := depthsOf(nodes)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("depths mismatch (-want +got):\n%s", diff)
			}
			So(sort.IntsAreSorted(got), ShouldBeTrue)
		})

		Convey("Bfs with allow_circles=false never re-emits a node", func() {
			maxDepth := 3
			bfs := NewBfs[int](ctx, binaryTreeNode{n: 0}, &maxDepth, false)
			defer bfs.Close()

			nodes, errs := Drain[int](ctx, bfs)
			So(errs, ShouldBeEmpty)

			// binaryTreeNode never produces a duplicate key by construction
			// (it's a bijection onto the binary-heap numbering), so
			// allow_circles=false cannot remove anything here: the
			// no-duplicates property is exercised meaningfully by the
			// edgeGraphNode completeness test below instead. This assertion
			// pins the (unsurprising) consequence for this fixture: the
			// full closure still comes out, once each.
			want := []int{1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3, 3}
			So(depthsOf(nodes), ShouldResemble, want)

			seen := map[int]bool{}
			for _, k := range keysOf(nodes) {
				So(seen[k], ShouldBeFalse)
				seen[k] = true
			}
		})

		Convey("max_depth=0 emits nothing", func() {
			maxDepth := 0
			bfs := NewBfs[int](ctx, binaryTreeNode{n: 0}, &maxDepth, true)
			defer bfs.Close()

			nodes, errs := Drain[int](ctx, bfs)
			So(nodes, ShouldBeEmpty)
			So(errs, ShouldBeEmpty)
		})

		Convey("depth cutoff never emits beyond max_depth and stops expanding at it", func() {
			maxDepth := 2
			bfs := NewBfs[int](ctx, binaryTreeNode{n: 0}, &maxDepth, true)
			defer bfs.Close()

			nodes, _ := Drain[int](ctx, bfs)
			depths := depthsOf(nodes)
			So(len(depths), ShouldEqual, 6) // 2 at depth1, 4 at depth2
			for _, d := range depths {
				So(d, ShouldBeLessThanOrEqualTo, 2)
			}
		})
	})

	Convey("Given a node whose two children always collide on the same key", t, func() {
		ctx := context.Background()

		Convey("allow_circles=false collapses the would-be tree into a single chain", func() {
			maxDepth := 3
			bfs := NewBfs[int](ctx, collidingNode{n: 0}, &maxDepth, false)
			defer bfs.Close()

			nodes, errs := Drain[int](ctx, bfs)
			So(errs, ShouldBeEmpty)

			// one sibling at each level is always rejected as an
			// already-visited duplicate, so the spine degenerates to
			// exactly one emission per depth instead of doubling every
			// level the way binaryTreeNode does. collidingNode's key
			// equals its depth by construction, so the key sequence
			// doubles as the depth sequence here.
			want := []int{1, 2, 3}
			got := keysOf(nodes)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
		})

		Convey("allow_circles=true keeps both colliding siblings at every level", func() {
			maxDepth := 2
			bfs := NewBfs[int](ctx, collidingNode{n: 0}, &maxDepth, true)
			defer bfs.Close()

			nodes, errs := Drain[int](ctx, bfs)
			So(errs, ShouldBeEmpty)
			// with no dedup, each of the 2 depth-1 siblings schedules its own
			// depth-2 expansion, and each of those produces 2 more colliding
			// siblings: 2 at depth 1, 4 at depth 2.
			So(keysOf(nodes), ShouldResemble, []int{1, 1, 2, 2, 2, 2})
		})
	})

	Convey("Given a small cyclic graph (D loops back to A)", t, func() {
		ctx := context.Background()
		root := edgeGraphNode{id: "A", edges: demoGraph()}

		Convey("allow_circles=false reaches completeness with exactly one emission each", func() {
			bfs := NewBfs[string](ctx, root, nil, false)
			defer bfs.Close()

			nodes, errs := Drain[string](ctx, bfs)
			So(errs, ShouldBeEmpty)

			got := stringKeysOf(nodes)
			sort.Strings(got)
			So(got, ShouldResemble, []string{"B", "C", "D"})
		})

		Convey("allow_circles=true revisits D's cycle back through A", func() {
			maxDepth := 4
			bfs := NewBfs[string](ctx, root, &maxDepth, true)
			defer bfs.Close()

			nodes, errs := Drain[string](ctx, bfs)
			So(errs, ShouldBeEmpty)
			So(len(nodes), ShouldBeGreaterThan, 3) // A reappears via the cycle
		})
	})

	Convey("Given a node whose expansion fails for every third key", t, func() {
		ctx := context.Background()
		root := flakyNode{n: 0}

		Convey("errors are surfaced transparently without losing other branches", func() {
			maxDepth := 3
			bfs := NewBfs[int](ctx, root, &maxDepth, true)
			defer bfs.Close()

			nodes, errs := Drain[int](ctx, bfs)
			// node 3 and node 6 (both depth 2, both multiples of 3) fail
			// their own expansion; every other branch still completes.
			So(len(errs), ShouldEqual, 2)
			So(len(nodes), ShouldEqual, 10)
		})
	})
}

// flakyNode fails its own expansion (not a per-item error) whenever its key
// is a non-zero multiple of 3, exercising the "expansion-future error" path
// from spec.md §7 rather than the "child-item error" path.
type flakyNode struct {
	n int
}

func (f flakyNode) Key() int { return f.n }

func (f flakyNode) Children(ctx context.Context, depth int) (ChildStream[int], error) {
	if f.n != 0 && f.n%3 == 0 {
		return nil, errExpansion
	}
	return FromSlice[int]([]Node[int]{
		flakyNode{n: 2*f.n + 1},
		flakyNode{n: 2*f.n + 2},
	}), nil
}
