package mcts

import "github.com/dgoengine/mctscore/internal/game"

// maxDepth bounds a single descent so a (theoretically impossible, but
// cheap to guard against) cycle-free-but-unbounded tree can never spin a
// worker forever.
const maxDepth = 2 * game.NumPoints

// TraceStep records one edge visited during a descent: the node it was
// selected from, the color that played it, and the edge index (a packed
// Point).
type TraceStep struct {
	Parent *Node
	Color  game.Color
	Edge   game.Point
}

// Trace is the ordered path from the root to the freshly touched leaf
// slot.
type Trace []TraceStep

// ProbeKind enumerates the three outcomes of a descent.
type ProbeKind int

const (
	// Found means an unexpanded edge was reached and reserved by this
	// descent; the caller must evaluate the resulting board and call
	// Insert with the trace.
	Found ProbeKind = iota
	// Conflict means the descent observed concurrent contention; the
	// caller should yield and retry.
	Conflict
	// NoResult means the descent reached a terminal condition (no
	// eligible edge, or the depth cap) and cannot progress.
	NoResult
)

// ProbeResult is the outcome of a single descent.
type ProbeResult struct {
	Kind  ProbeKind
	Trace Trace
}

// Probe descends from root, selecting edges with PUCT and applying
// virtual loss, mutating board by playing the chosen moves, until it
// reaches an unexpanded edge, a concurrent conflict, or a terminal
// condition.
func Probe(root *Node, board game.Board) ProbeResult {
	node := root
	color := node.ToMove
	var trace Trace
	release := func() {
		for _, s := range trace {
			s.Parent.edges[s.Edge].vn.Add(-1)
			s.Parent.VTotalCount.Add(-1)
		}
	}

	for depth := 0; depth < maxDepth; depth++ {
		idx := node.selectPUCT()
		if idx < 0 {
			release()
			return ProbeResult{Kind: NoResult}
		}

		e := &node.edges[idx]
		e.vn.Add(1)
		node.VTotalCount.Add(1)

		board.Place(color, idx)
		trace = append(trace, TraceStep{Parent: node, Color: color, Edge: idx})

		child := e.child.Load()
		if child == nil {
			if e.child.CompareAndSwap(nil, reserved) {
				return ProbeResult{Kind: Found, Trace: trace}
			}
			// Someone else raced us for this edge between our Load and
			// our CAS; roll back the virtual loss applied along the trace
			// and report a conflict so the caller retries.
			release()
			return ProbeResult{Kind: Conflict}
		}
		if child == reserved {
			release()
			return ProbeResult{Kind: Conflict}
		}

		node = child
		color = color.Opposite()
	}

	release()
	return ProbeResult{Kind: NoResult}
}

// Insert publishes a freshly evaluated leaf into the edge reserved for it
// by the matching Probe call, then walks the trace in reverse applying
// the real backup and releasing the virtual loss laid down during
// descent.
//
// value is the leaf's value in [0,1] from toMove's perspective; it is
// complemented at each ply on the way back up since the mover alternates.
func Insert(trace Trace, toMove game.Color, value float32, policy []float32) {
	if len(trace) == 0 {
		return
	}

	leaf := trace[len(trace)-1]
	child := New(toMove, value, policy)
	leaf.Parent.edges[leaf.Edge].child.Store(child)

	// leaf.Parent's ToMove is the opposite of toMove (toMove is the color
	// that played the move into the leaf), so the innermost edge already
	// needs one complement before its first addW.
	v := 1.0 - float64(value)
	for i := len(trace) - 1; i >= 0; i-- {
		step := trace[i]
		e := &step.Parent.edges[step.Edge]

		e.vn.Add(-1)
		step.Parent.VTotalCount.Add(-1)

		e.n.Add(1)
		e.addW(v)
		step.Parent.TotalCount.Add(1)

		v = 1.0 - v
	}
}

// Forward returns the child reached by playing p from parent (nil if that
// edge was never expanded), so that its subtree can be reused as the
// starting tree after a real move is played. The child is not unlinked
// from parent; parent's edge keeps pointing at it.
func Forward(parent *Node, p game.Point) *Node {
	return parent.Child(p)
}
