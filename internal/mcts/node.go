// Package mcts implements the search tree: nodes with atomic per-edge
// statistics, PUCT selection, virtual loss, and the lock-free probe/insert
// descent protocol used to grow the tree under concurrent access.
//
// The concurrency shape is grounded on the teacher's lock-free-flavoured
// atomic counters in internal/engine/transposition.go (plain atomic
// reads/writes guarding a shared table) and internal/engine/search.go's
// atomic.Bool stop flag, generalized here to typed atomics per edge.
package mcts

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/dgoengine/mctscore/internal/config"
	"github.com/dgoengine/mctscore/internal/game"
)

// reserved is a sentinel child pointer published by the thread that wins
// the race to expand an edge, so that other concurrent descenders observe
// "expansion in progress" rather than a nil (never visited) or a real
// child.
var reserved = &Node{}

// edge holds the atomic statistics and child pointer for one candidate
// move out of a node.
type edge struct {
	n            atomic.Int64
	vn           atomic.Int64
	w            atomic.Uint64 // bits of an accumulated float64
	disqualified atomic.Bool
	child        atomic.Pointer[Node]
}

func (e *edge) addW(delta float64) {
	for {
		old := e.w.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if e.w.CompareAndSwap(old, next) {
			return
		}
	}
}

func (e *edge) value() float64 {
	return math.Float64frombits(e.w.Load())
}

// Node is a vertex of the search tree.
type Node struct {
	ToMove       game.Color
	InitialValue float32
	Prior        [game.PaddedPolicySize]float32

	edges [game.PolicySize]edge

	TotalCount  atomic.Int64
	VTotalCount atomic.Int64
}

// New creates a freshly expanded node from a network evaluation.
func New(toMove game.Color, initialValue float32, prior []float32) *Node {
	n := &Node{ToMove: toMove, InitialValue: initialValue}
	copy(n.Prior[:], prior)
	for i := len(prior); i < len(n.Prior); i++ {
		n.Prior[i] = game.NegInf
	}
	return n
}

// Count returns the number of real playouts that have passed through this
// node.
func (n *Node) Count() int64 { return n.TotalCount.Load() }

// Disqualify marks point p as ineligible for further selection.
func (n *Node) Disqualify(p game.Point) {
	n.edges[p].disqualified.Store(true)
}

// IsDisqualified reports whether p has been disqualified.
func (n *Node) IsDisqualified(p game.Point) bool {
	return n.edges[p].disqualified.Load()
}

// EdgeStats returns the (visits, virtual-loss visits, accumulated value)
// triple for point p, for diagnostics and tests.
func (n *Node) EdgeStats(p game.Point) (visits, virtualLoss int64, value float64) {
	e := &n.edges[p]
	return e.n.Load(), e.vn.Load(), e.value()
}

// Child returns the (possibly nil) expanded child reached by playing p.
func (n *Node) Child(p game.Point) *Node {
	c := n.edges[p].child.Load()
	if c == reserved {
		return nil
	}
	return c
}

func isEligible(prior float32, e *edge) bool {
	return prior != game.NegInf && !e.disqualified.Load()
}

// q computes the mean action-value of an edge under the configured
// virtual-loss penalty L.
func q(e *edge) float64 {
	n := e.n.Load()
	vn := e.vn.Load()
	denom := n + vn
	if denom < 1 {
		denom = 1
	}
	return (e.value() - float64(vn)*config.VirtualLoss) / float64(denom)
}

// selectPUCT picks the edge with the highest PUCT score among eligible
// edges, breaking ties toward the lower index. Returns -1 if no edge is
// eligible.
func (n *Node) selectPUCT() game.Point {
	total := n.TotalCount.Load() + n.VTotalCount.Load()
	sqrtTotal := math.Sqrt(float64(total))

	best := game.Point(-1)
	bestScore := math.Inf(-1)

	for i := 0; i < game.PolicySize; i++ {
		e := &n.edges[i]
		if !isEligible(n.Prior[i], e) {
			continue
		}

		nn := e.n.Load()
		vn := e.vn.Load()
		score := q(e) + config.PUCTConstant*float64(n.Prior[i])*sqrtTotal/float64(1+nn+vn)

		if score > bestScore {
			bestScore = score
			best = game.Point(i)
		}
	}

	return best
}

// ArgmaxCount returns the eligible edge with the highest real visit
// count, breaking ties toward the lower index. Returns -1 if no edge is
// eligible.
func (n *Node) ArgmaxCount() game.Point {
	best := game.Point(-1)
	var bestCount int64 = -1

	for i := 0; i < game.PolicySize; i++ {
		e := &n.edges[i]
		if !isEligible(n.Prior[i], e) {
			continue
		}

		if c := e.n.Load(); c > bestCount {
			bestCount = c
			best = game.Point(i)
		}
	}

	return best
}

// hasFiniteCandidate reports whether any policy entry is finite,
// regardless of disqualification.
func (n *Node) hasFiniteCandidate() bool {
	for i := 0; i < game.PolicySize; i++ {
		if n.Prior[i] != game.NegInf {
			return true
		}
	}
	return false
}

// hasEligibleCandidate reports whether any edge is both finite and not
// disqualified.
func (n *Node) hasEligibleCandidate() bool {
	for i := 0; i < game.PolicySize; i++ {
		if isEligible(n.Prior[i], &n.edges[i]) {
			return true
		}
	}
	return false
}

// Best returns the root's preferred move and its value estimate.
//
// With temperature == 0 it is the highest real-visit-count child. With
// temperature > 0 it samples from a categorical distribution over
// children weighted by n[i]^(1/temperature).
//
// Two degenerate cases are handled explicitly (see DESIGN.md): if the
// policy carries no finite candidate at all (a corrupted/degenerate
// network response), the node's own initial value estimate is returned
// alongside Pass, since nothing was ever searched but an estimate exists.
// If candidates exist but every one of them was disqualified by the
// caller, -Inf is returned alongside Pass, signalling that the position
// cannot be searched at all.
func (n *Node) Best(temperature float64) (float32, game.Point) {
	if !n.hasFiniteCandidate() {
		return n.InitialValue, game.Pass
	}
	if !n.hasEligibleCandidate() {
		return game.NegInf, game.Pass
	}

	if temperature <= 0 {
		idx := n.ArgmaxCount()
		return n.meanValue(idx), idx
	}

	return n.sampleByTemperature(temperature)
}

func (n *Node) meanValue(idx game.Point) float32 {
	e := &n.edges[idx]
	visits := e.n.Load()
	if visits == 0 {
		return n.InitialValue
	}
	return float32(e.value() / float64(visits))
}

func (n *Node) sampleByTemperature(temperature float64) (float32, game.Point) {
	type weighted struct {
		idx    game.Point
		weight float64
	}

	var candidates []weighted
	var total float64

	for i := 0; i < game.PolicySize; i++ {
		e := &n.edges[i]
		if !isEligible(n.Prior[i], e) {
			continue
		}

		visits := float64(e.n.Load())
		w := math.Pow(visits, 1.0/temperature)
		candidates = append(candidates, weighted{game.Point(i), w})
		total += w
	}

	if total <= 0 || len(candidates) == 0 {
		idx := n.ArgmaxCount()
		return n.meanValue(idx), idx
	}

	threshold := total * randomFloat64()
	var soFar float64
	for _, c := range candidates {
		soFar += c.weight
		if soFar >= threshold {
			return n.meanValue(c.idx), c.idx
		}
	}

	last := candidates[len(candidates)-1]
	return n.meanValue(last.idx), last.idx
}

// rngState is the state of a small, fast, non-cryptographic PRNG (a
// 64-bit linear congruential step whose output goes through a
// MurmurHash3-style xor-shift/multiply mix), seeded from the wall clock
// so that tests remain deterministic when they replace it, and production
// sampling doesn't need to import math/rand across every call site on
// the hot path.
var rngState atomic.Uint64

func init() {
	rngState.Store(0x9e3779b97f4a7c15 ^ uint64(time.Now().UnixNano()))
}

func randomFloat64() float64 {
	for {
		old := rngState.Load()
		next := old*6364136223846793005 + 1442695040888963407
		if rngState.CompareAndSwap(old, next) {
			mixed := next ^ (next >> 33)
			mixed *= 0xff51afd7ed558ccd
			mixed ^= mixed >> 33
			return float64(mixed>>11) / (1 << 53)
		}
	}
}
