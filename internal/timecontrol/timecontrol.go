// Package timecontrol implements the UNST-N / EARLY-C time management
// scheme for Monte Carlo Tree Search, as described by Baier and Winands
// ("Time Management for Monte-Carlo Tree Search in Go") and grounded on
// original_source/libdg_mcts/time_control/mod.rs.
package timecontrol

import (
	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mcts"
)

// Result is the outcome of checking whether a time budget has expired.
type Result int

const (
	// NotExpired carries the number of rollouts remaining in the budget.
	NotExpired Result = iota
	// NotExtended means the budget expired and the caller declined to
	// extend it.
	NotExtended
	// Expired means the budget is over; the search must stop.
	Expired
	// Extended means the budget expired but was granted more time.
	Extended
)

// TimeStrategy decides how long a search may run. TryExtend is polled,
// through IsDone, by every worker before each iteration of its event
// loop once the root has at least one playout; it returns the
// number of rollouts remaining in the budget alongside NotExpired, and
// is ignored for the other three Result values.
type TimeStrategy interface {
	TryExtend(root *mcts.Node) (Result, int)
}

// RolloutLimit is the simplest TimeStrategy: it expires once root has
// accumulated Limit real playouts, with no extension ever granted.
type RolloutLimit struct {
	Limit int64
}

func (r RolloutLimit) TryExtend(root *mcts.Node) (Result, int) {
	remaining := r.Limit - root.Count()
	if remaining <= 0 {
		return NotExtended, 0
	}
	return NotExpired, int(remaining)
}

// minPromoteRollouts returns the minimum number of additional rollouts
// the second most-visited child would need to overtake the most-visited
// child, i.e. the number of playouts still worth spending on this
// position.
func minPromoteRollouts(root *mcts.Node) int64 {
	top1 := root.ArgmaxCount()
	if top1 < 0 {
		return 0
	}

	top1Count, _, _ := root.EdgeStats(top1)

	var top2Count int64 = -1
	for p := game.Point(0); p < game.PolicySize; p++ {
		if p == top1 {
			continue
		}
		visits, _, _ := root.EdgeStats(p)
		if visits > top2Count {
			top2Count = visits
		}
	}

	if top1Count > top2Count {
		return top1Count - top2Count
	}
	return 0
}

// IsDone reports whether the search rooted at root should stop given
// strategy: an exhausted budget that cannot possibly flip the current
// best move (EARLY-C) also counts as done, even if time or rollouts
// technically remain.
func IsDone(root *mcts.Node, strategy TimeStrategy) bool {
	if root.Count() == 0 {
		return false
	}

	kind, remaining := strategy.TryExtend(root)
	switch kind {
	case NotExpired:
		return minPromoteRollouts(root) > int64(remaining)
	case Extended:
		return false
	default:
		return true
	}
}
