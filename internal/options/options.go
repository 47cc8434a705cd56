// Package options carries the SearchOptions family that configures one
// Driver.Search call: which PolicyChecker to build for a position, and
// whether the search should be deterministic (no root Dirichlet noise,
// argmax move choice). Grounded on
// original_source/libdg_mcts/options.rs.
package options

import (
	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/policy"
)

// SearchOptions configures a single search.
type SearchOptions interface {
	// PolicyChecker returns the Checker to use for the given board.
	PolicyChecker(board game.Board, toMove game.Color) policy.Checker

	// Deterministic reports whether the search should skip root
	// Dirichlet noise and pick moves by argmax visit count rather than
	// temperature sampling.
	Deterministic() bool
}

// StandardSearch is ordinary stochastic self-play search: Dirichlet
// noise at the root, temperature-sampled move choice during the
// opening.
type StandardSearch struct{}

func (StandardSearch) PolicyChecker(_ game.Board, toMove game.Color) policy.Checker {
	return policy.StandardChecker{ToMove: toMove}
}

func (StandardSearch) Deterministic() bool { return false }

// StandardDeterministicSearch is StandardSearch without the randomness:
// used for reproducible analysis of a position.
type StandardDeterministicSearch struct{}

func (StandardDeterministicSearch) PolicyChecker(_ game.Board, toMove game.Color) policy.Checker {
	return policy.StandardChecker{ToMove: toMove}
}

func (StandardDeterministicSearch) Deterministic() bool { return true }

// ScoringSearch is used to settle the score of a finished game: it
// rejects passing and eye-filling moves (via policy.ScoringChecker) and
// is always deterministic.
type ScoringSearch struct {
	BensonBlack policy.BensonLife
	BensonWhite policy.BensonLife
}

func (s ScoringSearch) PolicyChecker(_ game.Board, toMove game.Color) policy.Checker {
	return policy.ScoringChecker{
		ToMove:      toMove,
		BensonBlack: s.BensonBlack,
		BensonWhite: s.BensonWhite,
	}
}

func (ScoringSearch) Deterministic() bool { return true }
