// Package policy builds and maintains the 362-wide move-probability
// vectors exchanged between the tree and the predictor: masking illegal
// moves, collapsing symmetric duplicates, merging a network response
// expressed in a transformed frame back into the canonical frame, and
// normalizing the result.
//
// Grounded on original_source/libdg_mcts/options.rs (PolicyChecker,
// ScoringPolicyChecker, is_eye) and original_source/libdg_mcts/lib.rs
// (create_initial_policy, add_valid_candidates, normalize_policy).
package policy

import (
	"github.com/dgoengine/mctscore/internal/game"
)

// Checker decides whether a point should be considered a candidate move
// during search, independent of raw legality (e.g. to additionally
// reject eye-filling moves when scoring a finished game).
type Checker interface {
	IsPolicyCandidate(board game.Board, p game.Point) bool
}

// StandardChecker accepts pass and any point the board considers legal
// for the mover.
type StandardChecker struct {
	ToMove game.Color
}

func (c StandardChecker) IsPolicyCandidate(board game.Board, p game.Point) bool {
	return p == game.Pass || board.IsValid(c.ToMove, p)
}

// BensonLife is the external Benson unconditional-life collaborator
// consulted by ScoringChecker.
type BensonLife interface {
	IsEye(p game.Point) bool
}

// ScoringChecker is used when finishing a game to its score-bearing
// terminal state: it rejects the pass, rejects Benson-alive eyes of
// either color, and rejects simple eyes of the mover.
type ScoringChecker struct {
	ToMove      game.Color
	BensonBlack BensonLife
	BensonWhite BensonLife
}

func (c ScoringChecker) IsPolicyCandidate(board game.Board, p game.Point) bool {
	if p == game.Pass {
		return false
	}
	if c.BensonBlack != nil && c.BensonBlack.IsEye(p) {
		return false
	}
	if c.BensonWhite != nil && c.BensonWhite.IsEye(p) {
		return false
	}
	if !board.IsValid(c.ToMove, p) {
		return false
	}
	return !IsEye(board, c.ToMove, p)
}

// IsEye reports whether point p is a simple eye for color: an empty
// point whose four orthogonal neighbours are color, plus enough of its
// diagonal neighbours are also color (>=3 in the middle of the board,
// >=2 on the edge, >=1 in the corner).
func IsEye(board game.Board, color game.Color, p game.Point) bool {
	if board.At(p) != 0 {
		return false
	}
	x, y := p.X(), p.Y()

	crossOffsets := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagOffsets := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	numCross := countFilled(board, color, x, y, crossOffsets[:])
	numDiagonal := countFilled(board, color, x, y, diagOffsets[:])

	corner := (x == 0 || x == game.Width-1) && (y == 0 || y == game.Width-1)
	edge := x == 0 || x == game.Width-1 || y == 0 || y == game.Width-1

	switch {
	case corner:
		return numCross >= 2 && numDiagonal >= 1
	case edge:
		return numCross >= 3 && numDiagonal >= 2
	default:
		return numCross >= 4 && numDiagonal >= 3
	}
}

func countFilled(board game.Board, color game.Color, x, y int, offsets [][2]int) int {
	count := 0
	for _, off := range offsets {
		nx, ny := x+off[0], y+off[1]
		if nx < 0 || nx >= game.Width || ny < 0 || ny >= game.Width {
			continue
		}
		want := 1
		if color == game.White {
			want = 2
		}
		if board.At(game.PointAt(nx, ny)) == want {
			count++
		}
	}
	return count
}
