package driver

import (
	"errors"
	"testing"

	"github.com/dgoengine/mctscore/internal/cache"
	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mcts"
	"github.com/dgoengine/mctscore/internal/mctserr"
	"github.com/dgoengine/mctscore/internal/options"
	"github.com/dgoengine/mctscore/internal/predict"
	"github.com/dgoengine/mctscore/internal/timecontrol"
)

// openBoard is a minimal game.Board double where every move is always
// legal and every vertex reads empty, so the board is self-symmetric
// under all eight transforms; sufficient to drive FullForward/Search
// end-to-end in tests.
type openBoard struct{ count int }

func (b *openBoard) IsValid(game.Color, game.Point) bool { return true }
func (b *openBoard) Place(game.Color, game.Point)         { b.count++ }
func (b *openBoard) Count() int                           { return b.count }
func (b *openBoard) Features(game.Color, game.Transform) []float32 {
	return make([]float32, game.FeatureSize)
}
func (b *openBoard) Clone() game.Board { c := *b; return &c }
func (b *openBoard) At(game.Point) int  { return 0 }

// TestNoLegalMoves is scenario S2: every root edge is disqualified, so a
// single rollout must report (-Inf, Pass) and leave total_count at 0.
func TestNoLegalMoves(t *testing.T) {
	board := &openBoard{}
	opts := options.StandardDeterministicSearch{}

	c, err := cache.New()
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer c.Close()

	initialValue, initialPolicy, err := FullForward(predict.RandomPredictor{}, opts, c, board, game.Black)
	if err != nil {
		t.Fatalf("FullForward: %v", err)
	}

	root := mcts.New(game.Black, initialValue, initialPolicy)
	for p := game.Point(0); p < game.PolicySize; p++ {
		root.Disqualify(p)
	}

	d := &Driver{
		Predictor:    predict.RandomPredictor{},
		Options:      opts,
		TimeStrategy: timecontrol.RolloutLimit{Limit: 1},
		NumWorkers:   1,
	}

	_, move, resultRoot, err := d.Search(board, game.Black, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, move := resultRoot.Best(0)
	if move != game.Pass {
		t.Fatalf("expected Pass, got %v", move)
	}
	if value != game.NegInf {
		t.Fatalf("expected -Inf, got %v", value)
	}
	if resultRoot.Count() != 0 {
		t.Fatalf("expected total_count == 0, got %d", resultRoot.Count())
	}
}

// TestDegeneratePolicyPredictor is scenario S3: a predictor that always
// returns an all -Inf policy and value 0 must leave the search unable to
// explore at all, reporting the root's own initial value alongside Pass.
func TestDegeneratePolicyPredictor(t *testing.T) {
	board := &openBoard{}
	d := &Driver{
		Predictor:    predict.NaNPredictor{},
		Options:      options.StandardDeterministicSearch{},
		TimeStrategy: timecontrol.RolloutLimit{Limit: 1600},
		NumWorkers:   1,
	}

	value, move, root, err := d.Search(board, game.Black, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if move != game.Pass {
		t.Fatalf("expected Pass, got %v", move)
	}
	if value != 0.5 {
		t.Fatalf("expected value 0.5, got %v", value)
	}
	if root.Count() != 0 {
		t.Fatalf("expected total_count == 0, got %d", root.Count())
	}
	if root.VTotalCount.Load() != 0 {
		t.Fatalf("expected vtotal_count == 0, got %d", root.VTotalCount.Load())
	}
}

// TestSearchWithRandomPredictorExploresTree is a smoke test that a
// normal search actually grows the tree and returns a playable move.
func TestSearchWithRandomPredictorExploresTree(t *testing.T) {
	board := &openBoard{}
	d := &Driver{
		Predictor:    predict.RandomPredictor{},
		Options:      options.StandardDeterministicSearch{},
		TimeStrategy: timecontrol.RolloutLimit{Limit: 64},
		NumWorkers:   4,
	}

	_, move, root, err := d.Search(board, game.Black, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if move == game.Pass && root.Count() > 0 {
		t.Logf("search chose to pass after %d rollouts, which is legal but unusual for an open board", root.Count())
	}
	if root.Count() == 0 {
		t.Fatalf("expected the search to perform at least one rollout")
	}
}

// closedBoard rejects every point for every color; paired with
// ScoringSearch (which also rejects Pass) it has no candidate move at
// all, the genuine terminal-position case distinct from S3's
// degenerate-network-response case.
type closedBoard struct{ count int }

func (b *closedBoard) IsValid(game.Color, game.Point) bool { return false }
func (b *closedBoard) Place(game.Color, game.Point)         { b.count++ }
func (b *closedBoard) Count() int                           { return b.count }
func (b *closedBoard) Features(game.Color, game.Transform) []float32 {
	return make([]float32, game.FeatureSize)
}
func (b *closedBoard) Clone() game.Board { c := *b; return &c }
func (b *closedBoard) At(game.Point) int  { return 0 }

// TestSearchReportsTerminalPosition covers the genuine terminal-position
// branch of the error taxonomy (SPEC_FULL §7): a position with no legal
// candidate at all fails fast, before ever calling the predictor.
func TestSearchReportsTerminalPosition(t *testing.T) {
	board := &closedBoard{}
	d := &Driver{
		Predictor:    predict.RandomPredictor{},
		Options:      options.ScoringSearch{},
		TimeStrategy: timecontrol.RolloutLimit{Limit: 64},
		NumWorkers:   1,
	}

	_, _, _, err := d.Search(board, game.Black, nil)
	if !errors.Is(err, mctserr.ErrTerminalPosition) {
		t.Fatalf("expected ErrTerminalPosition, got %v", err)
	}
}

// panicPredictor always panics, simulating a crashing external
// collaborator.
type panicPredictor struct{}

func (panicPredictor) Predict(features []float32, batchSize int) []predict.PredictResponse {
	panic("predictor exploded")
}
func (panicPredictor) MaxNumThreads() int { return 4 }

// TestSearchPropagatesPredictorFailure covers the ErrPredictorFailure
// branch: a panicking predictor must fail the whole search rather than
// being silently swallowed by a worker goroutine.
func TestSearchPropagatesPredictorFailure(t *testing.T) {
	board := &openBoard{}
	d := &Driver{
		Predictor:    panicPredictor{},
		Options:      options.StandardDeterministicSearch{},
		TimeStrategy: timecontrol.RolloutLimit{Limit: 64},
		NumWorkers:   1,
	}

	_, _, _, err := d.Search(board, game.Black, nil)
	if !errors.Is(err, mctserr.ErrPredictorFailure) {
		t.Fatalf("expected ErrPredictorFailure, got %v", err)
	}
}
