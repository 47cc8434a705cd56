package timecontrol

import (
	"testing"

	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mcts"
)

type openBoard struct{}

func (*openBoard) IsValid(game.Color, game.Point) bool { return true }
func (*openBoard) Place(game.Color, game.Point)         {}
func (*openBoard) Count() int                           { return 0 }
func (*openBoard) Features(game.Color, game.Transform) []float32 {
	return make([]float32, game.FeatureSize)
}
func (*openBoard) Clone() game.Board { return &openBoard{} }
func (*openBoard) At(game.Point) int  { return 0 }

func uniformPrior() []float32 {
	p := make([]float32, game.PaddedPolicySize)
	for i := 0; i < game.PolicySize; i++ {
		p[i] = 1.0 / float32(game.PolicySize)
	}
	for i := game.PolicySize; i < len(p); i++ {
		p[i] = game.NegInf
	}
	return p
}

func TestIsDoneFalseWhenNoRolloutsYet(t *testing.T) {
	root := mcts.New(game.Black, 0.5, uniformPrior())
	strategy := RolloutLimit{Limit: 100}

	if IsDone(root, strategy) {
		t.Fatalf("expected a freshly created root not to be done")
	}
}

func TestRolloutLimitExpiresAtLimit(t *testing.T) {
	root := mcts.New(game.Black, 0.5, uniformPrior())
	board := &openBoard{}

	for i := 0; i < 5; i++ {
		result := mcts.Probe(root, board)
		if result.Kind == mcts.Found {
			mcts.Insert(result.Trace, game.White, 0.5, uniformPrior())
		}
	}

	strategy := RolloutLimit{Limit: 5}
	if !IsDone(root, strategy) {
		t.Fatalf("expected search to be done once the rollout limit is reached")
	}

	loose := RolloutLimit{Limit: 1000}
	if IsDone(root, loose) {
		t.Fatalf("expected search to continue when far from the rollout limit")
	}
}
