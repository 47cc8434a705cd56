package driver

import (
	"fmt"
	"math"

	"github.com/dgoengine/mctscore/internal/cache"
	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mctserr"
	"github.com/dgoengine/mctscore/internal/options"
	"github.com/dgoengine/mctscore/internal/policy"
	"github.com/dgoengine/mctscore/internal/predict"
	"github.com/dgoengine/mctscore/internal/symmetry"
)

// FullForward returns the value and policy for board, evaluated as the
// average of its value and policy under each of the eight board
// symmetries. Grounded on
// original_source/libdg_mcts/lib.rs::full_forward. A panic escaping p or
// a response count that doesn't match the number of symmetries is
// reported as mctserr.ErrPredictorFailure. If the checker accepts no
// candidate at all — independent of whatever the predictor goes on to
// say, which is what distinguishes this from a merely degenerate
// network response — it reports mctserr.ErrTerminalPosition without
// ever calling the predictor.
func FullForward(p predict.Predictor, opts options.SearchOptions, c *cache.Cache, board game.Board, toMove game.Color) (value float32, merged []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, merged, err = 0, nil, fmt.Errorf("%w: %v", mctserr.ErrPredictorFailure, r)
		}
	}()

	checker := opts.PolicyChecker(board, toMove)
	initialPolicy, canon := policy.CreateInitialPolicy(checker, board, toMove)

	if !hasFiniteEntry(initialPolicy[:game.PolicySize]) {
		return 0, nil, mctserr.ErrTerminalPosition
	}

	merged = make([]float32, game.PaddedPolicySize)
	copy(merged, initialPolicy)

	requests := make([]float32, 0, len(symmetry.All)*game.FeatureSize)
	for _, t := range symmetry.All {
		requests = append(requests, board.Features(toMove, t)...)
	}

	responses := p.Predict(requests, len(symmetry.All))
	if len(responses) != len(symmetry.All) {
		return 0, nil, fmt.Errorf("%w: predictor returned %d responses for %d symmetries", mctserr.ErrPredictorFailure, len(responses), len(symmetry.All))
	}

	for i, t := range symmetry.All {
		response := responses[i]
		key := cache.Key(board, toMove, t)

		otherValue, otherPolicy, err := c.GetOrInsert(key, func() (float32, []float32) {
			identity := make([]float32, game.PaddedPolicySize)
			copy(identity, initialPolicy)
			policy.AddValidCandidates(identity, response.Policy, canon, t)
			policy.NormalizePolicy(identity)
			return 0.5 + 0.5*response.Value, identity
		})
		if err != nil {
			return 0, nil, err
		}

		for j := 0; j < game.PolicySize; j++ {
			merged[j] += otherPolicy[j]
		}
		value += otherValue
	}

	policy.NormalizePolicy(merged)

	return value * 0.125, merged, nil
}

// hasFiniteEntry reports whether any entry of p is not -Inf, i.e.
// whether the position it describes has at least one legal candidate
// move.
func hasFiniteEntry(p []float32) bool {
	for _, v := range p {
		if !math.IsInf(float64(v), -1) {
			return true
		}
	}
	return false
}
