// Package predict defines the neural-network evaluator contract. The
// network implementation itself is an external collaborator; this
// package only carries the interface and a couple of test doubles
// (RandomPredictor is random; NaNPredictor always answers the same),
// grounded on the NanPredictor/RandomPredictor test helpers in
// original_source/libdg_mcts/lib.rs.
package predict

import (
	"math/rand"

	"github.com/dgoengine/mctscore/internal/game"
)

// PredictResponse is one predictor answer: a value in [-1,1] and a raw,
// post-softmax policy of length PolicySize.
type PredictResponse struct {
	Value  float32
	Policy []float32
}

// Predictor evaluates batches of feature tensors. Implementations must
// be safe to call concurrently from any worker.
type Predictor interface {
	// Predict evaluates batchSize positions packed consecutively in
	// features (features must have length batchSize*FeatureSize) and
	// returns one PredictResponse per position, in order.
	Predict(features []float32, batchSize int) []PredictResponse

	// MaxNumThreads is an advisory bound on the number of concurrent
	// Predict calls this predictor can usefully serve; it drives the
	// batcher's max-in-flight-batches limit.
	MaxNumThreads() int
}

// RandomPredictor returns a uniform value and a uniform policy over all
// 362 candidates. Useful for exercising the tree machinery without a
// real network.
type RandomPredictor struct{}

func (RandomPredictor) Predict(_ []float32, batchSize int) []PredictResponse {
	out := make([]PredictResponse, batchSize)
	for i := range out {
		policy := make([]float32, game.PolicySize)
		for j := range policy {
			policy[j] = float32(rand.Float64())
		}
		out[i] = PredictResponse{Value: float32(rand.Float64()*2 - 1), Policy: policy}
	}
	return out
}

func (RandomPredictor) MaxNumThreads() int { return 4 }

// NaNPredictor always answers with value 0 and a policy of all -Inf,
// used to exercise the degenerate-policy recovery path (S3).
type NaNPredictor struct{}

func (NaNPredictor) Predict(_ []float32, batchSize int) []PredictResponse {
	out := make([]PredictResponse, batchSize)
	policy := make([]float32, game.PolicySize)
	for j := range policy {
		policy[j] = game.NegInf
	}
	for i := range out {
		out[i] = PredictResponse{Value: 0.0, Policy: policy}
	}
	return out
}

func (NaNPredictor) MaxNumThreads() int { return 1 }
