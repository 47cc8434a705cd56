package driver

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mctserr"
	"github.com/dgoengine/mctscore/internal/predict"
)

// Batch is a slice of accumulated events ready to be forwarded to the
// predictor in one call.
type Batch struct {
	features   []float32
	events     []Event
	numBatches *atomic.Int64
}

// Forward evaluates the batch against p and releases its reservation
// against the owning Batcher's in-flight-batch limit. A panic escaping p
// or a response slice that doesn't match the number of events is
// reported as mctserr.ErrPredictorFailure rather than propagated or
// silently ignored, per SPEC_FULL §7's PredictorFailure handling.
func (b *Batch) Forward(p predict.Predictor) (events []Event, responses []predict.PredictResponse, err error) {
	defer b.numBatches.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			events, responses, err = nil, nil, fmt.Errorf("%w: %v", mctserr.ErrPredictorFailure, r)
		}
	}()

	out := p.Predict(b.features, len(b.events))
	if len(out) != len(b.events) {
		return nil, nil, fmt.Errorf("%w: predictor returned %d responses for %d events", mctserr.ErrPredictorFailure, len(out), len(b.events))
	}
	return b.events, out, nil
}

// Batcher accumulates Predict events into batches, bounding how many
// batches may be in flight against the predictor at once. Grounded on
// original_source/libdg_mcts/lib.rs's Batcher/BatcherList.
type Batcher struct {
	mu       sync.Mutex
	features []float32
	events   []Event

	numBatches   atomic.Int64
	maxBatchSize int
	maxBatches   int
}

// NewBatcher creates a Batcher that will never let more than maxBatches
// calls into the predictor run concurrently, batching up to
// maxBatchSize events per call.
func NewBatcher(maxBatches, maxBatchSize int) *Batcher {
	return &Batcher{
		features:     make([]float32, 0, 2*maxBatchSize*game.FeatureSize),
		events:       make([]Event, 0, 2*maxBatchSize),
		maxBatchSize: maxBatchSize,
		maxBatches:   maxBatches,
	}
}

// Push appends event (with its already-extracted feature tensor) to the
// pending batch.
func (b *Batcher) Push(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.features = append(b.features, event.Features...)
	b.events = append(b.events, event)
}

// PushAndGetBatch pushes event, then attempts to harvest a full batch.
func (b *Batcher) PushAndGetBatch(event Event) *Batch {
	b.Push(event)
	return b.GetBatch(b.maxBatchSize)
}

// GetBatch harvests up to maxBatchSize events (at least minBatchSize) off
// the tail of the pending list, provided fewer than maxBatches are
// already in flight. Returns nil if either condition fails.
func (b *Batcher) GetBatch(minBatchSize int) *Batch {
	current := b.numBatches.Load()
	if current >= int64(b.maxBatches) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.events)
	if size < minBatchSize {
		return nil
	}
	if !b.numBatches.CompareAndSwap(current, current+1) {
		return nil
	}

	splitIndex := 0
	if size >= b.maxBatchSize {
		splitIndex = size - b.maxBatchSize
	}

	features := append([]float32(nil), b.features[splitIndex*game.FeatureSize:]...)
	events := append([]Event(nil), b.events[splitIndex:]...)

	b.features = b.features[:splitIndex*game.FeatureSize]
	b.events = b.events[:splitIndex]

	return &Batch{features: features, events: events, numBatches: &b.numBatches}
}
