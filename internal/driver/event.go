package driver

import (
	"math/rand"

	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mcts"
	"github.com/dgoengine/mctscore/internal/predict"
	"github.com/dgoengine/mctscore/internal/symmetry"
)

// EventKind is the lifecycle stage of an Event as it moves through the
// event queue.
type EventKind int

const (
	// EventPredict carries a feature tensor awaiting a predictor call.
	EventPredict EventKind = iota
	// EventPending marks an event that was popped off the queue to be
	// evaluated immediately rather than re-queued.
	EventPending
	// EventInsert carries a predictor response ready to be folded back
	// into the tree.
	EventInsert
)

// Event threads one leaf evaluation through Predict -> Pending -> Insert.
type Event struct {
	Kind      EventKind
	Board     game.Board
	Transform game.Transform
	Trace     mcts.Trace
	Features  []float32
	Response  predict.PredictResponse
}

// NewPredictEvent builds a Predict event for a freshly reserved leaf,
// choosing a random symmetry under which to evaluate it (so that over
// many rollouts every symmetry contributes training signal).
func NewPredictEvent(board game.Board, trace mcts.Trace) Event {
	t := symmetry.All[rand.Intn(len(symmetry.All))]
	last := trace[len(trace)-1]
	toMove := last.Color.Opposite()

	return Event{
		Kind:      EventPredict,
		Board:     board,
		Transform: t,
		Trace:     trace,
		Features:  board.Features(toMove, t),
	}
}

// IntoInsert returns the event's previous kind together with a copy of
// it carrying the predictor response and the Insert kind.
func (e Event) IntoInsert(response predict.PredictResponse) (EventKind, Event) {
	prev := e.Kind
	e.Kind = EventInsert
	e.Response = response
	return prev, e
}

// IntoPending returns the event's previous kind together with a copy of
// it marked Pending.
func (e Event) IntoPending() (EventKind, Event) {
	prev := e.Kind
	e.Kind = EventPending
	return prev, e
}
