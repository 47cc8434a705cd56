// Package driver ties the tree, probe/insert protocol, policy
// preprocessor and batcher together into the top-level search entry
// point. Grounded on original_source/libdg_mcts/lib.rs's predict_aux /
// predict_worker, adapted from the teacher's worker spawn/join idiom in
// internal/engine.Engine.SearchWithLimits.
package driver

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dgoengine/mctscore/internal/cache"
	"github.com/dgoengine/mctscore/internal/config"
	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mcts"
	"github.com/dgoengine/mctscore/internal/options"
	"github.com/dgoengine/mctscore/internal/policy"
	"github.com/dgoengine/mctscore/internal/predict"
	"github.com/dgoengine/mctscore/internal/queue"
	"github.com/dgoengine/mctscore/internal/timecontrol"
)

// eventQueue is the lock-free MPMC queue of in-flight events.
type eventQueue = queue.Queue[Event]

func newEventQueue() *eventQueue { return queue.New[Event]() }

// treeLock fences descents (read side) against root adoption and other
// whole-tree mutations (write side), mirroring the original's
// global_rwlock::read/write call style.
type treeLock struct {
	mu sync.RWMutex
}

func (t *treeLock) Read(fn func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn()
}

func (t *treeLock) Write(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}

// threadContext is the state shared between the driver and every worker
// goroutine during one Search call.
type threadContext struct {
	queue         *eventQueue
	root          *mcts.Node
	options       options.SearchOptions
	startingPoint game.Board
	timeStrategy  timecontrol.TimeStrategy
	batcher       *Batcher
	lock          *treeLock
	epoch         atomic.Int64
}

// Driver runs one parallel MCTS search against a Predictor.
type Driver struct {
	Predictor    predict.Predictor
	Options      options.SearchOptions
	TimeStrategy timecontrol.TimeStrategy

	// NumWorkers overrides config.NumThreads when positive.
	NumWorkers int
}

// New builds a Driver with the default worker count from
// internal/config.
func New(p predict.Predictor, opts options.SearchOptions, ts timecontrol.TimeStrategy) *Driver {
	return &Driver{Predictor: p, Options: opts, TimeStrategy: ts}
}

func (d *Driver) numWorkers() int {
	if d.NumWorkers > 0 {
		return d.NumWorkers
	}
	if config.NumThreads > 0 {
		return config.NumThreads
	}
	return runtime.NumCPU()
}

// Search runs a full parallel MCTS search starting from startingPoint,
// optionally continuing from startingTree (the subtree reached by the
// move that led to this position in a previous search). It returns the
// chosen move's value estimate, the move itself, and the resulting
// (now-final) tree.
func (d *Driver) Search(startingPoint game.Board, startingColor game.Color, startingTree *mcts.Node) (float32, game.Point, *mcts.Node, error) {
	c, err := cache.New()
	if err != nil {
		return 0, game.Pass, nil, err
	}
	defer c.Close()

	startingValue, startingPolicy, err := FullForward(d.Predictor, d.Options, c, startingPoint, startingColor)
	if err != nil {
		return 0, game.Pass, nil, err
	}

	timeStrategy := d.TimeStrategy
	if timeStrategy == nil {
		timeStrategy = timecontrol.RolloutLimit{Limit: int64(config.NumRollout)}
	}

	deterministic := d.Options.Deterministic()
	if !deterministic {
		policy.MixDirichletNoise(startingPolicy[:game.PolicySize], 0.03, 0.25)
	}

	var root *mcts.Node
	if startingTree != nil {
		copy(startingTree.Prior[:game.PolicySize], startingPolicy[:game.PolicySize])
		root = startingTree
	} else {
		root = mcts.New(startingColor, startingValue, startingPolicy)
	}

	ctx := &threadContext{
		queue:         newEventQueue(),
		root:          root,
		options:       d.Options,
		startingPoint: startingPoint,
		timeStrategy:  timeStrategy,
		batcher:       NewBatcher(d.Predictor.MaxNumThreads(), config.BatchSize),
		lock:          &treeLock{},
	}

	numWorkers := d.numWorkers()
	if numWorkers <= 1 {
		if err := runWorker(ctx, d.Predictor); err != nil {
			return 0, game.Pass, nil, err
		}
	} else {
		g, _ := errgroup.WithContext(context.Background())
		for i := 0; i < numWorkers; i++ {
			g.Go(func() error {
				return runWorker(ctx, d.Predictor)
			})
		}
		// g.Wait returns once every worker has returned, reporting the
		// first worker error (ErrPredictorFailure). The other workers are
		// not cancelled: each keeps running until the time strategy
		// reports done or it hits an error itself. The search then fails
		// with that error rather than returning a best-effort move over a
		// partially-evaluated tree.
		if err := g.Wait(); err != nil {
			return 0, game.Pass, nil, err
		}
	}

	temperature := 0.0
	if !deterministic && startingPoint.Count() < 8 {
		temperature = config.Temperature
	}

	value, move := root.Best(temperature)
	return value, move, root, nil
}

// runWorker repeatedly probes the tree, batches leaf evaluations and
// folds predictor responses back in until the time strategy reports the
// search is done, or a predictor call fails
// (mctserr.ErrPredictorFailure), in which case the worker stops and
// reports the failure rather than continuing over an evaluation it
// cannot trust. Grounded on predict_worker in
// original_source/libdg_mcts/lib.rs.
func runWorker(ctx *threadContext, p predict.Predictor) error {
	for {
		var done bool
		ctx.lock.Read(func() {
			done = timecontrol.IsDone(ctx.root, ctx.timeStrategy)
		})
		if done {
			return nil
		}

		event, ok := ctx.queue.Pop()
		if !ok {
			if batch := ctx.batcher.GetBatch(1); batch != nil {
				if err := evaluateBatch(ctx, batch, p); err != nil {
					return err
				}
				continue
			}

			var board game.Board
			var result mcts.ProbeResult
			ctx.lock.Read(func() {
				board = ctx.startingPoint.Clone()
				result = mcts.Probe(ctx.root, board)
			})

			switch result.Kind {
			case mcts.Found:
				ctx.queue.Push(NewPredictEvent(board, result.Trace))
			case mcts.Conflict:
				runtime.Gosched()
			case mcts.NoResult:
				return nil
			}
			continue
		}

		switch event.Kind {
		case EventPredict:
			if batch := ctx.batcher.PushAndGetBatch(event); batch != nil {
				if err := evaluateBatch(ctx, batch, p); err != nil {
					return err
				}
			}
		case EventInsert:
			applyInsert(ctx, event)
		case EventPending:
			// A Pending event can only be observed if it was re-queued by
			// evaluateBatch, which always rewrites it to EventInsert first.
			panic("driver: observed a bare Pending event")
		}
	}
}

func evaluateBatch(ctx *threadContext, batch *Batch, p predict.Predictor) error {
	events, responses, err := batch.Forward(p)
	if err != nil {
		return err
	}
	for i, event := range events {
		_, inserted := event.IntoInsert(responses[i])
		ctx.queue.Push(inserted)
	}
	return nil
}

func applyInsert(ctx *threadContext, event Event) {
	last := event.Trace[len(event.Trace)-1]
	toMove := last.Color.Opposite()

	checker := ctx.options.PolicyChecker(event.Board, toMove)
	leafPolicy, canon := policy.CreateInitialPolicy(checker, event.Board, toMove)
	policy.AddValidCandidates(leafPolicy, event.Response.Policy, canon, event.Transform)
	policy.NormalizePolicy(leafPolicy)

	ctx.lock.Read(func() {
		mcts.Insert(event.Trace, toMove, 0.5+0.5*event.Response.Value, leafPolicy)
	})

	ctx.epoch.Add(1)
}
