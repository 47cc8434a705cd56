// Package mctserr carries the sentinel errors returned by the search
// core, in the teacher's plain-error-return style (internal/tablebase
// and internal/book return (T, bool) or (T, error), never
// panic/exception-style control flow).
package mctserr

import "errors"

var (
	// ErrTerminalPosition is returned when a search is started from a
	// position that has no legal candidate moves at all (the legality
	// mask FullForward builds from the policy checker, before calling the
	// predictor, has every entry at -Inf).
	ErrTerminalPosition = errors.New("mcts: no legal candidate moves at the root")

	// ErrDegeneratePolicy names the case of a policy whose finite mass is
	// below the normalization epsilon. policy.NormalizePolicy handles that
	// case locally by adding Dirichlet noise and does not return an
	// error, so no function of this module returns ErrDegeneratePolicy.
	ErrDegeneratePolicy = errors.New("mcts: degenerate policy, finite mass below epsilon")

	// ErrPredictorFailure wraps a panic recovered from a call into an
	// external Predictor, or a response slice whose length does not match
	// the request. It is returned by FullForward for the root evaluation
	// and by Batch.Forward inside a worker, from where Driver.Search
	// passes it on to its caller.
	ErrPredictorFailure = errors.New("mcts: predictor call failed")
)
