// Package config exposes the environment-derived tunables of the search
// core. Values are read once at process start, the same way
// cmd/chessplay-uci/main.go falls back from a flag to an environment
// variable for CPUPROFILE.
package config

import (
	"os"
	"strconv"
)

var (
	// BatchSize is the maximum number of positions sent to the predictor
	// in a single call.
	BatchSize = envInt("BATCH_SIZE", 16)

	// NumThreads is the default number of search workers spawned per
	// search when the caller does not specify one explicitly.
	NumThreads = envInt("NUM_THREADS", 8)

	// Temperature is the exponent used when sampling a move from the
	// root's visit counts during the opening.
	Temperature = envFloat("TEMPERATURE", 1.0)

	// NumRollout is the default playout budget when no explicit
	// TimeStrategy is supplied.
	NumRollout = envInt("NUM_ROLLOUT", 1600)

	// PUCTConstant is the c_puct exploration constant used by the PUCT
	// selection rule. Not specified by the distilled spec; chosen to
	// match common open Go-engine defaults (see DESIGN.md).
	PUCTConstant = envFloat("PUCT_CONSTANT", 1.4)

	// VirtualLoss is the per-visit penalty `L` subtracted from a child's
	// accumulated value while a descent is in flight on it.
	VirtualLoss = envFloat("VIRTUAL_LOSS", 1.0)
)

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
