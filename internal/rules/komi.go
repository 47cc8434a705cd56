// Package rules carries the small set of game-setup helpers that sit
// outside the search core proper but are needed to exercise it
// end-to-end, recovered from original_source/libdg_mcts/lib.rs
// (get_random_komi) during spec expansion.
package rules

import "math/rand"

// RandomKomi returns a weighted random komi between -7.5 and 7.5, with
// the most common outcomes being 7.5, 6.5 and 0.5:
//
//   - 40% chance of 7.5
//   - 40% chance of 6.5
//   - 10% chance of 0.5
//   - 10% chance of a uniformly random komi in [-7.5, 7.5]
func RandomKomi() float32 {
	value := rand.Float64()

	switch {
	case value < 0.4:
		return 7.5
	case value < 0.8:
		return 6.5
	case value < 0.9:
		return 0.5
	default:
		n := rand.Intn(16) - 8
		return float32(n) + 0.5
	}
}
