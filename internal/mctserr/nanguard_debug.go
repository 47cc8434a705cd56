//go:build debug

package mctserr

import (
	"fmt"
	"math"
)

// CheckFinite panics if any entry of policy[0:limit] is NaN. It mirrors
// the teacher's debug_assert! in options.rs/lib.rs and only runs in
// binaries built with the debug tag, matching Go's usual convention for
// assertions that are too expensive to carry into production builds.
func CheckFinite(policy []float32, limit int) {
	for i := 0; i < limit; i++ {
		if math.IsNaN(float64(policy[i])) {
			panic(fmt.Sprintf("mcts: found NaN at index %d", i))
		}
	}
}
