//go:build !debug

package mctserr

// CheckFinite is a no-op outside of debug builds.
func CheckFinite(policy []float32, limit int) {}
