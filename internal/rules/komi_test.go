package rules

import "testing"

// TestRandomKomiStaysInBounds is scenario S1: 10,000 samples must all
// land in [-7.5, 7.5] on the half.
func TestRandomKomiStaysInBounds(t *testing.T) {
	for i := 0; i < 10000; i++ {
		komi := RandomKomi()
		if komi < -7.5 || komi > 7.5 {
			t.Fatalf("komi out of bounds: %v", komi)
		}
		frac := komi - float32(int(komi))
		if frac != 0.5 && frac != -0.5 {
			t.Fatalf("komi %v is not on the half", komi)
		}
	}
}
