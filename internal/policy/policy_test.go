package policy

import (
	"math"
	"testing"

	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/symmetry"
)

// emptyBoard is an all-empty 19x19 board double: every move is legal
// for both colors and every vertex is empty.
type emptyBoard struct{ count int }

func (b *emptyBoard) IsValid(game.Color, game.Point) bool { return true }
func (b *emptyBoard) Place(game.Color, game.Point)         { b.count++ }
func (b *emptyBoard) Count() int                           { return b.count }
func (b *emptyBoard) Features(game.Color, game.Transform) []float32 {
	return make([]float32, game.FeatureSize)
}
func (b *emptyBoard) Clone() game.Board { c := *b; return &c }
func (b *emptyBoard) At(game.Point) int { return 0 }

func TestCreateInitialPolicyMarksIllegalAsNegInf(t *testing.T) {
	board := &emptyBoard{}
	checker := StandardChecker{ToMove: game.Black}

	vec, canon := CreateInitialPolicy(checker, board, game.Black)

	if len(vec) != game.PaddedPolicySize {
		t.Fatalf("expected length %d, got %d", game.PaddedPolicySize, len(vec))
	}
	if len(canon) != game.PolicySize {
		t.Fatalf("expected canon length %d, got %d", game.PolicySize, len(canon))
	}
	for i := game.PolicySize; i < len(vec); i++ {
		if vec[i] != game.NegInf {
			t.Fatalf("padding entry %d should be -Inf, got %v", i, vec[i])
		}
	}
}

// rejectAll makes every point illegal except Pass, forcing every entry
// in [0, NumPoints) to -Inf.
type rejectAll struct{ emptyBoard }

func (rejectAll) IsValid(game.Color, game.Point) bool { return false }

func TestCreateInitialPolicyAllIllegalStillHasFinitePass(t *testing.T) {
	board := &rejectAll{}
	checker := StandardChecker{ToMove: game.Black}

	vec, _ := CreateInitialPolicy(checker, board, game.Black)

	for p := game.Point(0); p < game.NumPoints; p++ {
		if vec[p] != game.NegInf {
			t.Fatalf("point %d should be illegal (-Inf), got %v", p, vec[p])
		}
	}
	if vec[game.Pass] != 0.0 {
		t.Fatalf("pass should remain a legal candidate, got %v", vec[game.Pass])
	}
}

func TestNormalizePolicySumsToOne(t *testing.T) {
	p := make([]float32, game.PolicySize)
	for i := range p {
		p[i] = game.NegInf
	}
	p[0], p[1], p[2] = 1.0, 2.0, 3.0

	NormalizePolicy(p)

	var sum float32
	for _, v := range p {
		if !math.IsInf(float64(v), -1) {
			sum += v
		}
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("expected normalized sum ~1.0, got %v", sum)
	}
}

func TestNormalizePolicyRecoversFromDegenerateInput(t *testing.T) {
	p := make([]float32, game.PolicySize)
	for i := range p {
		p[i] = game.NegInf
	}

	NormalizePolicy(p)

	// Every entry was -Inf going in (the degenerate-NaN-predictor
	// scenario): Dirichlet noise must never resurrect an illegal entry,
	// so they must all still be -Inf coming out.
	for i, v := range p {
		if !math.IsInf(float64(v), -1) {
			t.Fatalf("entry %d should remain -Inf, got %v", i, v)
		}
	}
}

func TestNormalizePolicyDegenerateLegalMassGetsNoise(t *testing.T) {
	p := make([]float32, game.PolicySize)
	for i := range p {
		p[i] = game.NegInf
	}
	p[0] = 1e-20 // legal, but vanishingly small mass

	NormalizePolicy(p)

	var sum float32
	anyPositive := false
	for _, v := range p {
		if !math.IsInf(float64(v), -1) {
			sum += v
			if v > 0 {
				anyPositive = true
			}
		}
	}
	if !anyPositive {
		t.Fatalf("expected Dirichlet noise to produce at least one positive finite entry")
	}
	if sum <= 0 {
		t.Fatalf("expected positive total mass after noise injection, got %v", sum)
	}
}

func TestAddValidCandidatesPreservesIllegalEntries(t *testing.T) {
	dst := make([]float32, game.PaddedPolicySize)
	for i := range dst {
		dst[i] = game.NegInf
	}
	dst[game.Pass] = 0.0

	src := make([]float32, game.PolicySize)
	for i := range src {
		src[i] = 1.0
	}

	canon := make([]game.Point, game.PolicySize)
	for i := range canon {
		canon[i] = game.Point(i)
	}
	canon[game.Pass] = game.Pass

	AddValidCandidates(dst, src, canon, game.Identity)

	if dst[0] != game.NegInf {
		t.Fatalf("illegal entry should remain -Inf, got %v", dst[0])
	}
	if dst[game.Pass] != 1.0 {
		t.Fatalf("pass entry should accumulate src, got %v", dst[game.Pass])
	}
}

func TestIsEyeMiddleBoard(t *testing.T) {
	board := &fillableBoard{}
	p := game.PointAt(1, 1)

	for _, off := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		board.set(game.PointAt(1+off[0], 1+off[1]), game.Black)
	}

	if !IsEye(board, game.Black, p) {
		t.Fatalf("expected fully surrounded middle point to be an eye")
	}
	if IsEye(board, game.White, p) {
		t.Fatalf("point surrounded by black should not be white's eye")
	}
}

// TestIsEyeEdge reproduces spec scenario S5: black stones at
// (0,0),(0,1),(1,1),(2,1),(2,0) make (1,0) an eye (an edge point with
// all 3 reachable cross neighbours and both reachable diagonals filled).
func TestIsEyeEdge(t *testing.T) {
	board := &fillableBoard{}
	board.set(game.PointAt(0, 0), game.Black)
	board.set(game.PointAt(0, 1), game.Black)
	board.set(game.PointAt(1, 1), game.Black)
	board.set(game.PointAt(2, 1), game.Black)
	board.set(game.PointAt(2, 0), game.Black)

	if !IsEye(board, game.Black, game.PointAt(1, 0)) {
		t.Fatalf("expected edge point (1,0) to be an eye")
	}
}

// TestCreateInitialPolicySymmetryCollapseOnEmptyBoard reproduces spec
// scenario S7: on an empty board (symmetric under all 8 transforms),
// CreateInitialPolicy should leave exactly one finite entry per orbit of
// the symmetry group, collapsing every other member of the orbit to
// -Inf. The expected orbit count is computed independently of
// CreateInitialPolicy's own canon-building loop, via symmetry.Apply
// directly, so this is a real cross-check rather than a restatement of
// the implementation under test.
func TestCreateInitialPolicySymmetryCollapseOnEmptyBoard(t *testing.T) {
	board := &emptyBoard{}
	checker := StandardChecker{ToMove: game.Black}

	vec, _ := CreateInitialPolicy(checker, board, game.Black)

	seen := make(map[game.Point]bool)
	orbits := 0
	for p := game.Point(0); p < game.NumPoints; p++ {
		min := p
		for _, t := range symmetry.All {
			if c := symmetry.Apply(t, p); c < min {
				min = c
			}
		}
		if !seen[min] {
			seen[min] = true
			orbits++
		}
	}

	finite := 0
	for p := game.Point(0); p < game.NumPoints; p++ {
		if !math.IsInf(float64(vec[p]), -1) {
			finite++
		}
	}

	if finite != orbits {
		t.Fatalf("expected %d finite entries (one per symmetry orbit), got %d", orbits, finite)
	}
}

func TestIsEyeCornerNeedsFewerNeighbours(t *testing.T) {
	board := &fillableBoard{}
	board.set(game.PointAt(1, 0), game.Black)
	board.set(game.PointAt(0, 1), game.Black)
	board.set(game.PointAt(1, 1), game.Black)

	if !IsEye(board, game.Black, game.PointAt(0, 0)) {
		t.Fatalf("expected corner point to be an eye with 2 cross + 1 diagonal neighbour")
	}
}

// fillableBoard is a minimal game.Board double for eye-shape tests.
type fillableBoard struct {
	stones map[game.Point]game.Color
}

func (b *fillableBoard) set(p game.Point, c game.Color) {
	if b.stones == nil {
		b.stones = make(map[game.Point]game.Color)
	}
	b.stones[p] = c
}

func (b *fillableBoard) IsValid(game.Color, game.Point) bool { return true }
func (b *fillableBoard) Place(c game.Color, p game.Point)    { b.set(p, c) }
func (b *fillableBoard) Count() int                          { return len(b.stones) }
func (b *fillableBoard) Features(game.Color, game.Transform) []float32 {
	return make([]float32, game.FeatureSize)
}
func (b *fillableBoard) Clone() game.Board {
	c := &fillableBoard{stones: make(map[game.Point]game.Color, len(b.stones))}
	for k, v := range b.stones {
		c.stones[k] = v
	}
	return c
}
func (b *fillableBoard) At(p game.Point) int {
	c, ok := b.stones[p]
	if !ok {
		return 0
	}
	if c == game.Black {
		return 1
	}
	return 2
}
