package policy

import (
	"math"
	"math/rand"

	"github.com/dgoengine/mctscore/internal/game"
	"github.com/dgoengine/mctscore/internal/mctserr"
	"github.com/dgoengine/mctscore/internal/symmetry"
)

const degenerateEpsilon = 1e-6

// CreateInitialPolicy builds a length-PaddedPolicySize vector initialized
// to -Inf, with a 0.0 entry for every point the checker accepts, then
// collapses symmetric duplicate moves to their canonical representative.
// It returns the vector together with the canon[p] index map used later
// to fold a network response back onto the same representatives.
func CreateInitialPolicy(checker Checker, board game.Board, toMove game.Color) ([]float32, []game.Point) {
	vec := make([]float32, game.PaddedPolicySize)
	for i := range vec {
		vec[i] = game.NegInf
	}

	for p := game.Point(0); p < game.NumPoints; p++ {
		if checker.IsPolicyCandidate(board, p) {
			vec[p] = 0.0
		}
	}
	if checker.IsPolicyCandidate(board, game.Pass) {
		vec[game.Pass] = 0.0
	}

	symmetric := make([]game.Transform, 0, game.NumTransforms)
	for _, t := range symmetry.All {
		if symmetry.IsSymmetric(board, t) {
			symmetric = append(symmetric, t)
		}
	}

	canon := make([]game.Point, game.PolicySize)
	canon[game.Pass] = game.Pass

	for p := game.Point(0); p < game.NumPoints; p++ {
		target := p
		for _, t := range symmetric {
			if c := symmetry.Apply(t, p); c < target {
				target = c
			}
		}
		canon[p] = target
		if p != target {
			vec[p] = game.NegInf
		}
	}

	return vec, canon
}

// AddValidCandidates folds a network response (expressed in the frame
// produced by transform t) back into dst, which is expressed in the
// canonical (identity) frame. Illegal destination points stay at -Inf
// because -Inf + finite == -Inf, so no branching is needed in this loop.
func AddValidCandidates(dst []float32, src []float32, canon []game.Point, t game.Transform) {
	dst[game.Pass] += src[game.Pass]

	inv := symmetry.Inverse(t)
	for p := game.Point(0); p < game.NumPoints; p++ {
		j := canon[symmetry.Apply(inv, p)]
		dst[j] += src[p]
	}

	mctserr.CheckFinite(dst[:game.PolicySize], game.PolicySize)
}

// NormalizePolicy renormalizes the finite entries of policy[0:PolicySize]
// to sum to 1.0. If the finite mass is degenerate (below epsilon),
// Dirichlet noise of total weight 1.0, drawn over all PolicySize entries,
// is added to every finite entry and the result is not renormalized: the
// finite entries then sum to about 1.0 only when every entry is finite,
// and to the noise share of the finite entries otherwise. Entries that
// are -Inf stay -Inf.
func NormalizePolicy(p []float32) {
	mctserr.CheckFinite(p[:game.PolicySize], game.PolicySize)

	var sum float32
	for i := 0; i < game.PolicySize; i++ {
		if !math.IsInf(float64(p[i]), -1) {
			sum += p[i]
		}
	}

	if sum < degenerateEpsilon {
		AddDirichletNoise(p[:game.PolicySize], 0.03, 1.0)
		mctserr.CheckFinite(p[:game.PolicySize], game.PolicySize)
		return
	}

	recip := 1.0 / sum
	for i := 0; i < game.PolicySize; i++ {
		if !math.IsInf(float64(p[i]), -1) {
			p[i] *= recip
		}
	}

	mctserr.CheckFinite(p[:game.PolicySize], game.PolicySize)
}

// AddDirichletNoise draws a Dir(concentration) sample over all len(p)
// entries, scales it by weight and adds it to p. A -Inf entry stays -Inf
// (it is never a legal candidate) and its share of the noise is dropped,
// so the noise added to the finite entries sums to weight only when
// every entry of p is finite.
func AddDirichletNoise(p []float32, concentration, weight float64) {
	samples := make([]float64, len(p))
	var total float64

	for i := range p {
		samples[i] = sampleGamma(concentration)
		total += samples[i]
	}
	if total <= 0 {
		total = 1
	}

	for i := range p {
		if math.IsInf(float64(p[i]), -1) {
			continue
		}
		noise := float32(samples[i] / total * weight)
		p[i] += noise
	}
}

// MixDirichletNoise blends Dir(concentration) noise into the root's
// prior to increase search entropy and avoid overfitting to it,
// AlphaZero-style: p[i] = (1-epsilon)*p[i] + epsilon*noise[i] for every
// finite (legal) entry. Illegal (-Inf) entries are left untouched.
// Grounded on original_source/libdg_mcts/lib.rs's
// `dirichlet::add(&mut starting_policy[..362], 0.03)` root-noise call;
// the original's `dirichlet::add` (distinct from the degenerate-case
// `add_ex` in NormalizePolicy above) is not in the retrieved source, so
// the conventional AlphaZero mixing ratio (epsilon = 0.25) is used here.
func MixDirichletNoise(p []float32, concentration, epsilon float64) {
	samples := make([]float64, len(p))
	var total float64

	for i := range p {
		samples[i] = sampleGamma(concentration)
		total += samples[i]
	}
	if total <= 0 {
		total = 1
	}

	for i := range p {
		if math.IsInf(float64(p[i]), -1) {
			continue
		}
		noise := samples[i] / total
		p[i] = float32((1-epsilon)*float64(p[i]) + epsilon*noise)
	}
}

// sampleGamma draws from a Gamma(shape, 1) distribution via the
// Marsaglia-Tsang method (valid for shape > 0; for the small
// concentrations used here it is boosted per Marsaglia-Tsang's own
// shape+1 trick).
func sampleGamma(shape float64) float64 {
	if shape < 1 {
		u := rand.Float64()
		return sampleGamma(shape+1) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)

	for {
		x := rand.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v

		u := rand.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
