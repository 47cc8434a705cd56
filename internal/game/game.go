// Package game defines the data types shared across the search core that
// describe a single Go position, without implementing the rules engine
// itself. The board is an external collaborator, consumed only through
// the Board interface below.
package game

import "math"

// Width is the side length of the board this core is built for.
const Width = 19

// NumPoints is the number of non-pass points on the board.
const NumPoints = Width * Width

// Pass is the packed index of the pass move.
const Pass = NumPoints

// PolicySize is the length of a policy vector, including the pass move.
const PolicySize = NumPoints + 1

// PaddedPolicySize adds padding headroom to PolicySize so intermediate
// buffers can be indexed without bounds checks near the edge of the
// valid range.
const PaddedPolicySize = 368

// NumFeatures is the number of feature planes the external board
// collaborator encodes per point.
const NumFeatures = 32

// FeatureSize is the length of the flattened per-position feature
// tensor handed to the predictor (channel-last, HWC).
const FeatureSize = NumFeatures * NumPoints

// Point is a packed board coordinate in [0, NumPoints], where NumPoints
// denotes the pass move.
type Point int

// X returns the column of the point, undefined for Pass.
func (p Point) X() int { return int(p) % Width }

// Y returns the row of the point, undefined for Pass.
func (p Point) Y() int { return int(p) / Width }

// PointAt packs a (x, y) coordinate into a Point.
func PointAt(x, y int) Point {
	return Point(y*Width + x)
}

// Color is one of the two players.
type Color uint8

const (
	Black Color = iota
	White
)

// Opposite returns the other color.
func (c Color) Opposite() Color {
	if c == Black {
		return White
	}
	return Black
}

func (c Color) String() string {
	if c == Black {
		return "B"
	}
	return "W"
}

// NegInf is the sentinel used to mark an illegal policy entry. It is an
// absorbing element under addition (NegInf + x == NegInf for any finite
// x), which keeps the symmetry-merge hot path branch-free.
var NegInf = float32(math.Inf(-1))

// Board is the opaque Go position collaborator. Implementations are
// supplied by the rules engine, which lives outside this module.
type Board interface {
	// IsValid reports whether color may legally play at p (p may be
	// Pass, which is always valid).
	IsValid(color Color, p Point) bool

	// Place plays a stone of the given color at p, mutating the board.
	Place(color Color, p Point)

	// Count returns the number of moves played so far.
	Count() int

	// Features returns the NUM_FEATURES x NumPoints feature tensor for
	// the position as seen by color, under the given symmetry.
	Features(color Color, transform Transform) []float32

	// Clone returns an independent copy of the board.
	Clone() Board

	// At returns 0 for an empty point, 1 for Black, 2 for White. Used to
	// detect self-symmetry of the position under a transform.
	At(p Point) int
}

// Transform is one of the eight symmetries of the square board (the
// dihedral group of order 8).
type Transform int

const (
	Identity Transform = iota
	FlipLR
	FlipUD
	Transpose
	TransposeAnti
	Rot90
	Rot180
	Rot270
	NumTransforms = int(Rot270) + 1
)

func (t Transform) String() string {
	switch t {
	case Identity:
		return "Identity"
	case FlipLR:
		return "FlipLR"
	case FlipUD:
		return "FlipUD"
	case Transpose:
		return "Transpose"
	case TransposeAnti:
		return "TransposeAnti"
	case Rot90:
		return "Rot90"
	case Rot180:
		return "Rot180"
	case Rot270:
		return "Rot270"
	default:
		return "Unknown"
	}
}
