package polygon

import (
	"math"

	"github.com/npillmayer/blend"
)

// Segment is a straight trimming arc from A to B, parameterized by arc length.
type Segment struct {
	A, B   blend.Pair
	length float64
	dir    blend.Pair // unit direction
}

var _ blend.Curve2d = (*Segment)(nil)

// NewSegment creates a segment from a to b. a and b must not coincide.
func NewSegment(a, b blend.Pair) *Segment {
	l := a.Dist(b)
	return &Segment{A: a, B: b, length: l, dir: (b - a).Scaled(1 / l)}
}

// Value evaluates the segment at arc length t.
func (s *Segment) Value(t float64) blend.Pair {
	return s.A + s.dir.Scaled(t)
}

// D1 evaluates the segment and its derivative at t.
func (s *Segment) D1(t float64) (p, d blend.Pair) {
	return s.Value(t), s.dir
}

// Bounds returns [0, length].
func (s *Segment) Bounds() (first, last float64) {
	return 0, s.length
}

// Length is the length of the segment.
func (s *Segment) Length() float64 {
	return s.length
}

// Project returns the parameter of the foot of the perpendicular from p. It
// fails if the foot lies outside of the segment.
func (s *Segment) Project(p blend.Pair) (float64, bool) {
	t := (p - s.A).Dot(s.dir)
	if t < -blend.PConfusion || t > s.length+blend.PConfusion {
		return 0, false
	}
	return math.Max(0, math.Min(s.length, t)), true
}

// distance returns the distance of p from the segment.
func (s *Segment) distance(p blend.Pair) float64 {
	t := math.Max(0, math.Min(s.length, (p-s.A).Dot(s.dir)))
	return p.Dist(s.Value(t))
}

// IntersectSegment returns the parameter of the crossing with segment a–b,
// if any. Parallel segments do not cross.
func (s *Segment) IntersectSegment(a, b blend.Pair) []float64 {
	e := b - a
	denom := s.dir.Cross(e)
	if math.Abs(denom) <= blend.Angular*e.Abs() {
		return nil
	}
	ap := a - s.A
	t := ap.Cross(e) / denom     // on s, arc length
	u := ap.Cross(s.dir) / denom // on a–b, in [0,1]
	const eps = blend.PConfusion
	if t < -eps || t > s.length+eps || u < -eps || u > 1+eps {
		return nil
	}
	return []float64{math.Max(0, math.Min(s.length, t))}
}
