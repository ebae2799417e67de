/*
Package guide provides guide curves ("spines") for blends: straight lines and
circles. A guide may carry feature vertices, i.e. points where the faces
along the blend change, and remembers its bounds from before it was extended
to let a blend run out over the end of the faces.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package guide

import (
	"math"

	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// spine holds what all guides have in common.
type spine struct {
	first, last float64
	vertices    []blend.Axis
	saved       [2]float64
}

func newSpine(first, last float64) spine {
	return spine{first: first, last: last, saved: [2]float64{math.Inf(-1), math.Inf(1)}}
}

// Bounds returns the parameter range of the guide.
func (s *spine) Bounds() (first, last float64) {
	return s.first, s.last
}

// Vertices returns the feature vertices of the guide, with tangent directions.
func (s *spine) Vertices() []blend.Axis {
	return s.vertices
}

// SavedBounds returns the bounds before extension. Unset bounds are infinite.
func (s *spine) SavedBounds() (first, last float64) {
	return s.saved[0], s.saved[1]
}

func (s *spine) addVertex(p, d r3.Vec) {
	s.vertices = append(s.vertices, blend.Axis{Location: p, Direction: r3.Unit(d)})
}

// --- Line ------------------------------------------------------------------

// Line is a straight guide P(t) = O + t·D, with D of unit length.
type Line struct {
	spine
	origin, dir r3.Vec
}

var _ blend.Guide = (*Line)(nil)

// NewLine creates a straight guide through origin along dir, for
// first ≤ t ≤ last.
func NewLine(origin, dir r3.Vec, first, last float64) *Line {
	return &Line{spine: newSpine(first, last), origin: origin, dir: r3.Unit(dir)}
}

// WithVertices marks the points at parameters ts as feature vertices.
func (l *Line) WithVertices(ts ...float64) *Line {
	for _, t := range ts {
		p, d := l.D1(t)
		l.addVertex(p, d)
	}
	return l
}

// Extended extends the line by ext at both ends and remembers the previous
// bounds.
func (l *Line) Extended(ext float64) *Line {
	l.saved = [2]float64{l.first, l.last}
	l.first -= ext
	l.last += ext
	return l
}

// Value evaluates the line at t.
func (l *Line) Value(t float64) r3.Vec {
	return r3.Add(l.origin, r3.Scale(t, l.dir))
}

// D1 evaluates the line and its derivative at t.
func (l *Line) D1(t float64) (p, d r3.Vec) {
	return l.Value(t), l.dir
}

func (l *Line) IsPeriodic() bool { return false }
func (l *Line) Period() float64  { return 0 }

// Project returns the parameter of the point of the line closest to p,
// clipped to the bounds.
func (l *Line) Project(p r3.Vec) (float64, bool) {
	t := r3.Dot(r3.Sub(p, l.origin), l.dir)
	return math.Max(l.first, math.Min(l.last, t)), true
}

// --- Circle ----------------------------------------------------------------

// Circle is a circular guide P(t) = C + R·(cos t·X + sin t·Y), with X and Y
// perpendicular to the circle's axis.
type Circle struct {
	spine
	center, x, y r3.Vec
	radius       float64
}

var _ blend.Guide = (*Circle)(nil)

// NewCircle creates a circle around axis through center. The parameter t is
// the angle from xdir (projected onto the circle's plane).
func NewCircle(center, axis, xdir r3.Vec, radius, first, last float64) *Circle {
	z := r3.Unit(axis)
	x := r3.Unit(r3.Sub(xdir, r3.Scale(r3.Dot(xdir, z), z)))
	return &Circle{
		spine:  newSpine(first, last),
		center: center,
		x:      x,
		y:      r3.Cross(z, x),
		radius: radius,
	}
}

// WithVertices marks the points at parameters ts as feature vertices.
func (c *Circle) WithVertices(ts ...float64) *Circle {
	for _, t := range ts {
		p, d := c.D1(t)
		c.addVertex(p, d)
	}
	return c
}

// Value evaluates the circle at t.
func (c *Circle) Value(t float64) r3.Vec {
	sin, cos := math.Sincos(t)
	return r3.Add(c.center, r3.Add(r3.Scale(c.radius*cos, c.x), r3.Scale(c.radius*sin, c.y)))
}

// D1 evaluates the circle and its derivative at t.
func (c *Circle) D1(t float64) (p, d r3.Vec) {
	sin, cos := math.Sincos(t)
	return c.Value(t), r3.Add(r3.Scale(-c.radius*sin, c.x), r3.Scale(c.radius*cos, c.y))
}

func (c *Circle) IsPeriodic() bool { return true }
func (c *Circle) Period() float64  { return 2 * math.Pi }

// Project returns the parameter of the point of the circle closest to p, in
// [first, first+2π). Points on the axis have no unique projection.
func (c *Circle) Project(p r3.Vec) (float64, bool) {
	d := r3.Sub(p, c.center)
	x, y := r3.Dot(d, c.x), r3.Dot(d, c.y)
	if blend.Is0(math.Hypot(x, y)) {
		return c.first, false
	}
	t := math.Mod(math.Atan2(y, x)-c.first, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t + c.first, true
}
