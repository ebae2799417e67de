/*
Package blendfunc implements the constant radius blend function: a ball of
fixed radius rolling on two surfaces, with its center moving in the section
planes of a guide curve.

For a guide parameter t, the section plane passes through the guide point
G(t) and is perpendicular to the guide tangent n = G'(t)/|G'(t)|. The
function has four equations in the surface parameters (u1,v1,u2,v2):

	n·(P1+P2)/2 − n·G(t)          = 0
	P1 + r1·N1 − (P2 + r2·N2)     = 0   (3 equations)

where Pi is the point on surface i and Ni is the surface normal projected
into the section plane, normalized. The signs of r1 and r2 select on which
side of each surface the ball rolls.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package blendfunc

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer writes to trace with key 'blendfunc'
func tracer() tracing.Trace {
	return tracing.Select("blendfunc")
}

var (
	// ErrRadius indicates a non-positive blend radius.
	ErrRadius = errors.New("blend radius must be positive")
	// ErrChoice indicates a side selector outside of 1…8.
	ErrChoice = errors.New("side selector must be in 1…8")
)

// eps is the minimum length of a normal projected into the section plane.
const eps = 1e-15

// ball holds the geometry shared by a blend function and its inverse.
type ball struct {
	s1, s2     blend.Surface
	guide      blend.Guide
	ray1, ray2 float64
	choix      int
}

// newBall checks the parameters and derives the signed radii from choix.
// Choices 1 and 2 put the ball on the side opposite to both normals, 3 and 4
// opposite to the second only, 5 and 6 on the side of both normals, 7 and 8
// opposite to the first only. Odd choices reverse the section orientation.
func newBall(s1, s2 blend.Surface, g blend.Guide, radius float64, choix int) (ball, error) {
	if radius <= 0 || math.IsNaN(radius) {
		return ball{}, fmt.Errorf("%w: %g", ErrRadius, radius)
	}
	b := ball{s1: s1, s2: s2, guide: g, choix: choix}
	switch choix {
	case 1, 2:
		b.ray1, b.ray2 = -radius, -radius
	case 3, 4:
		b.ray1, b.ray2 = radius, -radius
	case 5, 6:
		b.ray1, b.ray2 = radius, radius
	case 7, 8:
		b.ray1, b.ray2 = -radius, radius
	default:
		return ball{}, fmt.Errorf("%w: %d", ErrChoice, choix)
	}
	return b, nil
}

// plane returns the section plane at guide parameter t.
func (b *ball) plane(t float64) (origin, nplan r3.Vec, ok bool) {
	origin, d := b.guide.D1(t)
	l := r3.Norm(d)
	if l <= blend.Resolution {
		return origin, d, false
	}
	return origin, r3.Scale(1/l, d), true
}

// normal returns the (unnormalized) normal of s at (u,v), falling back to
// the normal at degenerate points.
func normal(s blend.Surface, u, v float64) (p, du, dv, n r3.Vec) {
	p, du, dv = s.D1(u, v)
	n = r3.Cross(du, dv)
	if r3.Norm(n) < 1e-9 {
		n, _ = blend.Normal(s, u, v)
	}
	return
}

// offsetDir is the surface normal ns projected into the plane with normal
// nplan, normalized and reversed.
func offsetDir(nplan, ns r3.Vec) r3.Vec {
	norm := r3.Norm(r3.Cross(nplan, ns))
	if norm < eps {
		norm = 1
	}
	return r3.Sub(r3.Scale(r3.Dot(nplan, ns)/norm, nplan), r3.Scale(1/norm, ns))
}

// residuals evaluates the equations at x = (u1,v1,u2,v2) and guide
// parameter t into e.
func (b *ball) residuals(x []float64, t float64, e []float64) (p1, p2 r3.Vec, ok bool) {
	ptgui, nplan, ok := b.plane(t)
	if !ok {
		return
	}
	p1, _, _, ns1 := normal(b.s1, x[0], x[1])
	p2, _, _, ns2 := normal(b.s2, x[2], x[3])
	e[0] = r3.Dot(nplan, r3.Scale(0.5, r3.Add(p1, p2))) - r3.Dot(nplan, ptgui)
	c1 := r3.Add(p1, r3.Scale(b.ray1, offsetDir(nplan, ns1)))
	c2 := r3.Add(p2, r3.Scale(b.ray2, offsetDir(nplan, ns2)))
	r := r3.Sub(c1, c2)
	e[1], e[2], e[3] = r.X, r.Y, r.Z
	return p1, p2, true
}

// expanded returns the bounds of a surface, each finite range widened by its
// own length on both sides.
func expanded(s blend.Surface) (inf, sup [2]float64) {
	umin, umax, vmin, vmax := s.Bounds()
	inf, sup = [2]float64{umin, vmin}, [2]float64{umax, vmax}
	for i := range inf {
		if !blend.IsInfinite(inf[i]) && !blend.IsInfinite(sup[i]) {
			r := sup[i] - inf[i]
			inf[i] -= r
			sup[i] += r
		}
	}
	return
}
