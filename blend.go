/*
Package blend traces the section line of a blend (fillet) between two
trimmed parametric surfaces.

A guide curve defines a one-parameter family of section planes. For every
guide parameter t, a blend function couples a point (u1,v1) on the first
surface with a point (u2,v2) on the second one. Package walking marches
along t and collects these solutions into a line, re-targeting the march
onto trimming boundaries whenever a solution leaves a surface's domain.

Package blend holds the vocabulary shared by all sub-packages: numeric
helpers, parameter-space pairs, marching status values, topological
transitions and the contracts of the collaborators the marching core
consumes (surfaces, trimming domains, guide curves, blend functions).

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package blend

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'blend'
func tracer() tracing.Trace {
	return tracing.Select("blend")
}

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Precision values used throughout the marching code.
const (
	Confusion  = 1e-7  // 3D points closer than this are the same point
	PConfusion = 1e-9  // parametric equivalent of Confusion
	Angular    = 1e-12 // vectors closer than this angle are parallel
	Resolution = 1e-290
)

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// IsInfinite is a predicate: is n too large to be a real parameter value?
func IsInfinite(n float64) bool {
	return math.IsInf(n, 0) || math.Abs(n) >= 2e100
}

// === Pair Data Type ========================================================

// Pair is a point or vector in the (u,v) parameter plane of a surface.
type Pair complex128

// Origin represents the frequently used constant (0,0).
var Origin = P(0, 0)

// Pretty Stringer for simple pairs.
func (p Pair) String() string {
	return fmt.Sprintf("(%g,%g)", real(p), imag(p))
}

// P is a quick notation for contructing a pair from floats.
func P(x, y float64) Pair {
	return Pair(complex(x, y))
}

// X is the u-part of a pair.
func (p Pair) X() float64 {
	return real(p)
}

// Y is the v-part of a pair.
func (p Pair) Y() float64 {
	return imag(p)
}

// Zap rounds x-part and y-part to Epsilon.
func (p Pair) Zap() Pair {
	return P(Zap(p.X()), Zap(p.Y()))
}

// Equal compares two pairs.
func (p Pair) Equal(p2 Pair) bool {
	return Is0(p.X()-p2.X()) && Is0(p.Y()-p2.Y())
}

// Scaled returns a new pair scaled by factor a.
func (p Pair) Scaled(a float64) Pair {
	return P(p.X()*a, p.Y()*a)
}

// Dot is the scalar product of two pairs taken as vectors.
func (p Pair) Dot(q Pair) float64 {
	return p.X()*q.X() + p.Y()*q.Y()
}

// Cross is the z-component of the cross product of p and q.
func (p Pair) Cross(q Pair) float64 {
	return p.X()*q.Y() - p.Y()*q.X()
}

// Abs is the length of p.
func (p Pair) Abs() float64 {
	return cmplx.Abs(complex128(p))
}

// Dist is the euclidean distance between p and q.
func (p Pair) Dist(q Pair) float64 {
	return (q - p).Abs()
}

// Lerp interpolates linearly between p (λ=0) and q (λ=1).
func (p Pair) Lerp(q Pair, lambda float64) Pair {
	return P((1-lambda)*p.X()+lambda*q.X(), (1-lambda)*p.Y()+lambda*q.Y())
}
