package blend

import (
	"github.com/npillmayer/blend/rootfind"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a parametric surface (u,v) → R³.
type Surface interface {
	Value(u, v float64) r3.Vec
	D1(u, v float64) (p, du, dv r3.Vec)
	D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec)
	Bounds() (umin, umax, vmin, vmax float64)
	// UResolution returns the u-distance which corresponds to at most tol3d in space.
	UResolution(tol3d float64) float64
	VResolution(tol3d float64) float64
	IsUPeriodic() bool
	UPeriod() float64
	IsVPeriodic() bool
	VPeriod() float64
	// Project returns the parameters of the point of the surface closest to p.
	Project(p r3.Vec) (uv Pair, ok bool)
}

// Curve2d is a trimming arc in the parameter plane of a surface.
type Curve2d interface {
	Value(t float64) Pair
	D1(t float64) (p, d Pair)
	Bounds() (first, last float64)
	// Project returns the parameter of the foot of the perpendicular from p,
	// if it lies within the bounds of the arc.
	Project(p Pair) (t float64, ok bool)
	// IntersectSegment returns the arc parameters of the crossings of the
	// arc with the segment a–b.
	IntersectSegment(a, b Pair) []float64
}

// VertexHandle identifies a topological vertex of a trimming domain.
// Two handles are the same vertex if and only if they are equal.
type VertexHandle int

// NoVertex is the zero value for a missing vertex.
const NoVertex VertexHandle = -1

// ArcVertex is a vertex bounding an arc.
type ArcVertex struct {
	Vertex VertexHandle
	Param  float64 // parameter of the vertex on the arc
	Tol    float64 // tolerance of the vertex, in arc parameter units
}

// Domain is the trimmed parameter domain of a surface. Arcs are referenced by
// index, 0 ≤ i < NbArcs().
type Domain interface {
	Classify(p Pair, tol float64) State
	NbArcs() int
	Arc(i int) Curve2d
	Vertices(arc int) []ArcVertex
}

// Axis is a point with a direction, e.g. a vertex of a guide curve together
// with the tangent of the curve there.
type Axis struct {
	Location  r3.Vec
	Direction r3.Vec // unit length
}

// Guide is the curve driving the section planes of a blend.
type Guide interface {
	Value(t float64) r3.Vec
	D1(t float64) (p, d r3.Vec)
	Bounds() (first, last float64)
	IsPeriodic() bool
	Period() float64
	// Vertices are the feature points of the guide, i.e. where patches meet.
	Vertices() []Axis
	// SavedBounds are the parameter bounds of the guide before it has been
	// extended. Unset bounds are infinite.
	SavedBounds() (first, last float64)
	// Project returns the parameter of the point of the guide closest to p.
	Project(p r3.Vec) (t float64, ok bool)
}

// Function is a blend function. For a guide parameter given by Set, its
// variables are (u1,v1,u2,v2) and a root couples a point on each surface.
type Function interface {
	rootfind.FunctionSet
	Set(param float64)
	GetTolerance(tol3d float64) []float64
	GetBounds() (inf, sup []float64)
	// IsSolution checks sol at the current parameter. If it is a solution,
	// the accessors below refer to it.
	IsSolution(sol []float64, tol float64) bool
	IsTangencyPoint() bool
	PointOnS1() r3.Vec
	PointOnS2() r3.Vec
	TangentOnS1() r3.Vec
	TangentOnS2() r3.Vec
	Tangent2dOnS1() Pair
	Tangent2dOnS2() Pair
	TwistOnS1() bool
	TwistOnS2() bool
	// Tangent returns the tangents of the section at both ends and the surface
	// normals there.
	Tangent(u1, v1, u2, v2 float64) (tgFirst, tgLast, norFirst, norLast r3.Vec)
}

// FuncInv is the inverse of a blend function, with one surface point bound
// to a trimming arc. Its variables are (w, t, u, v): the parameter on the arc,
// the guide parameter and the parameters on the other surface.
type FuncInv interface {
	rootfind.FunctionSet
	Set(onFirst bool, arc Curve2d)
	GetTolerance(tol3d float64) []float64
	GetBounds() (inf, sup []float64)
	IsSolution(sol []float64, tol float64) bool
}
