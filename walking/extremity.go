package walking

import (
	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// PointOnRst records that an extremity lies on a trimming arc.
type PointOnRst struct {
	Arc              int     // index of the arc in the domain
	Param            float64 // parameter on the arc
	TransitionOnLine blend.Transition
	TransitionOnArc  blend.Transition
}

// Extremity is an end of a line on one of the surfaces.
type Extremity struct {
	pt         r3.Vec
	uv         blend.Pair
	param      float64
	tol        float64
	tangent    r3.Vec
	hasTangent bool
	arcs       []PointOnRst
	vertex     blend.VertexHandle
	isVertex   bool
}

func newExtremity(p r3.Vec, uv blend.Pair, param, tol float64) Extremity {
	return Extremity{pt: p, uv: uv, param: param, tol: tol, vertex: blend.NoVertex}
}

func (e *Extremity) setTangent(tg r3.Vec) {
	e.tangent = tg
	e.hasTangent = true
}

func (e *Extremity) addArc(p PointOnRst) {
	e.arcs = append(e.arcs, p)
}

func (e *Extremity) setVertex(v blend.VertexHandle) {
	e.vertex = v
	e.isVertex = true
}

// Value is the point in space.
func (e Extremity) Value() r3.Vec { return e.pt }

// Parameters are the surface parameters of the point.
func (e Extremity) Parameters() blend.Pair { return e.uv }

// Parameter is the guide parameter.
func (e Extremity) Parameter() float64 { return e.param }

// Tolerance is the tolerance of the point in space.
func (e Extremity) Tolerance() float64 { return e.tol }

// HasTangent is false for extremities at tangency points.
func (e Extremity) HasTangent() bool { return e.hasTangent }

// Tangent is the tangent of the line at the extremity, if HasTangent.
func (e Extremity) Tangent() r3.Vec { return e.tangent }

// NbPointOnRst is the number of trimming arcs the extremity lies on.
func (e Extremity) NbPointOnRst() int { return len(e.arcs) }

// PointOnRst returns the i-th arc the extremity lies on.
func (e Extremity) PointOnRst(i int) PointOnRst { return e.arcs[i] }

// IsVertex is true if the extremity coincides with a domain vertex.
func (e Extremity) IsVertex() bool { return e.isVertex }

// Vertex is the domain vertex at the extremity, or blend.NoVertex.
func (e Extremity) Vertex() blend.VertexHandle { return e.vertex }
