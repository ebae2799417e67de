package walking

import (
	"fmt"

	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a solution of a blend function: a point on each surface for a
// guide parameter. Points are values and never change once computed.
//
// Points where the blend function is degenerate are tangency points. They
// have no tangents, and asking for them is a programming error.
type Point struct {
	p1, p2   r3.Vec
	param    float64
	uv1, uv2 blend.Pair
	tg1, tg2 r3.Vec
	tg2d1    blend.Pair
	tg2d2    blend.Pair
	tangency bool
}

// NewPoint creates a tangency point, i.e. one without tangents.
func NewPoint(p1, p2 r3.Vec, param float64, uv1, uv2 blend.Pair) Point {
	return Point{p1: p1, p2: p2, param: param, uv1: uv1, uv2: uv2, tangency: true}
}

// WithTangents returns a copy of pt with the tangents of the line on both
// surfaces, in space and in parameter space.
func (pt Point) WithTangents(tg1, tg2 r3.Vec, tg2d1, tg2d2 blend.Pair) Point {
	pt.tg1, pt.tg2 = tg1, tg2
	pt.tg2d1, pt.tg2d2 = tg2d1, tg2d2
	pt.tangency = false
	return pt
}

// WithParameter returns a copy of pt for a corrected guide parameter.
func (pt Point) WithParameter(t float64) Point {
	pt.param = t
	return pt
}

func (pt Point) PointOnS1() r3.Vec          { return pt.p1 }
func (pt Point) PointOnS2() r3.Vec          { return pt.p2 }
func (pt Point) Parameter() float64         { return pt.param }
func (pt Point) ParametersOnS1() blend.Pair { return pt.uv1 }
func (pt Point) ParametersOnS2() blend.Pair { return pt.uv2 }
func (pt Point) IsTangencyPoint() bool      { return pt.tangency }

// TangentOnS1 is the tangent of the line on the first surface.
func (pt Point) TangentOnS1() r3.Vec {
	pt.mustHaveTangents()
	return pt.tg1
}

// TangentOnS2 is the tangent of the line on the second surface.
func (pt Point) TangentOnS2() r3.Vec {
	pt.mustHaveTangents()
	return pt.tg2
}

// Tangent2dOnS1 is the tangent of the line in the parameter plane of the
// first surface.
func (pt Point) Tangent2dOnS1() blend.Pair {
	pt.mustHaveTangents()
	return pt.tg2d1
}

// Tangent2dOnS2 is the tangent of the line in the parameter plane of the
// second surface.
func (pt Point) Tangent2dOnS2() blend.Pair {
	pt.mustHaveTangents()
	return pt.tg2d2
}

func (pt Point) mustHaveTangents() {
	if pt.tangency {
		panic(fmt.Sprintf("walking: no tangents at tangency point t=%g", pt.param))
	}
}

// sol returns (u1,v1,u2,v2).
func (pt Point) sol() [4]float64 {
	return [4]float64{pt.uv1.X(), pt.uv1.Y(), pt.uv2.X(), pt.uv2.Y()}
}

func (pt Point) String() string {
	return fmt.Sprintf("t=%g %v %v", pt.param, pt.uv1, pt.uv2)
}
