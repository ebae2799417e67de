package blendfunc

import (
	"math"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/rootfind"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ConstRad is the constant radius blend function. Its variables are
// (u1,v1,u2,v2) at the guide parameter given by Set.
//
// A ConstRad caches the last solution checked by IsSolution and must not be
// shared between marching sessions running concurrently.
type ConstRad struct {
	ball
	param     float64
	pts1      r3.Vec
	pts2      r3.Vec
	nplan     r3.Vec
	istangent bool
	tg1, tg2  r3.Vec
	tg12d     blend.Pair
	tg22d     blend.Pair
	distmin   float64
}

var _ blend.Function = (*ConstRad)(nil)

// NewConstRad creates a blend function for a ball of the given radius rolling
// on s1 and s2 along guide g. choix selects the sides of the surfaces the ball
// rolls on, see package documentation.
func NewConstRad(s1, s2 blend.Surface, g blend.Guide, radius float64, choix int) (*ConstRad, error) {
	b, err := newBall(s1, s2, g, radius, choix)
	if err != nil {
		return nil, err
	}
	return &ConstRad{ball: b, istangent: true, distmin: math.Inf(1)}, nil
}

func (c *ConstRad) NbVariables() int { return 4 }
func (c *ConstRad) NbEquations() int { return 4 }

// Set sets the guide parameter of the section.
func (c *ConstRad) Set(param float64) {
	c.param = param
}

// Value computes the residuals at x.
func (c *ConstRad) Value(x, f []float64) bool {
	_, _, ok := c.residuals(x, c.param, f)
	return ok
}

// Derivatives computes the Jacobian at x.
func (c *ConstRad) Derivatives(x []float64, d *mat.Dense) bool {
	return rootfind.Jacobian(c.Value, x, d)
}

// GetTolerance returns the parametric tolerances corresponding to tol3d.
func (c *ConstRad) GetTolerance(tol3d float64) []float64 {
	return []float64{
		c.s1.UResolution(tol3d), c.s1.VResolution(tol3d),
		c.s2.UResolution(tol3d), c.s2.VResolution(tol3d),
	}
}

// GetBounds returns the bounds of the variables: the surface domains,
// widened by their size on each side.
func (c *ConstRad) GetBounds() (inf, sup []float64) {
	i1, s1 := expanded(c.s1)
	i2, s2 := expanded(c.s2)
	return []float64{i1[0], i1[1], i2[0], i2[1]}, []float64{s1[0], s1[1], s2[0], s2[1]}
}

// IsSolution checks if sol solves the equations at the current parameter
// within tol. For a solution, the tangents of the section line are derived by
// implicit differentiation. If this is impossible, the solution is a tangency
// point.
func (c *ConstRad) IsSolution(sol []float64, tol float64) bool {
	e := make([]float64, 4)
	p1, p2, ok := c.residuals(sol, c.param, e)
	if !ok || math.Abs(e[0]) > tol || e[1]*e[1]+e[2]*e[2]+e[3]*e[3] > tol*tol {
		c.istangent = true
		return false
	}
	c.pts1, c.pts2 = p1, p2
	_, c.nplan, _ = c.plane(c.param)
	c.istangent = true
	dedx := mat.NewDense(4, 4, nil)
	dedt := make([]float64, 4)
	if rootfind.Jacobian(c.Value, sol, dedx) && c.paramDerivative(sol, dedt) {
		rhs := []float64{-dedt[0], -dedt[1], -dedt[2], -dedt[3]}
		if s, ok := rootfind.SolveLinear(dedx, rhs); ok && c.isTangentSolution(dedx, dedt, s, tol) {
			c.istangent = false
			_, du1, dv1 := c.s1.D1(sol[0], sol[1])
			_, du2, dv2 := c.s2.D1(sol[2], sol[3])
			c.tg1 = r3.Add(r3.Scale(s[0], du1), r3.Scale(s[1], dv1))
			c.tg2 = r3.Add(r3.Scale(s[2], du2), r3.Scale(s[3], dv2))
			c.tg12d = blend.P(s[0], s[1])
			c.tg22d = blend.P(s[2], s[3])
		} else {
			tracer().Debugf("no section tangent at t=%g", c.param)
		}
	}
	c.distmin = math.Min(c.distmin, r3.Norm(r3.Sub(p1, p2)))
	return true
}

// paramDerivative computes ∂E/∂t at sol by central differences.
func (c *ConstRad) paramDerivative(sol []float64, dedt []float64) bool {
	h := 1e-6 * (1 + math.Abs(c.param))
	ep := make([]float64, 4)
	em := make([]float64, 4)
	if _, _, ok := c.residuals(sol, c.param+h, ep); !ok {
		return false
	}
	if _, _, ok := c.residuals(sol, c.param-h, em); !ok {
		return false
	}
	for i := range dedt {
		dedt[i] = (ep[i] - em[i]) / (2 * h)
	}
	return true
}

// isTangentSolution checks that s really solves dedx·s = −dedt.
func (c *ConstRad) isTangentSolution(dedx *mat.Dense, dedt, s []float64, tol float64) bool {
	tolerances := c.GetTolerance(tol)
	for i := 0; i < 4; i++ {
		ctrl := dedt[i]
		for j := 0; j < 4; j++ {
			ctrl += dedx.At(i, j) * s[j]
		}
		if math.Abs(ctrl) > tolerances[i] {
			return false
		}
	}
	return true
}

// MinimalDistance is the smallest distance between the surface points of
// all solutions seen so far.
func (c *ConstRad) MinimalDistance() float64 {
	return c.distmin
}

// IsTangencyPoint is true if the last solution has no section tangents.
func (c *ConstRad) IsTangencyPoint() bool {
	return c.istangent
}

func (c *ConstRad) PointOnS1() r3.Vec { return c.pts1 }
func (c *ConstRad) PointOnS2() r3.Vec { return c.pts2 }

// TangentOnS1 returns the tangent of the section line on the first surface.
// It panics at tangency points.
func (c *ConstRad) TangentOnS1() r3.Vec {
	c.mustHaveTangents("TangentOnS1")
	return c.tg1
}

// TangentOnS2 returns the tangent of the section line on the second surface.
// It panics at tangency points.
func (c *ConstRad) TangentOnS2() r3.Vec {
	c.mustHaveTangents("TangentOnS2")
	return c.tg2
}

// Tangent2dOnS1 is the parametric tangent on the first surface.
func (c *ConstRad) Tangent2dOnS1() blend.Pair {
	c.mustHaveTangents("Tangent2dOnS1")
	return c.tg12d
}

// Tangent2dOnS2 is the parametric tangent on the second surface.
func (c *ConstRad) Tangent2dOnS2() blend.Pair {
	c.mustHaveTangents("Tangent2dOnS2")
	return c.tg22d
}

// TwistOnS1 is true if the section line runs against the guide on the first
// surface.
func (c *ConstRad) TwistOnS1() bool {
	c.mustHaveTangents("TwistOnS1")
	return r3.Dot(c.tg1, c.nplan) < 0
}

// TwistOnS2 is true if the section line runs against the guide on the second
// surface.
func (c *ConstRad) TwistOnS2() bool {
	c.mustHaveTangents("TwistOnS2")
	return r3.Dot(c.tg2, c.nplan) < 0
}

func (c *ConstRad) mustHaveTangents(op string) {
	if c.istangent {
		panic("blendfunc: " + op + " called for a tangency point")
	}
}

// Tangent returns the tangents of the section arc at both surfaces, together
// with the surface normals there.
func (c *ConstRad) Tangent(u1, v1, u2, v2 float64) (tgF, tgL, nmF, nmL r3.Vec) {
	_, nplan, _ := c.plane(c.param)
	p1, _, _, ns1 := normal(c.s1, u1, v1)
	p2, _, _, ns2 := normal(c.s2, u2, v2)
	center := r3.Add(p1, r3.Scale(c.ray1, offsetDir(nplan, ns1)))
	tgF = r3.Cross(nplan, r3.Sub(p1, center))
	tgL = r3.Cross(nplan, r3.Sub(p2, center))
	if c.choix%2 == 1 {
		tgF = r3.Scale(-1, tgF)
		tgL = r3.Scale(-1, tgL)
	}
	return tgF, tgL, ns1, ns2
}

// Center returns the center of the ball for a solution sol at guide
// parameter t.
func (c *ConstRad) Center(t float64, sol []float64) r3.Vec {
	_, nplan, _ := c.plane(t)
	p1, _, _, ns1 := normal(c.s1, sol[0], sol[1])
	return r3.Add(p1, r3.Scale(c.ray1, offsetDir(nplan, ns1)))
}
