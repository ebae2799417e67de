package blendfunc

import (
	"math"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/rootfind"
	"gonum.org/v1/gonum/mat"
)

// ConstRadInv is the inverse of ConstRad: one of the surface points is bound
// to a trimming arc. Its variables are (w, t, u, v), with w the parameter on
// the arc, t the guide parameter and (u,v) the point on the other surface.
type ConstRadInv struct {
	ball
	onFirst bool
	arc     blend.Curve2d
}

var _ blend.FuncInv = (*ConstRadInv)(nil)

// NewConstRadInv creates the inverse function for NewConstRad with the same
// arguments.
func NewConstRadInv(s1, s2 blend.Surface, g blend.Guide, radius float64, choix int) (*ConstRadInv, error) {
	b, err := newBall(s1, s2, g, radius, choix)
	if err != nil {
		return nil, err
	}
	return &ConstRadInv{ball: b, onFirst: true}, nil
}

func (c *ConstRadInv) NbVariables() int { return 4 }
func (c *ConstRadInv) NbEquations() int { return 4 }

// Set binds the point on the first (onFirst) or second surface to arc.
func (c *ConstRadInv) Set(onFirst bool, arc blend.Curve2d) {
	c.onFirst = onFirst
	c.arc = arc
}

// surfaceParams maps the variables of the inverse function to (u1,v1,u2,v2).
func (c *ConstRadInv) surfaceParams(x []float64) []float64 {
	p := c.arc.Value(x[0])
	if c.onFirst {
		return []float64{p.X(), p.Y(), x[2], x[3]}
	}
	return []float64{x[2], x[3], p.X(), p.Y()}
}

// Value computes the residuals at x.
func (c *ConstRadInv) Value(x, f []float64) bool {
	if c.arc == nil {
		return false
	}
	_, _, ok := c.residuals(c.surfaceParams(x), x[1], f)
	return ok
}

// Derivatives computes the Jacobian at x.
func (c *ConstRadInv) Derivatives(x []float64, d *mat.Dense) bool {
	return rootfind.Jacobian(c.Value, x, d)
}

// constrained returns the surface bound to the arc and the other one.
func (c *ConstRadInv) constrained() (onArc, other blend.Surface) {
	if c.onFirst {
		return c.s1, c.s2
	}
	return c.s2, c.s1
}

// GetTolerance returns the tolerances of (w, t, u, v) corresponding to tol3d.
func (c *ConstRadInv) GetTolerance(tol3d float64) []float64 {
	onArc, other := c.constrained()
	return []float64{
		math.Min(onArc.UResolution(tol3d), onArc.VResolution(tol3d)),
		tol3d,
		other.UResolution(tol3d),
		other.VResolution(tol3d),
	}
}

// GetBounds returns the arc bounds, the guide bounds and the widened bounds
// of the other surface.
func (c *ConstRadInv) GetBounds() (inf, sup []float64) {
	_, other := c.constrained()
	wmin, wmax := c.arc.Bounds()
	tmin, tmax := c.guide.Bounds()
	i, s := expanded(other)
	return []float64{wmin, tmin, i[0], i[1]}, []float64{wmax, tmax, s[0], s[1]}
}

// IsSolution checks if sol solves the equations within tol.
func (c *ConstRadInv) IsSolution(sol []float64, tol float64) bool {
	e := make([]float64, 4)
	if _, _, ok := c.residuals(c.surfaceParams(sol), sol[1], e); !ok {
		return false
	}
	return math.Abs(e[0]) <= tol && e[1]*e[1]+e[2]*e[2]+e[3]*e[3] <= tol*tol
}
