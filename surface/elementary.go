package surface

import (
	"math"

	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// --- Plane -----------------------------------------------------------------

// Plane is the parametric plane P(u,v) = O + u·X + v·Y.
type Plane struct {
	bounds
	frame Frame
}

var _ blend.Surface = (*Plane)(nil)

// NewPlane creates a plane spanned by the x- and y-axis of f.
func NewPlane(f Frame, umin, umax, vmin, vmax float64) *Plane {
	return &Plane{frame: f, bounds: bounds{umin, umax, vmin, vmax}}
}

// Value evaluates the plane at (u,v).
func (pl *Plane) Value(u, v float64) r3.Vec {
	return pl.frame.at(u, v, 0)
}

// D1 evaluates the plane and its first derivatives.
func (pl *Plane) D1(u, v float64) (p, du, dv r3.Vec) {
	return pl.Value(u, v), pl.frame.X, pl.frame.Y
}

// D2 evaluates the plane and its derivatives up to order 2.
func (pl *Plane) D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec) {
	p, du, dv = pl.D1(u, v)
	return
}

func (pl *Plane) UResolution(tol3d float64) float64 { return tol3d }
func (pl *Plane) VResolution(tol3d float64) float64 { return tol3d }
func (pl *Plane) IsUPeriodic() bool                 { return false }
func (pl *Plane) UPeriod() float64                  { return 0 }
func (pl *Plane) IsVPeriodic() bool                 { return false }
func (pl *Plane) VPeriod() float64                  { return 0 }

// Project finds the parameters of the foot of the perpendicular from p.
func (pl *Plane) Project(p r3.Vec) (blend.Pair, bool) {
	x, y, _ := pl.frame.local(p)
	return blend.P(x, y), true
}

// --- Cylinder --------------------------------------------------------------

// Cylinder is the circular cylinder around the z-axis of its frame,
// P(u,v) = O + R·(cos u·X + sin u·Y) + v·Z. Its normal points outwards.
type Cylinder struct {
	bounds
	frame  Frame
	radius float64
}

var _ blend.Surface = (*Cylinder)(nil)

// NewCylinder creates a cylinder of radius r. u is the angle around the axis.
func NewCylinder(f Frame, r float64, umin, umax, vmin, vmax float64) *Cylinder {
	return &Cylinder{frame: f, radius: r, bounds: bounds{umin, umax, vmin, vmax}}
}

// Value evaluates the cylinder at (u,v).
func (c *Cylinder) Value(u, v float64) r3.Vec {
	return c.frame.at(c.radius*math.Cos(u), c.radius*math.Sin(u), v)
}

// D1 evaluates the cylinder and its first derivatives.
func (c *Cylinder) D1(u, v float64) (p, du, dv r3.Vec) {
	sin, cos := math.Sincos(u)
	p = c.Value(u, v)
	du = c.frame.dir(-c.radius*sin, c.radius*cos, 0)
	dv = c.frame.Z()
	return
}

// D2 evaluates the cylinder and its derivatives up to order 2.
func (c *Cylinder) D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec) {
	p, du, dv = c.D1(u, v)
	sin, cos := math.Sincos(u)
	duu = c.frame.dir(-c.radius*cos, -c.radius*sin, 0)
	return
}

func (c *Cylinder) UResolution(tol3d float64) float64 { return tol3d / c.radius }
func (c *Cylinder) VResolution(tol3d float64) float64 { return tol3d }
func (c *Cylinder) IsUPeriodic() bool                 { return true }
func (c *Cylinder) UPeriod() float64                  { return 2 * math.Pi }
func (c *Cylinder) IsVPeriodic() bool                 { return false }
func (c *Cylinder) VPeriod() float64                  { return 0 }

// Project finds the parameters of the point of the cylinder closest to p.
// Points on the axis have no unique projection.
func (c *Cylinder) Project(p r3.Vec) (blend.Pair, bool) {
	x, y, z := c.frame.local(p)
	if blend.Is0(math.Hypot(x, y)) {
		return blend.Origin, false
	}
	u := wrap(math.Atan2(y, x), c.umin, 2*math.Pi)
	return blend.P(u, z), true
}

// --- Sphere ----------------------------------------------------------------

// Sphere is the sphere P(u,v) = O + R·cos v·(cos u·X + sin u·Y) + R·sin v·Z,
// with u the longitude and v ∈ [-π/2, π/2] the latitude. The poles are
// degenerate: ∂P/∂u vanishes there.
type Sphere struct {
	bounds
	frame  Frame
	radius float64
}

var _ blend.Surface = (*Sphere)(nil)

// NewSphere creates a full sphere of radius r.
func NewSphere(f Frame, r float64) *Sphere {
	return &Sphere{frame: f, radius: r, bounds: bounds{0, 2 * math.Pi, -math.Pi / 2, math.Pi / 2}}
}

// Value evaluates the sphere at (u,v).
func (s *Sphere) Value(u, v float64) r3.Vec {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	return s.frame.at(s.radius*cv*cu, s.radius*cv*su, s.radius*sv)
}

// D1 evaluates the sphere and its first derivatives.
func (s *Sphere) D1(u, v float64) (p, du, dv r3.Vec) {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	r := s.radius
	p = s.Value(u, v)
	du = s.frame.dir(-r*cv*su, r*cv*cu, 0)
	dv = s.frame.dir(-r*sv*cu, -r*sv*su, r*cv)
	return
}

// D2 evaluates the sphere and its derivatives up to order 2.
func (s *Sphere) D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec) {
	p, du, dv = s.D1(u, v)
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	r := s.radius
	duu = s.frame.dir(-r*cv*cu, -r*cv*su, 0)
	dvv = s.frame.dir(-r*cv*cu, -r*cv*su, -r*sv)
	duv = s.frame.dir(r*sv*su, -r*sv*cu, 0)
	return
}

func (s *Sphere) UResolution(tol3d float64) float64 { return tol3d / s.radius }
func (s *Sphere) VResolution(tol3d float64) float64 { return tol3d / s.radius }
func (s *Sphere) IsUPeriodic() bool                 { return true }
func (s *Sphere) UPeriod() float64                  { return 2 * math.Pi }
func (s *Sphere) IsVPeriodic() bool                 { return false }
func (s *Sphere) VPeriod() float64                  { return 0 }

// Project finds the parameters of the point of the sphere closest to p.
// The center has no unique projection.
func (s *Sphere) Project(p r3.Vec) (blend.Pair, bool) {
	x, y, z := s.frame.local(p)
	d := math.Sqrt(x*x + y*y + z*z)
	if blend.Is0(d) {
		return blend.Origin, false
	}
	v := math.Asin(math.Max(-1, math.Min(1, z/d)))
	u := 0.0
	if !blend.Is0(math.Hypot(x, y)) {
		u = wrap(math.Atan2(y, x), s.umin, 2*math.Pi)
	}
	return blend.P(u, v), true
}
