package blend

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// normalTolerance is the minimum sine between the partial derivatives of a
// surface for the normal to be computed from first order derivatives.
const normalTolerance = 1e-9

// Normal returns the unit normal of s at (u,v). At degenerate points (poles,
// apexes) the first derivatives are parallel or vanish; the normal is then
// taken from the first order expansion of du × dv towards the interior of
// the parameter domain. Normal reports false if it could not find a normal.
func Normal(s Surface, u, v float64) (r3.Vec, bool) {
	_, du, dv := s.D1(u, v)
	n := r3.Cross(du, dv)
	if nn := r3.Norm(n); nn > normalTolerance*r3.Norm(du)*r3.Norm(dv) && nn > Resolution {
		return r3.Scale(1/nn, n), true
	}
	_, du, dv, duu, dvv, duv := s.D2(u, v)
	nu := r3.Add(r3.Cross(duu, dv), r3.Cross(du, duv)) // ∂(du×dv)/∂u
	nv := r3.Add(r3.Cross(duv, dv), r3.Cross(du, dvv)) // ∂(du×dv)/∂v
	umin, umax, vmin, vmax := s.Bounds()
	// move into the domain: at an upper bound, step backwards
	if isAtUpper(u, umin, umax) {
		nu = r3.Scale(-1, nu)
	}
	if isAtUpper(v, vmin, vmax) {
		nv = r3.Scale(-1, nv)
	}
	cand := nv
	if r3.Norm2(nu) > r3.Norm2(nv) {
		cand = nu
	}
	if nn := r3.Norm(cand); nn > Resolution {
		return r3.Scale(1/nn, cand), true
	}
	tracer().Debugf("surface normal undefined at %v", P(u, v))
	return r3.Vec{}, false
}

func isAtUpper(x, lo, hi float64) bool {
	if IsInfinite(lo) || IsInfinite(hi) {
		return false
	}
	return hi-x < x-lo
}
