package walking

import (
	"math"

	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// correction is an extremity moved into the section plane of a guide vertex.
type correction struct {
	uv    blend.Pair // parameters on the surface opposite to the restriction
	pnt   r3.Vec
	param float64 // guide parameter
}

// correctExtremityOnOneRst handles a section ending on a restriction of one
// surface close to a vertex of the guide. The point (u,v) on the opposite
// surface is moved into the plane of the guide vertex nearest to the
// restriction arc, if the section plane at param is nearly parallel to it.
// onFirst tells on which surface the restriction lies, pntOnRst is the point
// on the restriction.
func (w *Walker) correctExtremityOnOneRst(m *march, onFirst bool, arcIdx int, u, v, param float64,
	pntOnRst r3.Vec) (correction, bool) {
	//
	var c correction
	vertices := w.guide.Vertices()
	if len(vertices) == 0 {
		return c, false
	}
	surfOfRst, another := w.surface(onFirst), w.surface(!onFirst)
	arc := w.recdomain(onFirst).Arc(arcIdx)

	// the end of the arc closest to the guide decides the guide parameter
	first, last := arc.Bounds()
	found := false
	globalMin := math.Inf(1)
	var pointOnGuide r3.Vec
	for _, e := range [2]float64{first, last} {
		p2d := arc.Value(e)
		pe := surfOfRst.Value(p2d.X(), p2d.Y())
		t, ok := w.guide.Project(pe)
		if !ok {
			continue
		}
		q := w.guide.Value(t)
		if d := r3.Norm2(r3.Sub(pe, q)); d < globalMin {
			globalMin, c.param, pointOnGuide, found = d, t, q, true
		}
	}
	if !found {
		return c, false
	}
	if w.guide.IsPeriodic() {
		period := w.guide.Period()
		sign := 1.0
		if c.param > param {
			sign = -1
		}
		for math.Abs(c.param-param) > period/2 {
			c.param += sign * period
		}
	}

	minDist := math.Inf(1)
	var ax blend.Axis
	for _, a := range vertices {
		if d := r3.Norm2(r3.Sub(pointOnGuide, a.Location)); d < minDist {
			minDist, ax = d, a
		}
	}
	dir0 := r3.Unit(ax.Direction)
	oldPonGuide := w.guide.Value(param)
	pntOnSurf2 := another.Value(u, v)
	oldDir, ok := planeNormal(pntOnRst, oldPonGuide, pntOnSurf2)
	if !ok || lineAngle(oldDir, dir0) > w.conf.TolAng {
		return c, false
	}
	d := r3.Dot(r3.Sub(pntOnSurf2, ax.Location), dir0)
	pntOnPlane := r3.Sub(pntOnSurf2, r3.Scale(d, dir0))
	newDir, ok := planeNormal(pntOnRst, ax.Location, pntOnPlane)
	if !ok || lineAngle(newDir, dir0) > w.conf.TolAng {
		return c, false
	}
	uv, ok := another.Project(pntOnPlane)
	if !ok {
		return c, false
	}
	c.pnt = another.Value(uv.X(), uv.Y())
	var uper, vper float64
	if another.IsUPeriodic() {
		uper = another.UPeriod()
	}
	if another.IsVPeriodic() {
		vper = another.VPeriod()
	}
	c.uv = recadreIfPeriodic(uv, u, v, uper, vper)
	tracer().Debugf("walking: extremity corrected from t=%g to t=%g", param, c.param)
	return c, true
}

// recadreIfPeriodic shifts uv by periods to be closest to (oldU,oldV).
// A period of 0 means not periodic.
func recadreIfPeriodic(uv blend.Pair, oldU, oldV, uPeriod, vPeriod float64) blend.Pair {
	u, v := uv.X(), uv.Y()
	if uPeriod > 0 {
		sign := 1.0
		if u > oldU {
			sign = -1
		}
		for math.Abs(u-oldU) > uPeriod/2 {
			u += sign * uPeriod
		}
	}
	if vPeriod > 0 {
		sign := 1.0
		if v > oldV {
			sign = -1
		}
		for math.Abs(v-oldV) > vPeriod/2 {
			v += sign * vPeriod
		}
	}
	return blend.P(u, v)
}

// planeNormal is the unit normal of the plane through three points.
func planeNormal(p1, p2, p3 r3.Vec) (r3.Vec, bool) {
	a, b := r3.Sub(p2, p1), r3.Sub(p3, p1)
	n := r3.Cross(a, b)
	l := r3.Norm(n)
	if r3.Norm(a) <= blend.Confusion || r3.Norm(b) <= blend.Confusion ||
		l <= blend.Confusion*r3.Norm(a)*r3.Norm(b) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/l, n), true
}

// lineAngle is the angle between the lines with directions a and b, in
// [0, π/2].
func lineAngle(a, b r3.Vec) float64 {
	angle := math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b))
	if angle > math.Pi/2 {
		angle = math.Pi - angle
	}
	return angle
}
