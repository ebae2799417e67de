package walking

import (
	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// transition computes the transitions of the line and of the arc at their
// crossing at parameter param of arc, on the first (onFirst) or second
// surface.
func (w *Walker) transition(m *march, onFirst bool, arc blend.Curve2d, param float64) (tline, tarc blend.Transition) {
	var tgline r3.Vec
	if m.prev.IsTangencyPoint() {
		// approximate the tangent by the last chord
		n := w.line.NbPoints()
		if n < 2 {
			undecided := blend.Transition{Type: blend.TransUndecided}
			return undecided, undecided
		}
		prevprev := w.line.Point(n - 2)
		if m.sens < 0 {
			prevprev = w.line.Point(1)
		}
		if onFirst {
			tgline = r3.Sub(m.prev.PointOnS1(), prevprev.PointOnS1())
		} else {
			tgline = r3.Sub(m.prev.PointOnS2(), prevprev.PointOnS2())
		}
	} else if onFirst {
		tgline = m.prev.TangentOnS1()
	} else {
		tgline = m.prev.TangentOnS2()
	}
	s := w.surface(onFirst)
	p2d, dp2d := arc.D1(param)
	_, d1u, d1v := s.D1(p2d.X(), p2d.Y())
	tgrst := r3.Add(r3.Scale(dp2d.X(), d1u), r3.Scale(dp2d.Y(), d1v))
	normal, ok := blend.Normal(s, p2d.X(), p2d.Y())
	if !ok {
		tracer().Debugf("walking: no normal at arc parameter %g", param)
	}
	return blend.MakeTransition(tgline, tgrst, normal)
}

// makeExtremity creates the extremity of the line at m.prev on the
// restriction found by r, on the first (onFirst) or second surface.
func (w *Walker) makeExtremity(m *march, onFirst bool, r retarget) Extremity {
	var ext Extremity
	if onFirst {
		ext = newExtremity(m.prev.PointOnS1(), m.prev.ParametersOnS1(), m.prev.Parameter(), m.tol3d)
		if !m.prev.IsTangencyPoint() {
			ext.setTangent(m.prev.TangentOnS1())
		}
	} else {
		ext = newExtremity(m.prev.PointOnS2(), m.prev.ParametersOnS2(), m.prev.Parameter(), m.tol3d)
		if !m.prev.IsTangencyPoint() {
			ext.setTangent(m.prev.TangentOnS2())
		}
	}
	arc := w.recdomain(onFirst).Arc(r.arc)
	tline, tarc := w.transition(m, onFirst, arc, r.sol[0])
	ext.addArc(PointOnRst{Arc: r.arc, Param: r.sol[0], TransitionOnLine: tline, TransitionOnArc: tarc})
	if r.isVtx {
		ext.setVertex(r.vtx)
	}
	return ext
}

// makeSingularExtremity makes ext a vertex extremity at vtx, on every arc of
// the domain which ends at vtx.
func (w *Walker) makeSingularExtremity(m *march, ext *Extremity, onFirst bool, vtx blend.VertexHandle) {
	if !m.prev.IsTangencyPoint() {
		if onFirst {
			ext.setTangent(m.prev.TangentOnS1())
		} else {
			ext.setTangent(m.prev.TangentOnS2())
		}
	}
	ext.setVertex(vtx)
	dom := w.recdomain(onFirst)
	for i := 0; i < dom.NbArcs(); i++ {
		for _, v := range dom.Vertices(i) {
			if v.Vertex != vtx {
				continue
			}
			tline, tarc := w.transition(m, onFirst, dom.Arc(i), v.Param)
			ext.addArc(PointOnRst{Arc: i, Param: v.Param, TransitionOnLine: tline, TransitionOnArc: tarc})
		}
	}
}
