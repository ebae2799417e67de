package walking

import (
	"math"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/rootfind"
	"gonum.org/v1/gonum/spatial/r3"
)

// internalPerform marches from m.prev towards the guide parameter bound,
// appending (sens > 0) or prepending (sens < 0) the accepted points, and sets
// the extremities where the march stops.
func (w *Walker) internalPerform(m *march, fn blend.Function, finv blend.FuncInv, bound float64) {
	stepw := m.maxStep
	if nbp := w.line.NbPoints(); nbp >= 2 {
		if m.sens < 0 {
			stepw = w.line.Point(1).Parameter() - w.line.Point(0).Parameter()
		} else {
			stepw = w.line.Point(nbp-1).Parameter() - w.line.Point(nbp-2).Parameter()
		}
		stepw = math.Max(stepw, w.conf.MinStepFactor*m.tolGuide)
	}
	parprec := m.param
	if m.sens*(parprec-bound) >= -m.tolGuide {
		return
	}
	_, prevTgOnGuide := w.guide.D1(parprec)
	tolerance := fn.GetTolerance(m.tol3d)
	inf, sup := fn.GetBounds()
	solver := rootfind.New(tolerance, w.conf.MaxIterations)
	tolClass1 := math.Min(tolerance[0], tolerance[1])
	tolClass2 := math.Min(tolerance[2], tolerance[3])

	m.param = parprec + m.sens*stepw
	if m.sens*(m.param-bound) > 0 {
		stepw = m.sens * (bound - parprec) * 0.5
		m.param = parprec + m.sens*stepw
	}
	parinit := w.evalpinit(m, parprec, inf, sup)
	var ext1, ext2 Extremity
	for arrive := false; !arrive; {
		_, tgOnGuide := w.guide.D1(m.param)
		if w.guideTurnsTooFast(prevTgOnGuide, tgOnGuide) {
			w.notify(m, blend.StepTooLarge)
			stepw /= 2
			m.param = parprec + m.sens*stepw
			if math.Abs(stepw) < m.tolGuide {
				tracer().Debugf("walking: guide turns too fast at t=%g", parprec)
				ext1, ext2 = w.freeExtremities(m)
				arrive = true
				w.setExtremities(m, ext1, ext2, false)
			}
			continue
		}
		prevTgOnGuide = tgOnGuide

		state := blend.OK
		situ1, situ2 := blend.In, blend.In
		var r1, r2 retarget
		bonpoint := true
		fn.Set(m.param)
		solver.Perform(fn, parinit, inf, sup)
		if !solver.IsDone() {
			state = blend.StepTooLarge
			bonpoint = false
		} else {
			copy(m.sol[:], solver.Root())
			if w.clasonS1 {
				situ1 = w.domain1.Classify(blend.P(m.sol[0], m.sol[1]), tolClass1)
			}
			if w.clasonS2 {
				situ2 = w.domain2.Classify(blend.P(m.sol[2], m.sol[3]), tolClass2)
			}
		}
		if bonpoint && w.line.NbPoints() == 1 && (situ1 != blend.In || situ2 != blend.In) {
			// the first step must not leave the domains
			state = blend.StepTooLarge
			bonpoint = false
		}
		if bonpoint {
			state, r1, r2, stepw = w.classifyStep(m, fn, finv, situ1, situ2, stepw, bound)
		}
		w.notify(m, state)

		switch state {
		case blend.OK, blend.StepTooSmall:
			w.addPoint(m)
			parprec = m.param
			if state == blend.StepTooSmall {
				stepw = math.Min(1.5*stepw, m.maxStep)
			}
			if m.param == bound {
				arrive = true
				ext1, ext2 = w.freeExtremities(m)
			} else {
				m.param += m.sens * stepw
				if m.sens*(m.param-bound) > -m.tolGuide {
					m.param = bound
				}
				parinit = w.evalpinit(m, parprec, inf, sup)
			}
		case blend.StepTooLarge:
			stepw /= 2
			if math.Abs(stepw) < m.tolGuide {
				tracer().Debugf("walking: step below guide tolerance at t=%g", parprec)
				arrive = true
				ext1, ext2 = w.freeExtremities(m)
			} else {
				m.param = parprec + m.sens*stepw
				parinit = w.evalpinit(m, parprec, inf, sup)
			}
		case blend.OnRst1:
			w.addPoint(m)
			ext1 = w.makeExtremity(m, true, r1)
			ext2 = w.oppositeExtremity(m, false, r1)
			arrive = true
		case blend.OnRst2:
			w.addPoint(m)
			ext2 = w.makeExtremity(m, false, r2)
			ext1 = w.oppositeExtremity(m, true, r2)
			arrive = true
		case blend.OnRst12:
			w.addPoint(m)
			samePoint := r3.Norm(r3.Sub(m.prev.PointOnS1(), m.prev.PointOnS2())) <= 2*m.tol3d
			if samePoint && r1.isVtx != r2.isVtx {
				// the section has collapsed onto a single vertex
				if r1.isVtx {
					r2.isVtx, r2.vtx = true, r1.vtx
				} else {
					r1.isVtx, r1.vtx = true, r2.vtx
				}
			}
			ext1 = w.makeExtremity(m, true, r1)
			ext2 = w.makeExtremity(m, false, r2)
			arrive = true
		case blend.SamePoints:
			tracer().Debugf("walking: same points at t=%g", m.param)
			arrive = true
			ext1, ext2 = w.freeExtremities(m)
		default:
			tracer().Errorf("walking: unexpected status %v at t=%g", state, m.param)
			arrive = true
			ext1, ext2 = w.freeExtremities(m)
		}
		if arrive {
			w.setExtremities(m, ext1, ext2, false)
		}
	}
}

// guideTurnsTooFast compares the guide tangents of consecutive steps.
func (w *Walker) guideTurnsTooFast(prev, cur r3.Vec) bool {
	cosi := r3.Dot(prev, cur)
	cosi2 := 0.0
	if cosi >= blend.Resolution {
		cosi2 = cosi * cosi / r3.Norm2(prev) / r3.Norm2(cur)
	}
	return cosi2 < w.conf.CosRefGuide
}

// classifyStep decides about a converged candidate section at m.param. If
// the candidate has left a domain, it is re-targeted onto the trimming arc
// it crossed. The returned step width may have been reduced.
func (w *Walker) classifyStep(m *march, fn blend.Function, finv blend.FuncInv, situ1, situ2 blend.State,
	stepw, bound float64) (state blend.Status, r1, r2 retarget, step float64) {
	//
	tolerance := fn.GetTolerance(m.tol3d)
	simultaneous := w.conf.SimultaneousFactor * m.tolGuide
	w1, w2 := bound, bound
	echecrecad, control := false, false
	if situ1 == blend.Out || situ1 == blend.On {
		if r1 = w.recadre(m, finv, true, m.sol, 0); r1.ok {
			if (m.param-r1.sol[1])/m.sens >= -simultaneous {
				w1 = r1.sol[1]
				control = true
			} else {
				// re-targeted too far beyond the candidate
				echecrecad = true
				r1.ok = false
				state = blend.StepTooLarge
				stepw /= 2
			}
		} else {
			echecrecad = true
		}
	}
	if situ2 == blend.Out || situ2 == blend.On {
		if r2 = w.recadre(m, finv, false, m.sol, 0); r2.ok {
			if (m.param-r2.sol[1])/m.sens >= -simultaneous {
				w2 = r2.sol[1]
				control = true
			} else {
				echecrecad = true
				r2.ok = false
				state = blend.StepTooLarge
				stepw /= 2
			}
		} else {
			echecrecad = true
		}
	}
	if r1.ok && r2.ok {
		if math.Abs(w1-w2) <= simultaneous {
			control = false
		} else if m.sens*(w1-w2) < 0 {
			r2.ok = false
		} else {
			r1.ok = false
		}
	}
	if control {
		// the point re-targeted on one surface must be inside the other one
		if r1.ok && w.clasonS2 {
			situ := w.recdomain2.Classify(blend.P(r1.sol[2], r1.sol[3]), math.Min(tolerance[2], tolerance[3]))
			if situ == blend.Out {
				r1.ok = false
				echecrecad = true
			}
		} else if r2.ok && w.clasonS1 {
			situ := w.recdomain1.Classify(blend.P(r2.sol[2], r2.sol[3]), math.Min(tolerance[0], tolerance[1]))
			if situ == blend.Out {
				r2.ok = false
				echecrecad = true
			}
		}
	}
	if r1.ok || r2.ok {
		echecrecad = false
	}
	if echecrecad {
		if stepw > 2*m.tolGuide {
			return blend.StepTooLarge, r1, r2, stepw
		}
		tracer().Debugf("walking: re-targeting failed at t=%g", m.param)
		return blend.SamePoints, r1, r2, stepw
	}
	switch {
	case r1.ok && r2.ok:
		state = blend.OnRst12
		m.param = (w1 + w2) / 2
		p1 := w.recdomain1.Arc(r1.arc).Value(r1.sol[0])
		p2 := w.recdomain2.Arc(r2.arc).Value(r2.sol[0])
		m.sol = [4]float64{p1.X(), p1.Y(), p2.X(), p2.Y()}
		pnt1 := w.s1.Value(p1.X(), p1.Y())
		pnt2 := w.s2.Value(p2.X(), p2.Y())
		m.param = w.snapOnBothRestrictions(m, r1.arc, pnt1, pnt2)
	case r1.ok:
		state = blend.OnRst1
		m.param = w1
		p := w.recdomain1.Arc(r1.arc).Value(r1.sol[0])
		m.sol = [4]float64{p.X(), p.Y(), r1.sol[2], r1.sol[3]}
		if c, ok := w.correctExtremityOnOneRst(m, true, r1.arc, m.sol[2], m.sol[3], m.param, w.s1.Value(p.X(), p.Y())); ok {
			m.param = c.param
			m.sol[2], m.sol[3] = c.uv.X(), c.uv.Y()
		}
	case r2.ok:
		state = blend.OnRst2
		m.param = w2
		p := w.recdomain2.Arc(r2.arc).Value(r2.sol[0])
		m.sol = [4]float64{r2.sol[2], r2.sol[3], p.X(), p.Y()}
		if c, ok := w.correctExtremityOnOneRst(m, false, r2.arc, m.sol[0], m.sol[1], m.param, w.s2.Value(p.X(), p.Y())); ok {
			m.param = c.param
			m.sol[0], m.sol[1] = c.uv.X(), c.uv.Y()
		}
	default:
		state = blend.OK
	}
	if r1.ok || r2.ok {
		fn.Set(m.param)
		state = w.testArret(m, fn, state, math.Abs(stepw) > 3*m.tolGuide, false, true)
	} else {
		state = w.testArret(m, fn, state, true, true, false)
	}
	return state, r1, r2, stepw
}

// snapOnBothRestrictions moves a section lying on restrictions of both
// surfaces onto a saved bound of the guide or onto a guide vertex, if one of
// them is closer to param and the section plane fits.
func (w *Walker) snapOnBothRestrictions(m *march, arc1 int, pnt1, pnt2 r3.Vec) float64 {
	first, last := w.guide.SavedBounds()
	theParam := math.Inf(1)
	for _, sp := range [2]float64{first, last} {
		if blend.IsInfinite(sp) {
			continue
		}
		p0, d0 := w.guide.D1(sp)
		l := r3.Norm(d0)
		if l <= blend.Resolution {
			continue
		}
		n, ok := planeNormal(p0, pnt1, pnt2)
		if !ok {
			continue
		}
		if r3.Norm(r3.Cross(r3.Scale(1/l, d0), n)) <= w.conf.TolProd &&
			math.Abs(m.param-sp) < math.Abs(m.param-theParam) {
			theParam = sp
		}
	}
	if c, ok := w.correctExtremityOnOneRst(m, true, arc1, m.sol[2], m.sol[3], m.param, pnt1); ok {
		if math.Abs(m.param-c.param) < math.Abs(m.param-theParam) {
			theParam = c.param
		}
	}
	if blend.IsInfinite(theParam) {
		return m.param
	}
	return theParam
}

// addPoint adds the last accepted point at the end of the line the march
// heads to.
func (w *Walker) addPoint(m *march) {
	if m.sens > 0 {
		w.line.Append(m.prev)
	} else {
		w.line.Prepend(m.prev)
	}
}

// freeExtremities are the extremities at the last accepted point, when the
// march stops without hitting a restriction.
func (w *Walker) freeExtremities(m *march) (ext1, ext2 Extremity) {
	ext1 = newExtremity(m.prev.PointOnS1(), m.prev.ParametersOnS1(), m.prev.Parameter(), m.tol3d)
	ext2 = newExtremity(m.prev.PointOnS2(), m.prev.ParametersOnS2(), m.prev.Parameter(), m.tol3d)
	if !m.prev.IsTangencyPoint() {
		ext1.setTangent(m.prev.TangentOnS1())
		ext2.setTangent(m.prev.TangentOnS2())
	}
	return
}

// oppositeExtremity is the extremity on the surface opposite to a restriction
// hit at r. If the section has collapsed to a point, it shares the vertex at r.
func (w *Walker) oppositeExtremity(m *march, onFirst bool, r retarget) Extremity {
	p1, p2 := m.prev.PointOnS1(), m.prev.PointOnS2()
	uv := m.prev.ParametersOnS2()
	if onFirst {
		uv = m.prev.ParametersOnS1()
	}
	if r3.Norm(r3.Sub(p1, p2)) <= 2*m.tol3d {
		ext := newExtremity(p1, uv, m.prev.Parameter(), m.tol3d)
		if r.isVtx {
			w.makeSingularExtremity(m, &ext, onFirst, r.vtx)
		}
		return ext
	}
	p := p2
	if onFirst {
		p = p1
	}
	return newExtremity(p, uv, m.prev.Parameter(), m.tol3d)
}

// evalpinit extrapolates the starting guess for m.param along the tangents
// of the previous point. It falls back to the previous point if the guess
// leaves the bounds on a classified surface.
func (w *Walker) evalpinit(m *march, parprec float64, inf, sup []float64) []float64 {
	prev := m.prev.sol()
	parinit := prev[:]
	if m.prev.IsTangencyPoint() {
		return parinit
	}
	step := m.param - parprec
	d1 := m.prev.Tangent2dOnS1().Scaled(step)
	d2 := m.prev.Tangent2dOnS2().Scaled(step)
	guess := []float64{prev[0] + d1.X(), prev[1] + d1.Y(), prev[2] + d2.X(), prev[3] + d2.Y()}
	outside := func(i int) bool {
		return guess[i] < inf[i] || guess[i] > sup[i]
	}
	if w.clasonS1 && (outside(0) || outside(1)) {
		return parinit
	}
	if w.clasonS2 && (outside(2) || outside(3)) {
		return parinit
	}
	return guess
}
