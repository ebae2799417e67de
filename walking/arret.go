package walking

import (
	"math"

	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// testArret checks the candidate m.sol at m.param and decides whether the
// march can take it. state is the status the candidate has so far. If the
// candidate is accepted, it becomes m.prev.
//
// testDefl switches the deflection tests, testSolu the strict solution test.
// testLengthStep limits the parameter jump of candidates which have not been
// tested for deflection.
func (w *Walker) testArret(m *march, fn blend.Function, state blend.Status,
	testDefl, testSolu, testLengthStep bool) blend.Status {
	//
	tolsolu := m.tol3d
	if !testSolu {
		tolsolu *= 1000
	}
	if !fn.IsSolution(m.sol[:], tolsolu) {
		return blend.StepTooLarge
	}
	isTangent := fn.IsTangencyPoint()
	uv1, uv2 := blend.P(m.sol[0], m.sol[1]), blend.P(m.sol[2], m.sol[3])
	cur := NewPoint(fn.PointOnS1(), fn.PointOnS2(), m.param, uv1, uv2)
	var v1, v2 r3.Vec
	var twist1, twist2 bool
	if !isTangent {
		v1, v2 = fn.TangentOnS1(), fn.TangentOnS2()
		cur = cur.WithTangents(v1, v2, fn.Tangent2dOnS1(), fn.Tangent2dOnS2())
		twist1, twist2 = fn.TwistOnS1(), fn.TwistOnS2()
	}
	state1, state2 := blend.OK, blend.OK
	if testDefl && w.check {
		state1 = w.checkDeflection(m, true, cur)
		state2 = w.checkDeflection(m, false, cur)
	} else if testLengthStep {
		inf, sup := fn.GetBounds()
		prev := m.prev.sol()
		for i := range prev {
			if math.Abs(m.sol[i]-prev[i]) > (sup[i]-inf[i])*w.conf.LengthStepRatio {
				if i < 2 {
					state1 = blend.StepTooLarge
				} else {
					state2 = blend.StepTooLarge
				}
			}
		}
	}
	if state1 == blend.Backward {
		state1 = blend.StepTooLarge
	}
	if state2 == blend.Backward {
		state2 = blend.StepTooLarge
	}
	if state1 == blend.StepTooLarge || state2 == blend.StepTooLarge {
		return blend.StepTooLarge
	}
	w.twistOnS1 = w.twistOnS1 || twist1
	w.twistOnS2 = w.twistOnS2 || twist2
	if !w.comptra && !isTangent {
		w.lineTransitions(m, fn, v1, v2, twist1, twist2)
	}
	if state1 == blend.OK || state2 == blend.OK {
		m.prev = cur
		return state
	}
	if state1 == blend.StepTooSmall && state2 == blend.StepTooSmall {
		m.prev = cur
		if state == blend.OK {
			return blend.StepTooSmall
		}
		return state
	}
	if state == blend.OK {
		return blend.SamePoints
	}
	return state
}

// lineTransitions determines on which side of the boundary of each surface
// the blend lies, from the section tangents at the current solution. v1 and
// v2 are the tangents of the line on both surfaces.
func (w *Walker) lineTransitions(m *march, fn blend.Function, v1, v2 r3.Vec, twist1, twist2 bool) {
	tgp1, tgp2, nor1, nor2 := fn.Tangent(m.sol[0], m.sol[1], m.sol[2], m.sol[3])
	nor1, nor2 = r3.Unit(nor1), r3.Unit(nor2)
	testra := r3.Dot(tgp1, r3.Cross(nor1, v1))
	if math.Abs(testra) <= blend.Confusion {
		return
	}
	tras1 := blend.TransIn
	if (testra > 0) != twist1 {
		tras1 = blend.TransOut
	}
	testra = r3.Dot(tgp2, r3.Cross(nor2, v2))
	if math.Abs(testra) <= blend.Confusion {
		return
	}
	tras2 := blend.TransOut
	if (testra > 0) != twist2 {
		tras2 = blend.TransIn
	}
	w.line.Set(tras1, tras2)
	w.comptra = true
}

// checkDeflection compares the chord from m.prev to cur with the tangents at
// both points, on the first (onFirst) or second surface.
func (w *Walker) checkDeflection(m *march, onFirst bool, cur Point) blend.Status {
	var psurf, prevP, tgsurf, prevTg r3.Vec
	var tolu, tolv float64
	curTangent, prevTangent := cur.IsTangencyPoint(), m.prev.IsTangencyPoint()
	s := w.surface(onFirst)
	if onFirst {
		psurf, prevP = cur.PointOnS1(), m.prev.PointOnS1()
		if !curTangent {
			tgsurf = cur.TangentOnS1()
		}
		if !prevTangent {
			prevTg = m.prev.TangentOnS1()
		}
	} else {
		psurf, prevP = cur.PointOnS2(), m.prev.PointOnS2()
		if !curTangent {
			tgsurf = cur.TangentOnS2()
		}
		if !prevTangent {
			prevTg = m.prev.TangentOnS2()
		}
	}
	tolu, tolv = s.UResolution(m.tol3d), s.VResolution(m.tol3d)

	corde := r3.Sub(psurf, prevP)
	norme := r3.Norm2(corde)
	toler3d := 0.01 * m.tol3d
	if norme <= toler3d*toler3d {
		return blend.SamePoints
	}
	if !prevTangent {
		prevNorme := r3.Norm2(prevTg)
		if prevNorme <= toler3d*toler3d {
			return blend.SamePoints
		}
		cosi := m.sens * r3.Dot(corde, prevTg)
		if cosi < 0 {
			return blend.Backward
		}
		if cosi*cosi/prevNorme/norme < w.conf.CosRef3D {
			return blend.StepTooLarge
		}
	}
	if !curTangent {
		cosi := m.sens * r3.Dot(corde, tgsurf)
		if cosi < 0 || cosi*cosi/r3.Norm2(tgsurf)/norme < w.conf.CosRef3D {
			return blend.StepTooLarge
		}
	}

	if w.check2d {
		var cuv, puv, tg2d, prevTg2d blend.Pair
		if onFirst {
			cuv, puv = cur.ParametersOnS1(), m.prev.ParametersOnS1()
			if !curTangent {
				tg2d = cur.Tangent2dOnS1()
			}
			if !prevTangent {
				prevTg2d = m.prev.Tangent2dOnS1()
			}
		} else {
			cuv, puv = cur.ParametersOnS2(), m.prev.ParametersOnS2()
			if !curTangent {
				tg2d = cur.Tangent2dOnS2()
			}
			if !prevTangent {
				prevTg2d = m.prev.Tangent2dOnS2()
			}
		}
		du, dv := cuv.X()-puv.X(), cuv.Y()-puv.Y()
		if math.Abs(du) < tolu && math.Abs(dv) < tolv {
			return blend.SamePoints
		}
		if !prevTangent {
			if math.Abs(prevTg2d.X()) < tolu && math.Abs(prevTg2d.Y()) < tolv {
				return blend.SamePoints
			}
			if m.sens*(du*prevTg2d.X()+dv*prevTg2d.Y()) < 0 {
				return blend.Backward
			}
		}
		if !curTangent {
			cosi := m.sens * (du*tg2d.X() + dv*tg2d.Y()) / tg2d.Abs()
			if cosi < 0 || cosi*cosi/(du*du+dv*dv) < w.conf.CosRef2D {
				return blend.StepTooLarge
			}
		}
	}

	if !curTangent && !prevTangent {
		// estimate of the deflection of the line from the chord
		d := r3.Sub(r3.Unit(prevTg), r3.Unit(tgsurf))
		fleche := r3.Norm2(d) * norme / 64
		if fleche <= 0.25*m.fleche*m.fleche {
			return blend.StepTooSmall
		}
		if fleche > m.fleche*m.fleche {
			return blend.StepTooLarge
		}
	}
	return blend.OK
}
