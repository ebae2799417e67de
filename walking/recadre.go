package walking

import (
	"math"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/rootfind"
)

// retarget is the outcome of moving a section onto a trimming arc.
type retarget struct {
	ok    bool
	sol   [4]float64 // (w, t, u, v) of the inverse blend function
	arc   int        // index of the arc in the re-targeting domain
	isVtx bool       // the solution is at a vertex of the arc
	vtx   blend.VertexHandle
}

// recadre moves the section sol, which has left the domain of the first
// (onFirst) or second surface, back onto the arc of the domain it crossed,
// by solving the inverse blend function. extrap widens the range of guide
// parameters allowed for the solution.
func (w *Walker) recadre(m *march, finv blend.FuncInv, onFirst bool, sol [4]float64, extrap float64) retarget {
	r := retarget{arc: -1, vtx: blend.NoVertex}
	idx, lastpt2d, pt2d, pmin := w.arcToRecadre(m, onFirst, sol, -1)
	if idx < 0 {
		return r
	}
	dom := w.recdomain(onFirst)
	arc := dom.Arc(idx)
	finv.Set(onFirst, arc)
	inf, sup := finv.GetBounds()
	inf[1] -= extrap
	sup[1] += extrap
	toler := finv.GetTolerance(0.1 * m.tol3d)
	solver := rootfind.New(toler, w.conf.MaxInvIterations)
	for i := range toler {
		toler[i] *= 10
	}
	ufirst, ulast := arc.Bounds()
	if snap := (ulast - ufirst) / 1000; pmin-ufirst < snap {
		pmin = ufirst
	} else if ulast-pmin < snap {
		pmin = ulast
	}
	byinter := w.line.NbPoints() != 0
	lastParam := m.prev.Parameter()

	var solrst [4]float64
	found := false
	if j, ok := w.milestoneBetween(lastParam, m.param); ok && byinter {
		solrst, found = w.seedFromMilestone(m, finv, onFirst, arc, pmin, j)
	}
	if !found {
		if byinter {
			// interpolate between the previous point and the raw solution
			pnt := arc.Value(pmin)
			var p1, p2 blend.Pair
			if onFirst {
				p1, p2 = m.prev.ParametersOnS2(), blend.P(sol[2], sol[3])
			} else {
				p1, p2 = m.prev.ParametersOnS1(), blend.P(sol[0], sol[1])
			}
			lambda := 0.0
			if !pnt.Equal(lastpt2d) {
				d := pnt.Dist(lastpt2d)
				lambda = d / (d + pnt.Dist(pt2d))
			}
			other := p1.Lerp(p2, lambda)
			solrst = [4]float64{pmin, (1-lambda)*lastParam + lambda*m.param, other.X(), other.Y()}
		} else {
			solrst = [4]float64{pmin, m.param, sol[2], sol[3]}
			if !onFirst {
				solrst[2], solrst[3] = sol[0], sol[1]
			}
		}
		solver.Perform(finv, solrst[:], inf, sup)
		if solver.IsDone() {
			copy(solrst[:], solver.Root())
			found = finv.IsSolution(solrst[:], m.tol3d)
		}
		if !found {
			// the section may have crossed the neighbor arc close to an end
			dist := (ulast - ufirst) / 100
			if math.Abs(pmin-ulast) < dist || math.Abs(pmin-ufirst) < dist {
				idx2, _, _, pmin2 := w.arcToRecadre(m, onFirst, sol, idx)
				if idx2 < 0 {
					return r
				}
				idx, arc = idx2, dom.Arc(idx2)
				solrst[0] = pmin2
				finv.Set(onFirst, arc)
				inf, sup = finv.GetBounds()
				solver.Perform(finv, solrst[:], inf, sup)
				if solver.IsDone() {
					copy(solrst[:], solver.Root())
					found = finv.IsSolution(solrst[:], m.tol3d)
				}
			}
		}
	}
	if !found {
		return r
	}
	r.ok, r.sol, r.arc = true, solrst, idx
	ufirst, ulast = arc.Bounds()
	for _, v := range dom.Vertices(idx) {
		vtol := 0.4 * math.Abs(ulast-ufirst)
		if t := math.Max(v.Tol, toler[0]); vtol > t {
			vtol = t
		}
		if math.Abs(v.Param-solrst[0]) <= vtol {
			r.isVtx, r.vtx = true, v.Vertex
			break
		}
	}
	return r
}

// milestoneBetween finds the first milestone strictly between the guide
// parameters t1 and t2, or at t2.
func (w *Walker) milestoneBetween(t1, t2 float64) (int, bool) {
	lo, hi := math.Min(t1, t2), math.Max(t1, t2)
	for i, j := range w.milestones {
		t := j.Parameter()
		if (lo < t && t < hi) || t == t2 {
			return i, true
		}
		if t >= hi {
			break
		}
	}
	return -1, false
}

// seedFromMilestone takes milestone i as the solution of the inverse blend
// function, if it is one.
func (w *Walker) seedFromMilestone(m *march, finv blend.FuncInv, onFirst bool, arc blend.Curve2d,
	pmin float64, i int) (solrst [4]float64, ok bool) {
	//
	j := w.milestones[i]
	onArc, other := j.ParametersOnS1(), j.ParametersOnS2()
	ref := m.prev.ParametersOnS2()
	if !onFirst {
		onArc, other = other, onArc
		ref = m.prev.ParametersOnS1()
	}
	ou, ov := other.X(), other.Y()
	s := w.surface(!onFirst)
	if s.IsUPeriodic() {
		ou = nearestPeriod(ou, ref.X(), s.UPeriod())
	}
	if s.IsVPeriodic() {
		ov = nearestPeriod(ov, ref.Y(), s.VPeriod())
	}
	ufirst, ulast := arc.Bounds()
	prm, dist := ufirst, onArc.Dist(arc.Value(ufirst))
	if d := onArc.Dist(arc.Value(ulast)); d < dist {
		prm, dist = ulast, d
	}
	if !onArc.Equal(arc.Value(prm)) {
		if t, d, ok := project(onArc, arc); ok && d < dist {
			prm = t
		} else {
			prm = pmin
		}
	}
	solrst = [4]float64{prm, j.Parameter(), ou, ov}
	return solrst, finv.IsSolution(solrst[:], m.tol3d)
}

// nearestPeriod shifts x by a period towards ref, if it is more than 0.6
// periods away.
func nearestPeriod(x, ref, period float64) float64 {
	if x-ref > 0.6*period {
		return x - period
	}
	if x-ref < -0.6*period {
		return x + period
	}
	return x
}

// arcToRecadre selects the arc of the re-targeting domain that the section
// sol has crossed coming from m.prev, skipping arc prevIndex. It returns the
// index of the arc (or -1), the parameters of m.prev and of sol on the
// surface, and the parameter of the crossing on the arc.
func (w *Walker) arcToRecadre(m *march, onFirst bool, sol [4]float64, prevIndex int) (index int,
	lastpt2d, pt2d blend.Pair, ponarc float64) {
	//
	index = -1
	byinter := w.line.NbPoints() != 0
	if onFirst {
		if byinter {
			lastpt2d = m.prev.ParametersOnS1()
		}
		pt2d = blend.P(sol[0], sol[1])
	} else {
		if byinter {
			lastpt2d = m.prev.ParametersOnS2()
		}
		pt2d = blend.P(sol[2], sol[3])
	}
	dom := w.recdomain(onFirst)
	distmin := math.Inf(1)
	for i := 0; i < dom.NbArcs(); i++ {
		arc := dom.Arc(i)
		var prm, dist float64
		ok, okinter := false, false
		if byinter {
			prm, dist, ok = inters(pt2d, lastpt2d, arc)
			okinter = ok
		}
		if !ok {
			prm, dist, ok = project(pt2d, arc)
		}
		if ok && i != prevIndex && (dist < distmin || okinter) {
			distmin, ponarc, index = dist, prm, i
			if okinter && prevIndex < 0 {
				break
			}
		}
	}
	return
}

// project finds the point of arc closest to p, considering the foot of the
// perpendicular and both ends of the arc.
func project(p blend.Pair, arc blend.Curve2d) (prm, dist float64, ok bool) {
	first, last := arc.Bounds()
	prm, dist = first, p.Dist(arc.Value(first))
	if d := p.Dist(arc.Value(last)); d < dist {
		prm, dist = last, d
	}
	if t, found := arc.Project(p); found {
		if d := p.Dist(arc.Value(t)); d < dist {
			prm, dist = t, d
		}
	}
	return prm, dist, true
}

// inters intersects the arc with the segment from p1 to p2, slightly
// extended at both ends. Of several crossings it takes the one closest to p2.
func inters(p1, p2 blend.Pair, arc blend.Curve2d) (prm, dist float64, ok bool) {
	mag := p1.Dist(p2)
	if mag < blend.PConfusion {
		return 0, 0, false
	}
	d := (p2 - p1).Scaled(1 / mag)
	a := p1 - d.Scaled(0.01*mag)
	b := p2 + d.Scaled(0.01*mag)
	dist = math.Inf(1)
	for _, t := range arc.IntersectSegment(a, b) {
		q := arc.Value(t)
		along := (q - p1).Dot(d)
		if dd := math.Abs(along - mag); dd < dist {
			prm, dist, ok = t, dd, true
		}
	}
	return
}
