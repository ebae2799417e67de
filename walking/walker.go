package walking

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/rootfind"
	"gonum.org/v1/gonum/spatial/r3"
)

// Walker computes the line of a blend between two trimmed surfaces.
type Walker struct {
	s1, s2         blend.Surface
	domain1        blend.Domain
	domain2        blend.Domain
	recdomain1     blend.Domain // domains to re-target onto
	recdomain2     blend.Domain
	guide          blend.Guide
	conf           Config
	observer       Observer
	line           *Line
	milestones     []Point
	clasonS1       bool
	clasonS2       bool
	check2d        bool
	check          bool
	twistOnS1      bool
	twistOnS2      bool
	done           bool
	iscomplete     bool
	comptra        bool // transitions of the line are known
	correctOnRst1  bool
	correctOnRst2  bool
	correctedParam float64
	m              march
}

// march is the state carried from step to step.
type march struct {
	param    float64
	sens     float64 // +1 or -1, direction on the guide
	sol      [4]float64
	prev     Point // last accepted point
	tol3d    float64
	tolGuide float64
	fleche   float64
	maxStep  float64
}

// New creates a walker for surfaces s1 and s2, trimmed by d1 and d2, along
// guide g.
func New(s1, s2 blend.Surface, d1, d2 blend.Domain, g blend.Guide, opts ...Option) *Walker {
	w := &Walker{
		s1:         s1,
		s2:         s2,
		domain1:    d1,
		domain2:    d2,
		recdomain1: d1,
		recdomain2: d2,
		guide:      g,
		conf:       DefaultConfig(),
		clasonS1:   true,
		clasonS2:   true,
		check2d:    true,
		check:      true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetDomainsToRecadre replaces the domains used for re-targeting. By default
// these are the classification domains.
func (w *Walker) SetDomainsToRecadre(rd1, rd2 blend.Domain) {
	w.recdomain1, w.recdomain2 = rd1, rd2
}

// Check2d switches the deflection test in parameter space.
func (w *Walker) Check2d(on bool) { w.check2d = on }

// Check switches the deflection test altogether.
func (w *Walker) Check(on bool) { w.check = on }

// ClassificationOnS1 switches classification of points against the domain
// of the first surface.
func (w *Walker) ClassificationOnS1(on bool) { w.clasonS1 = on }

// ClassificationOnS2 switches classification of points against the domain
// of the second surface.
func (w *Walker) ClassificationOnS2(on bool) { w.clasonS2 = on }

// AddSingularPoint adds a milestone, i.e. a known solution at which
// re-targeting starts instead of solving for one. Milestones are kept sorted
// by guide parameter.
func (w *Walker) AddSingularPoint(p Point) {
	t := p.Parameter()
	i := sort.Search(len(w.milestones), func(i int) bool {
		return w.milestones[i].Parameter() >= t
	})
	w.milestones = append(w.milestones, Point{})
	copy(w.milestones[i+1:], w.milestones[i:])
	w.milestones[i] = p
}

// IsDone is true after a successful Perform.
func (w *Walker) IsDone() bool { return w.done }

// Line returns the line computed so far. It is nil before the first session.
func (w *Walker) Line() *Line { return w.line }

// TwistOnS1 is true if some point of the line has a twisted section on the
// first surface.
func (w *Walker) TwistOnS1() bool { return w.twistOnS1 }

// TwistOnS2 is true if some point of the line has a twisted section on the
// second surface.
func (w *Walker) TwistOnS2() bool { return w.twistOnS2 }

func (w *Walker) surface(onFirst bool) blend.Surface {
	if onFirst {
		return w.s1
	}
	return w.s2
}

func (w *Walker) recdomain(onFirst bool) blend.Domain {
	if onFirst {
		return w.recdomain1
	}
	return w.recdomain2
}

func (w *Walker) notify(m *march, status blend.Status) {
	if w.observer != nil {
		w.observer(Section{Param: m.param, Sol: m.sol, Status: status})
	}
}

// solve runs Newton on fn for the current parameter, starting at start.
func (w *Walker) solve(m *march, fn blend.Function, start []float64) bool {
	fn.Set(m.param)
	inf, sup := fn.GetBounds()
	solver := rootfind.New(fn.GetTolerance(m.tol3d), w.conf.MaxIterations)
	solver.Perform(fn, start, inf, sup)
	if !solver.IsDone() {
		return false
	}
	copy(m.sol[:], solver.Root())
	return true
}

func (w *Walker) startSession(m *march, tol Tolerances, pdep, pmax float64) {
	m.tol3d = math.Abs(tol.Tol3d)
	m.tolGuide = math.Abs(tol.TolGuide)
	m.fleche = math.Abs(tol.Fleche)
	m.maxStep = math.Abs(tol.MaxStep)
	m.sens = 1
	if pmax-pdep < 0 {
		m.sens = -1
	}
	m.param = pdep
}

// Perform computes the line from guide parameter pdep towards pmax. parDep
// is a solution at pdep, or a starting guess for one if appro is set.
// If no valid first point can be found, the walker stays not done and the
// line is empty.
func (w *Walker) Perform(fn blend.Function, finv blend.FuncInv, pdep, pmax float64,
	parDep []float64, tol Tolerances, appro bool) {
	//
	w.done, w.iscomplete, w.comptra = false, false, false
	doExtremities := true
	if w.line == nil {
		w.line = NewLine()
	} else {
		w.line.Clear()
		doExtremities = false
	}
	m := &w.m
	w.startSession(m, tol, pdep, pmax)
	fn.Set(m.param)
	if len(parDep) != 4 {
		tracer().Errorf("walking: starting solution needs 4 values, has %d", len(parDep))
		return
	}
	if appro {
		if !w.solve(m, fn, parDep) {
			tracer().Debugf("walking: no first section at t=%g", pdep)
			return
		}
		ftol := fn.GetTolerance(m.tol3d)
		situ1, situ2 := blend.In, blend.In
		if w.clasonS1 {
			situ1 = w.domain1.Classify(blend.P(m.sol[0], m.sol[1]), math.Min(ftol[0], ftol[1]))
		}
		if w.clasonS2 {
			situ2 = w.domain2.Classify(blend.P(m.sol[2], m.sol[3]), math.Min(ftol[2], ftol[3]))
		}
		if situ1 != blend.In || situ2 != blend.In {
			tracer().Debugf("walking: first section at t=%g is %v/%v", pdep, situ1, situ2)
			return
		}
	} else {
		copy(m.sol[:], parDep)
	}
	if state := w.testArret(m, fn, blend.OK, false, true, false); state != blend.OK {
		tracer().Debugf("walking: first section at t=%g rejected: %v", pdep, state)
		return
	}
	if w.correctOnRst1 || w.correctOnRst2 {
		m.prev = m.prev.WithParameter(w.correctedParam)
		w.correctOnRst1, w.correctOnRst2 = false, false
	}
	w.line.Append(m.prev)
	if doExtremities {
		ext1 := newExtremity(m.prev.PointOnS1(), m.prev.ParametersOnS1(), m.prev.Parameter(), m.tol3d)
		ext2 := newExtremity(m.prev.PointOnS2(), m.prev.ParametersOnS2(), m.prev.Parameter(), m.tol3d)
		if !m.prev.IsTangencyPoint() {
			ext1.setTangent(m.prev.TangentOnS1())
			ext2.setTangent(m.prev.TangentOnS2())
		}
		w.setExtremities(m, ext1, ext2, true)
	}
	w.internalPerform(m, fn, finv, pmax)
	w.done = true
}

// setExtremities stores extremities at the end of the line the march departs
// from (atStart) or at the end it arrives at.
func (w *Walker) setExtremities(m *march, ext1, ext2 Extremity, atStart bool) {
	if (m.sens > 0) == atStart {
		w.line.SetStartPoints(ext1, ext2)
	} else {
		w.line.SetEndPoints(ext1, ext2)
	}
}

// PerformFirstSection solves for the section at pdep, starting at parDep.
// It reports the classification of the solution in both domains, and ok only
// if the solution is inside both.
func (w *Walker) PerformFirstSection(fn blend.Function, pdep float64, parDep []float64,
	tol3d, tolGuide float64) (sol []float64, pos1, pos2 blend.State, ok bool) {
	//
	w.iscomplete, w.comptra = false, false
	w.correctOnRst1, w.correctOnRst2 = false, false
	w.line = NewLine()
	m := &w.m
	m.tol3d, m.tolGuide = math.Abs(tol3d), math.Abs(tolGuide)
	m.param = pdep
	pos1, pos2 = blend.Unknown, blend.Unknown
	if len(parDep) != 4 || !w.solve(m, fn, parDep) {
		return parDep, pos1, pos2, false
	}
	sol = make([]float64, 4)
	copy(sol, m.sol[:])
	tol := fn.GetTolerance(m.tol3d)
	pos1 = w.domain1.Classify(blend.P(sol[0], sol[1]), math.Min(tol[0], tol[1]))
	pos2 = w.domain2.Classify(blend.P(sol[2], sol[3]), math.Min(tol[2], tol[3]))
	if pos1 != blend.In || pos2 != blend.In {
		return sol, pos1, pos2, false
	}
	w.testArret(m, fn, blend.OK, false, true, false)
	return sol, pos1, pos2, true
}

// PerformFirstSectionOnRst solves for the section at pdep and moves it onto
// a trimming arc of the first (recOnS1) and/or second (recOnS2) surface,
// towards pmax. It returns the guide parameter and the surface parameters of
// the re-targeted section, and makes it the extremity of a new line.
func (w *Walker) PerformFirstSectionOnRst(fn blend.Function, finv blend.FuncInv, pdep, pmax float64,
	parDep []float64, tol3d, tolGuide float64, recOnS1, recOnS2 bool) (psol float64, parSol []float64, err error) {
	//
	w.iscomplete, w.comptra = false, false
	w.correctOnRst1, w.correctOnRst2 = false, false
	w.line = NewLine()
	m := &w.m
	w.startSession(m, Tolerances{Tol3d: tol3d, TolGuide: tolGuide}, pdep, pmax)
	extrapol := math.Abs(pmax-pdep) * w.conf.FirstSectionExtrapolation
	if len(parDep) != 4 || !w.solve(m, fn, parDep) {
		return pdep, nil, fmt.Errorf("%w: no section at t=%g", ErrFirstSection, pdep)
	}
	w1, w2 := pmax, pmax
	var r1, r2 retarget
	if recOnS1 {
		if r1 = w.recadre(m, finv, true, m.sol, extrapol); r1.ok {
			w1 = r1.sol[1]
		}
	}
	if recOnS2 {
		if r2 = w.recadre(m, finv, false, m.sol, extrapol); r2.ok {
			w2 = r2.sol[1]
		}
	}
	if !r1.ok && !r2.ok {
		return pdep, nil, fmt.Errorf("%w: no restriction near t=%g", ErrFirstSection, pdep)
	}
	parSol = make([]float64, 4)
	var state blend.Status
	var corrUV blend.Pair
	var corrPnt r3.Vec
	switch {
	case r1.ok && r2.ok && math.Abs(w1-w2) <= m.tolGuide:
		state = blend.OnRst12
		m.param = w1
		parSol[0], parSol[1] = r2.sol[2], r2.sol[3]
		parSol[2], parSol[3] = r1.sol[2], r1.sol[3]
	case r1.ok && (!r2.ok || m.sens*(w2-w1) < 0):
		state = blend.OnRst1
		m.param = w1
		p := w.recdomain1.Arc(r1.arc).Value(r1.sol[0])
		parSol[0], parSol[1] = p.X(), p.Y()
		parSol[2], parSol[3] = r1.sol[2], r1.sol[3]
		if !r2.ok {
			c, ok := w.correctExtremityOnOneRst(m, true, r1.arc, parSol[2], parSol[3], m.param, w.s1.Value(p.X(), p.Y()))
			if ok {
				w.correctOnRst1 = true
				w.correctedParam = c.param
				corrUV, corrPnt = c.uv, c.pnt
			}
		}
	default:
		state = blend.OnRst2
		m.param = w2
		p := w.recdomain2.Arc(r2.arc).Value(r2.sol[0])
		parSol[0], parSol[1] = r2.sol[2], r2.sol[3]
		parSol[2], parSol[3] = p.X(), p.Y()
		if !r1.ok {
			c, ok := w.correctExtremityOnOneRst(m, false, r2.arc, parSol[0], parSol[1], m.param, w.s2.Value(p.X(), p.Y()))
			if ok {
				w.correctOnRst2 = true
				w.correctedParam = c.param
				corrUV, corrPnt = c.uv, c.pnt
			}
		}
	}
	psol = m.param
	copy(m.sol[:], parSol)
	fn.Set(m.param)
	state = w.testArret(m, fn, state, false, true, false)
	var ext1, ext2 Extremity
	switch state {
	case blend.OnRst1:
		ext1 = w.makeExtremity(m, true, r1)
		if w.correctOnRst1 {
			ext2 = newExtremity(corrPnt, corrUV, w.correctedParam, m.tol3d)
		} else {
			ext2 = newExtremity(m.prev.PointOnS2(), m.prev.ParametersOnS2(), m.prev.Parameter(), m.tol3d)
		}
	case blend.OnRst2:
		if w.correctOnRst2 {
			ext1 = newExtremity(corrPnt, corrUV, w.correctedParam, m.tol3d)
		} else {
			ext1 = newExtremity(m.prev.PointOnS1(), m.prev.ParametersOnS1(), m.prev.Parameter(), m.tol3d)
		}
		ext2 = w.makeExtremity(m, false, r2)
	case blend.OnRst12:
		ext1 = w.makeExtremity(m, true, r1)
		ext2 = w.makeExtremity(m, false, r2)
	default:
		return psol, parSol, fmt.Errorf("%w: section at t=%g is %v", ErrFirstSection, psol, state)
	}
	w.setExtremities(m, ext1, ext2, true)
	return psol, parSol, nil
}

// resume prepares marching from an existing point of the line.
func (w *Walker) resume(m *march, from Point) {
	m.prev = from
	m.param = from.Parameter()
	m.sol = from.sol()
}

// Continue extends a performed line up to guide parameter p, at the end
// beyond which p lies.
func (w *Walker) Continue(fn blend.Function, finv blend.FuncInv, p float64) error {
	if !w.done {
		return ErrNotDone
	}
	m := &w.m
	first, last := w.line.Point(0), w.line.Point(w.line.NbPoints()-1)
	if p < first.Parameter() {
		m.sens = -1
		m.prev = first
	} else if p > last.Parameter() {
		m.sens = 1
		m.prev = last
	}
	w.resume(m, m.prev)
	w.internalPerform(m, fn, finv, p)
	return nil
}

// ContinueOnRst extends a performed line along a trimming arc of the first
// (onS1) or second surface, up to guide parameter p. The extension is kept
// only if it ends on a trimming arc of the opposite surface; otherwise the
// line is restored and ContinueOnRst returns false.
func (w *Walker) ContinueOnRst(fn blend.Function, finv blend.FuncInv, p float64, onS1 bool) (bool, error) {
	if !w.done {
		return false, ErrNotDone
	}
	m := &w.m
	var ext1, ext2 Extremity
	if m.sens < 0 {
		ext1, ext2 = w.line.StartPointOnFirst(), w.line.StartPointOnSecond()
		m.prev = w.line.Point(0)
	} else {
		ext1, ext2 = w.line.EndPointOnFirst(), w.line.EndPointOnSecond()
		m.prev = w.line.Point(w.line.NbPoints() - 1)
	}
	if (onS1 && ext1.NbPointOnRst() == 0) || (!onS1 && ext2.NbPointOnRst() == 0) {
		return false, nil
	}
	length := w.line.NbPoints()
	w.resume(m, m.prev)
	clas1, clas2 := w.clasonS1, w.clasonS2
	if onS1 {
		w.clasonS1 = false
	} else {
		w.clasonS2 = false
	}
	w.internalPerform(m, fn, finv, p)
	w.clasonS1, w.clasonS2 = clas1, clas2
	added := w.line.NbPoints() - length
	var opposite Extremity
	if m.sens < 0 {
		opposite = w.line.StartPointOnFirst()
		if onS1 {
			opposite = w.line.StartPointOnSecond()
		}
	} else {
		opposite = w.line.EndPointOnFirst()
		if onS1 {
			opposite = w.line.EndPointOnSecond()
		}
	}
	if opposite.NbPointOnRst() > 0 {
		return true, nil
	}
	tracer().Debugf("walking: continuation on restriction did not reach the other surface, rolling back %d points", added)
	if m.sens < 0 {
		w.line.Remove(0, added-1)
		w.line.SetStartPoints(ext1, ext2)
	} else {
		w.line.Remove(length, length+added-1)
		w.line.SetEndPoints(ext1, ext2)
	}
	return false, nil
}

// Complete extends a performed line in the opposite direction, down to guide
// parameter pmin.
func (w *Walker) Complete(fn blend.Function, finv blend.FuncInv, pmin float64) error {
	if !w.done {
		return ErrNotDone
	}
	if w.iscomplete {
		return nil
	}
	m := &w.m
	if m.sens > 0 {
		w.resume(m, w.line.Point(0))
	} else {
		w.resume(m, w.line.Point(w.line.NbPoints()-1))
	}
	m.sens = -m.sens
	w.internalPerform(m, fn, finv, pmin)
	w.iscomplete = true
	return nil
}
