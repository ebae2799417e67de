package walking

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/blendfunc"
	"github.com/npillmayer/blend/guide"
	"github.com/npillmayer/blend/polygon"
	"github.com/npillmayer/blend/surface"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	radius = 2.0
	tol3d  = 1e-6
)

type fixture struct {
	s1, s2 blend.Surface
	d1, d2 *polygon.Domain
	g      blend.Guide
	fn     *blendfunc.ConstRad
	finv   *blendfunc.ConstRadInv
}

func newFixture(t *testing.T, s1, s2 blend.Surface, d1, d2 *polygon.Domain, g blend.Guide, r float64) fixture {
	t.Helper()
	fn, err := blendfunc.NewConstRad(s1, s2, g, r, 1)
	require.NoError(t, err)
	finv, err := blendfunc.NewConstRadInv(s1, s2, g, r, 1)
	require.NoError(t, err)
	return fixture{s1: s1, s2: s2, d1: d1, d2: d2, g: g, fn: fn, finv: finv}
}

// corner is the fillet between the floor z=0, parameterized as (u,v,0) with
// v ≤ floorV, and the wall x=0, parameterized as (0,u,v) with u ≤ 8. The
// section at guide parameter t is (u1,v1,u2,v2) = (radius,t,t,radius).
func corner(t *testing.T, floorV float64) fixture {
	floor := surface.NewPlane(surface.StandardFrame, 0, 10, 0, floorV)
	wall := surface.NewPlane(surface.Frame{X: r3.Vec{Y: 1}, Y: r3.Vec{Z: 1}}, 0, 8, 0, 10)
	g := guide.NewLine(r3.Vec{X: radius, Z: radius}, r3.Vec{Y: 1}, -5, 20)
	d1 := polygon.MustDomain(tol3d, polygon.Box(blend.P(0, 0), blend.P(10, floorV)))
	d2 := polygon.MustDomain(tol3d, polygon.Box(blend.P(0, 0), blend.P(8, 10)))
	return newFixture(t, floor, wall, d1, d2, g, radius)
}

func cornerSection(t float64) []float64 {
	return []float64{radius, t, t, radius}
}

func tolerances(maxStep float64) Tolerances {
	return Tolerances{Tol3d: tol3d, TolGuide: 1e-6, Fleche: 1e-3, MaxStep: maxStep}
}

func (f fixture) walker(opts ...Option) *Walker {
	return New(f.s1, f.s2, f.d1, f.d2, f.g, opts...)
}

func assertIncreasing(t *testing.T, l *Line) {
	t.Helper()
	for i := 1; i < l.NbPoints(); i++ {
		if l.Point(i).Parameter() <= l.Point(i-1).Parameter() {
			t.Errorf("parameters not increasing at #%d: %g ≤ %g", i,
				l.Point(i).Parameter(), l.Point(i-1).Parameter())
		}
	}
}

func TestCornerEndsOnWall(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	l := w.Line()
	assertIncreasing(t, l)
	require.Equal(t, 9, l.NbPoints())
	assert.InDelta(t, 0.5, l.Point(0).Parameter(), 1e-12)
	last := l.Point(l.NbPoints() - 1)
	assert.InDelta(t, 8.0, last.Parameter(), 1e-6)
	assert.InDelta(t, 8.0, last.ParametersOnS2().X(), 1e-6)
	//
	start := l.StartPointOnFirst()
	assert.InDelta(t, 0.5, start.Parameter(), 1e-12)
	assert.True(t, start.HasTangent())
	assert.Equal(t, 0, start.NbPointOnRst())
	//
	end2 := l.EndPointOnSecond()
	require.Equal(t, 1, end2.NbPointOnRst())
	rst := end2.PointOnRst(0)
	assert.Equal(t, 1, rst.Arc)
	assert.InDelta(t, radius, rst.Param, 1e-6)
	assert.Equal(t, blend.TransOut, rst.TransitionOnLine.Type)
	assert.Equal(t, blend.TransIn, rst.TransitionOnArc.Type)
	assert.False(t, end2.IsVertex())
	end1 := l.EndPointOnFirst()
	assert.Equal(t, 0, end1.NbPointOnRst())
	assert.InDelta(t, 8.0, end1.Parameter(), 1e-6)
	//
	tr1, ok := l.TransitionOnS1()
	require.True(t, ok)
	assert.Equal(t, blend.TransIn, tr1)
	tr2, ok := l.TransitionOnS2()
	require.True(t, ok)
	assert.Equal(t, blend.TransOut, tr2)
	assert.False(t, w.TwistOnS1())
	assert.False(t, w.TwistOnS2())
}

func TestCompleteEndsOnBothRestrictions(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	n := w.Line().NbPoints()
	require.NoError(t, w.Complete(f.fn, f.finv, -3))
	l := w.Line()
	assertIncreasing(t, l)
	require.Equal(t, n+1, l.NbPoints())
	assert.InDelta(t, 0.0, l.Point(0).Parameter(), 1e-6)
	s1, s2 := l.StartPointOnFirst(), l.StartPointOnSecond()
	require.Equal(t, 1, s1.NbPointOnRst())
	require.Equal(t, 1, s2.NbPointOnRst())
	assert.Equal(t, 0, s1.PointOnRst(0).Arc)
	assert.InDelta(t, radius, s1.PointOnRst(0).Param, 1e-6)
	assert.Equal(t, 3, s2.PointOnRst(0).Arc)
	assert.InDelta(t, 10-radius, s2.PointOnRst(0).Param, 1e-6)
	// the end is untouched
	assert.Equal(t, 1, l.EndPointOnSecond().NbPointOnRst())
	// completing twice is a no-op
	require.NoError(t, w.Complete(f.fn, f.finv, -3))
	assert.Equal(t, n+1, w.Line().NbPoints())
}

func TestContinueOnRstRollsBack(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	n := w.Line().NbPoints()
	ok, err := w.ContinueOnRst(f.fn, f.finv, 9.5, false)
	require.NoError(t, err)
	assert.False(t, ok)
	l := w.Line()
	assert.Equal(t, n, l.NbPoints())
	assert.InDelta(t, 8.0, l.Point(n-1).Parameter(), 1e-6)
	assert.Equal(t, 1, l.EndPointOnSecond().NbPointOnRst())
	assert.Equal(t, 0, l.EndPointOnFirst().NbPointOnRst())
	// there is no restriction on the first surface to continue along
	ok, err = w.ContinueOnRst(f.fn, f.finv, 9.5, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContinueOnRstReachesFloorBorder(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 9.2)
	w := f.walker()
	w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	n := w.Line().NbPoints()
	ok, err := w.ContinueOnRst(f.fn, f.finv, 9.5, false)
	require.NoError(t, err)
	require.True(t, ok)
	l := w.Line()
	assertIncreasing(t, l)
	assert.Greater(t, l.NbPoints(), n)
	assert.InDelta(t, 9.2, l.Point(l.NbPoints()-1).Parameter(), 1e-6)
	end1 := l.EndPointOnFirst()
	require.Equal(t, 1, end1.NbPointOnRst())
	assert.Equal(t, 2, end1.PointOnRst(0).Arc)
}

func TestEndAtVertex(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	// the wall border u=8 has a knot where the line leaves the wall
	wall := polygon.NullPolygon().Knot(blend.P(0, 0)).Knot(blend.P(8, 0)).Knot(blend.P(8, radius)).
		Knot(blend.P(8, 10)).Knot(blend.P(0, 10)).Cycle()
	f.d2 = polygon.MustDomain(tol3d, wall)
	w := f.walker()
	w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	l := w.Line()
	assert.InDelta(t, 8.0, l.Point(l.NbPoints()-1).Parameter(), 1e-6)
	end2 := l.EndPointOnSecond()
	require.True(t, end2.IsVertex())
	assert.Equal(t, blend.VertexHandle(2), end2.Vertex())
	require.GreaterOrEqual(t, end2.NbPointOnRst(), 1)
	rst := end2.PointOnRst(0)
	assert.Contains(t, []int{1, 2}, rst.Arc)
	uv := f.d2.Arc(rst.Arc).Value(rst.Param)
	assert.InDelta(t, 8.0, uv.X(), 1e-6)
	assert.InDelta(t, radius, uv.Y(), 1e-6)
	assert.Equal(t, blend.On, f.d2.Classify(end2.Parameters(), tol3d))
}

func TestNotDone(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	assert.True(t, errors.Is(w.Continue(f.fn, f.finv, 3), ErrNotDone))
	assert.True(t, errors.Is(w.Complete(f.fn, f.finv, 0), ErrNotDone))
	_, err := w.ContinueOnRst(f.fn, f.finv, 3, true)
	assert.True(t, errors.Is(err, ErrNotDone))
}

func TestMalformedStart(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	w.Perform(f.fn, f.finv, 0.5, 9.5, []float64{radius, 0.5, 0.5}, tolerances(1), true)
	assert.False(t, w.IsDone())
	require.NotNil(t, w.Line())
	assert.Equal(t, 0, w.Line().NbPoints())
	// a start outside of the wall
	w.Perform(f.fn, f.finv, 9, 12, cornerSection(9), tolerances(1), true)
	assert.False(t, w.IsDone())
	assert.Equal(t, 0, w.Line().NbPoints())
}

func TestContinue(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	w.Perform(f.fn, f.finv, 3, 5, cornerSection(3), tolerances(1), false)
	require.True(t, w.IsDone())
	l := w.Line()
	assert.InDelta(t, 5.0, l.Point(l.NbPoints()-1).Parameter(), 1e-9)
	require.NoError(t, w.Continue(f.fn, f.finv, 6.5))
	assert.InDelta(t, 6.5, l.Point(l.NbPoints()-1).Parameter(), 1e-9)
	require.NoError(t, w.Continue(f.fn, f.finv, 1))
	assert.InDelta(t, 1.0, l.Point(0).Parameter(), 1e-9)
	assertIncreasing(t, l)
	for _, p := range l.Points() {
		sol := p.sol()
		assert.InDeltaSlice(t, cornerSection(p.Parameter()), sol[:], 1e-6)
	}
}

func TestPerformFirstSection(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	sol, pos1, pos2, ok := w.PerformFirstSection(f.fn, 3, []float64{1, 1, 1, 1}, tol3d, 1e-6)
	require.True(t, ok)
	assert.Equal(t, blend.In, pos1)
	assert.Equal(t, blend.In, pos2)
	assert.InDeltaSlice(t, cornerSection(3), sol, 1e-6)
	_, pos1, pos2, ok = w.PerformFirstSection(f.fn, 9, []float64{1, 8, 8, 1}, tol3d, 1e-6)
	assert.False(t, ok)
	assert.Equal(t, blend.In, pos1)
	assert.Equal(t, blend.Out, pos2)
}

func TestPerformFirstSectionOnRst(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	w := f.walker()
	psol, parSol, err := w.PerformFirstSectionOnRst(f.fn, f.finv, 7.9, 0.5, cornerSection(7.9),
		tol3d, 1e-6, false, true)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, psol, 1e-6)
	assert.InDeltaSlice(t, cornerSection(8), parSol, 1e-6)
	l := w.Line()
	require.Equal(t, 1, l.EndPointOnSecond().NbPointOnRst())
	assert.Equal(t, 1, l.EndPointOnSecond().PointOnRst(0).Arc)
	// march away from the restriction
	w.Perform(f.fn, f.finv, psol, 0.5, parSol, tolerances(1), false)
	require.True(t, w.IsDone())
	assertIncreasing(t, l)
	assert.InDelta(t, 0.5, l.Point(0).Parameter(), 1e-9)
	assert.InDelta(t, 8.0, l.Point(l.NbPoints()-1).Parameter(), 1e-6)
	assert.Equal(t, 1, l.EndPointOnSecond().NbPointOnRst())
	assert.Equal(t, 0, l.StartPointOnSecond().NbPointOnRst())
	// the floor has no restriction near the start
	_, _, err = w.PerformFirstSectionOnRst(f.fn, f.finv, 5, 6, cornerSection(5), tol3d, 1e-6, false, false)
	assert.True(t, errors.Is(err, ErrFirstSection))
}

func TestObserver(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	var sections []Section
	w := f.walker(WithObserver(func(s Section) {
		sections = append(sections, s)
	}))
	w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	require.GreaterOrEqual(t, len(sections), w.Line().NbPoints()-1)
	lastSection := sections[len(sections)-1]
	assert.Equal(t, blend.OnRst2, lastSection.Status)
	assert.InDelta(t, 8.0, lastSection.Param, 1e-6)
	for _, s := range sections[:len(sections)-1] {
		assert.False(t, s.Status.IsTerminal(), "section at t=%g is %v", s.Param, s.Status)
	}
}

func TestSingularPointsAreSorted(t *testing.T) {
	f := corner(t, 10)
	w := f.walker()
	for _, p := range []float64{5, 1, 3, 3, 9} {
		w.AddSingularPoint(NewPoint(r3.Vec{}, r3.Vec{}, p, blend.Origin, blend.Origin))
	}
	var params []float64
	for _, j := range w.milestones {
		params = append(params, j.Parameter())
	}
	assert.Equal(t, []float64{1, 3, 3, 5, 9}, params)
}

// cylinderFixture is the fillet between the floor z=0 and the outside of a
// quarter cylinder of radius 5 around the z-axis, 0 ≤ u ≤ π/2.
func cylinderFixture(t *testing.T) fixture {
	floor := surface.NewPlane(surface.StandardFrame, -10, 10, -10, 10)
	cyl := surface.NewCylinder(surface.StandardFrame, 5, 0, math.Pi/2, 0, 3)
	g := guide.NewCircle(r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{X: 1}, 6, 0, 3)
	d1 := polygon.MustDomain(tol3d, polygon.Box(blend.P(-10, -10), blend.P(10, 10)))
	d2 := polygon.MustDomain(tol3d, polygon.Box(blend.P(0, 0), blend.P(math.Pi/2, 3)))
	return newFixture(t, floor, cyl, d1, d2, g, 1)
}

func TestCylinderMarch(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := cylinderFixture(t)
	w := f.walker()
	const fleche = 1e-3
	tol := Tolerances{Tol3d: tol3d, TolGuide: 1e-6, Fleche: fleche, MaxStep: 0.2}
	guess := []float64{6*math.Cos(0.2) + 0.01, 6 * math.Sin(0.2), 0.21, 1.01}
	w.Perform(f.fn, f.finv, 0.2, 2.5, guess, tol, true)
	require.True(t, w.IsDone())
	l := w.Line()
	assertIncreasing(t, l)
	require.Greater(t, l.NbPoints(), 10)
	assert.InDelta(t, math.Pi/2, l.Point(l.NbPoints()-1).Parameter(), 1e-5)
	for i, p := range l.Points() {
		f.fn.Set(p.Parameter())
		sol := p.sol()
		assert.True(t, f.fn.IsSolution(sol[:], 1e-5), "point #%d is no solution", i)
		if i == 0 {
			continue
		}
		// sagitta of the chord on the floor, where the line is a circle of radius 6
		mid := r3.Scale(0.5, r3.Add(p.PointOnS1(), l.Point(i-1).PointOnS1()))
		sagitta := 6 - math.Hypot(mid.X, mid.Y)
		assert.LessOrEqual(t, sagitta, 1.2*fleche, "chord #%d", i)
	}
	end2 := l.EndPointOnSecond()
	require.Equal(t, 1, end2.NbPointOnRst())
	assert.Equal(t, 1, end2.PointOnRst(0).Arc)
	assert.InDelta(t, 1.0, end2.PointOnRst(0).Param, 1e-5)
}
