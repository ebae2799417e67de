package walking

import (
	"math"
	"testing"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/blendfunc"
	"github.com/npillmayer/blend/polygon"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFirstSectionFallsBackToNeighborArc(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	// The top border of the wall passes just above the line, the slanted
	// border from (9,0) to its corner crosses the line at u = 9-2/2.005.
	// The top border is closest to the section at t=7.95 but cannot carry it.
	wall := polygon.NullPolygon().Knot(blend.P(0, 0)).Knot(blend.P(9, 0)).
		Knot(blend.P(8, 2.005)).Knot(blend.P(0, 2.005)).Cycle()
	f.d2 = polygon.MustDomain(tol3d, wall)
	w := f.walker()
	psol, parSol, err := w.PerformFirstSectionOnRst(f.fn, f.finv, 7.95, 0.5, cornerSection(7.95),
		tol3d, 1e-6, false, true)
	require.NoError(t, err)
	crossing := 9 - radius/2.005
	assert.InDelta(t, crossing, psol, 1e-6)
	assert.InDeltaSlice(t, cornerSection(crossing), parSol, 1e-6)
	end2 := w.Line().EndPointOnSecond()
	require.Equal(t, 1, end2.NbPointOnRst())
	rst := end2.PointOnRst(0)
	assert.Equal(t, 1, rst.Arc)
	uv := f.d2.Arc(rst.Arc).Value(rst.Param)
	assert.InDelta(t, crossing, uv.X(), 1e-6)
	assert.InDelta(t, radius, uv.Y(), 1e-6)
	assert.False(t, end2.IsVertex())
}

func TestRetargetSeededByMilestone(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// the wall is left at t=8, between the steps at 7.5 and 8.5
	milestone := func(t float64, wallU float64) Point {
		return NewPoint(r3.Vec{X: radius, Y: t}, r3.Vec{Y: wallU, Z: radius}, t,
			blend.P(radius, t), blend.P(wallU, radius))
	}
	for _, tc := range []struct {
		name      string
		milestone Point
		end       float64
	}{
		// a solution within tolerance is taken as it is
		{"solution", milestone(8+2e-7, 8), 8 + 2e-7},
		// otherwise the inverse function is solved from an interpolated seed
		{"no solution", milestone(8.2, 8.2), 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := corner(t, 10)
			w := f.walker()
			w.AddSingularPoint(tc.milestone)
			w.Perform(f.fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
			require.True(t, w.IsDone())
			l := w.Line()
			require.Equal(t, 9, l.NbPoints())
			last := l.Point(l.NbPoints() - 1)
			assert.InDelta(t, tc.end, last.Parameter(), 1e-10)
			end2 := l.EndPointOnSecond()
			require.Equal(t, 1, end2.NbPointOnRst())
			assert.Equal(t, 1, end2.PointOnRst(0).Arc)
			assert.InDelta(t, radius, end2.PointOnRst(0).Param, 1e-6)
		})
	}
}

// tangencyAt is a blend function reporting a tangency point at guide
// parameter at. Reading tangents there panics.
type tangencyAt struct {
	*blendfunc.ConstRad
	at, param float64
}

func (f *tangencyAt) Set(param float64) {
	f.param = param
	f.ConstRad.Set(param)
}

func (f *tangencyAt) atTangency() bool { return math.Abs(f.param-f.at) < 1e-9 }

func (f *tangencyAt) IsTangencyPoint() bool {
	return f.atTangency() || f.ConstRad.IsTangencyPoint()
}

func (f *tangencyAt) guard() {
	if f.atTangency() {
		panic("section tangent read at a tangency point")
	}
}

func (f *tangencyAt) TangentOnS1() r3.Vec       { f.guard(); return f.ConstRad.TangentOnS1() }
func (f *tangencyAt) TangentOnS2() r3.Vec       { f.guard(); return f.ConstRad.TangentOnS2() }
func (f *tangencyAt) Tangent2dOnS1() blend.Pair { f.guard(); return f.ConstRad.Tangent2dOnS1() }
func (f *tangencyAt) Tangent2dOnS2() blend.Pair { f.guard(); return f.ConstRad.Tangent2dOnS2() }

func TestPerformThroughTangency(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	fn := &tangencyAt{ConstRad: f.fn, at: 0.5}
	w := f.walker()
	w.Perform(fn, f.finv, 0, 9.5, cornerSection(0), tolerances(0.5), false)
	require.True(t, w.IsDone())
	l := w.Line()
	assertIncreasing(t, l)
	require.Equal(t, 17, l.NbPoints())
	for i, p := range l.Points() {
		assert.Equal(t, i == 1, p.IsTangencyPoint(), "point #%d at t=%g", i, p.Parameter())
	}
	assert.InDelta(t, 0.5, l.Point(1).Parameter(), 1e-12)
	assert.InDelta(t, 8.0, l.Point(l.NbPoints()-1).Parameter(), 1e-6)
	assert.Equal(t, 1, l.EndPointOnSecond().NbPointOnRst())
	tr1, ok := l.TransitionOnS1()
	require.True(t, ok)
	assert.Equal(t, blend.TransIn, tr1)
}

func TestStartAtTangencyAndComplete(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	fn := &tangencyAt{ConstRad: f.fn, at: 0.5}
	w := f.walker()
	w.Perform(fn, f.finv, 0.5, 9.5, cornerSection(0.5), tolerances(1), false)
	require.True(t, w.IsDone())
	l := w.Line()
	require.Equal(t, 9, l.NbPoints())
	assert.True(t, l.Point(0).IsTangencyPoint())
	assert.False(t, l.StartPointOnFirst().HasTangent())
	require.NoError(t, w.Complete(fn, f.finv, -3))
	require.Equal(t, 10, l.NbPoints())
	assert.InDelta(t, 0.0, l.Point(0).Parameter(), 1e-6)
	assert.True(t, l.Point(1).IsTangencyPoint())
	assert.Equal(t, 1, l.StartPointOnFirst().NbPointOnRst())
	assert.Equal(t, 1, l.StartPointOnSecond().NbPointOnRst())
}

func TestStartOutsideUnclassifiedDomain(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := corner(t, 10)
	// the section at t=9 lies beyond the wall border u=8
	w := f.walker()
	w.Perform(f.fn, f.finv, 9, 9.5, cornerSection(9), tolerances(1), true)
	assert.False(t, w.IsDone())
	w = f.walker()
	w.ClassificationOnS2(false)
	w.Perform(f.fn, f.finv, 9, 9.5, cornerSection(9), tolerances(1), true)
	require.True(t, w.IsDone())
	l := w.Line()
	assert.InDelta(t, 9.0, l.Point(0).Parameter(), 1e-12)
	assert.InDelta(t, 9.5, l.Point(l.NbPoints()-1).Parameter(), 1e-12)
}
