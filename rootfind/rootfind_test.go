package rootfind

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// circleLine intersects the unit circle with the line x = y.
type circleLine struct{}

func (circleLine) NbVariables() int { return 2 }
func (circleLine) NbEquations() int { return 2 }

func (circleLine) Value(x, f []float64) bool {
	f[0] = x[0]*x[0] + x[1]*x[1] - 1
	f[1] = x[0] - x[1]
	return true
}

func (circleLine) Derivatives(x []float64, d *mat.Dense) bool {
	d.Set(0, 0, 2*x[0])
	d.Set(0, 1, 2*x[1])
	d.Set(1, 0, 1)
	d.Set(1, 1, -1)
	return true
}

// numeric uses finite differences for a cubic system.
type numeric struct{}

func (numeric) NbVariables() int { return 2 }
func (numeric) NbEquations() int { return 2 }

func (numeric) Value(x, f []float64) bool {
	f[0] = x[0]*x[0]*x[0] - 8
	f[1] = x[0] + x[1] - 5
	return true
}

func (n numeric) Derivatives(x []float64, d *mat.Dense) bool {
	return Jacobian(n.Value, x, d)
}

func TestNewtonCircleLine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := New([]float64{1e-10, 1e-10}, 30)
	s.Perform(circleLine{}, []float64{2, 1}, []float64{-5, -5}, []float64{5, 5})
	require.True(t, s.IsDone())
	r := s.Root()
	assert.InDelta(t, math.Sqrt2/2, r[0], 1e-9)
	assert.InDelta(t, math.Sqrt2/2, r[1], 1e-9)
	assert.Greater(t, s.Iterations(), 1)
}

func TestNewtonStaysInBounds(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := New([]float64{1e-10, 1e-10}, 30)
	// the first Newton step overshoots the box and has to be truncated
	s.Perform(circleLine{}, []float64{0.2, 0.1}, []float64{0, 0}, []float64{1, 1})
	require.True(t, s.IsDone())
	r := s.Root()
	assert.InDelta(t, math.Sqrt2/2, r[0], 1e-9)
	assert.InDelta(t, math.Sqrt2/2, r[1], 1e-9)
}

func TestNewtonNumericJacobian(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := New([]float64{1e-10, 1e-10}, 50)
	s.Perform(numeric{}, []float64{1, 1}, []float64{-10, -10}, []float64{10, 10})
	require.True(t, s.IsDone())
	r := s.Root()
	assert.InDelta(t, 2.0, r[0], 1e-8)
	assert.InDelta(t, 3.0, r[1], 1e-8)
}

func TestNewtonDimensionMismatch(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := New([]float64{1e-10}, 30)
	s.Perform(circleLine{}, []float64{1, 1}, []float64{-5, -5}, []float64{5, 5})
	assert.False(t, s.IsDone())
	assert.Panics(t, func() { s.Root() })
}

func TestSolveLinearSingular(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := mat.NewDense(2, 2, []float64{1, 1, 2, 2})
	x, ok := SolveLinear(a, []float64{2, 4})
	require.True(t, ok)
	// minimum-norm solution of x+y = 2
	assert.InDelta(t, 1.0, x[0], 1e-9)
	assert.InDelta(t, 1.0, x[1], 1e-9)
	_, ok = SolveLinear(mat.NewDense(2, 2, []float64{0, 0, 0, 0}), []float64{1, 1})
	assert.False(t, ok)
}

func TestSolveLinearRegular(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := mat.NewDense(3, 3, []float64{2, 0, 0, 0, 4, 0, 1, 0, 1})
	x, ok := SolveLinear(a, []float64{2, 8, 4})
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, x, 1e-12)
}
