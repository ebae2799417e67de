package guide

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	l := NewLine(r3.Vec{X: 1, Z: 1}, r3.Vec{Y: 2}, 0, 10).WithVertices(4)
	p, d := l.D1(3)
	assert.Equal(t, r3.Vec{X: 1, Y: 3, Z: 1}, p)
	assert.Equal(t, r3.Vec{Y: 1}, d)
	require.Len(t, l.Vertices(), 1)
	assert.Equal(t, r3.Vec{X: 1, Y: 4, Z: 1}, l.Vertices()[0].Location)
	tp, ok := l.Project(r3.Vec{X: 5, Y: 7, Z: -2})
	require.True(t, ok)
	assert.InDelta(t, 7.0, tp, 1e-12)
	tp, _ = l.Project(r3.Vec{Y: 20})
	assert.InDelta(t, 10.0, tp, 1e-12)
	first, last := l.SavedBounds()
	assert.True(t, math.IsInf(first, -1))
	assert.True(t, math.IsInf(last, 1))
}

func TestLineExtended(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	l := NewLine(r3.Vec{}, r3.Vec{X: 1}, 0, 10).Extended(2)
	first, last := l.Bounds()
	assert.Equal(t, -2.0, first)
	assert.Equal(t, 12.0, last)
	first, last = l.SavedBounds()
	assert.Equal(t, 0.0, first)
	assert.Equal(t, 10.0, last)
}

func TestCircle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := NewCircle(r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{X: 1}, 6, 0, 2*math.Pi)
	p, d := c.D1(math.Pi / 2)
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(p, r3.Vec{Y: 6, Z: 1})), 1e-12)
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(d, r3.Vec{X: -6})), 1e-12)
	assert.True(t, c.IsPeriodic())
	tp, ok := c.Project(r3.Vec{X: 0, Y: -3, Z: 5})
	require.True(t, ok)
	assert.InDelta(t, 1.5*math.Pi, tp, 1e-12)
	_, ok = c.Project(r3.Vec{Z: 3})
	assert.False(t, ok)
	c.WithVertices(math.Pi)
	require.Len(t, c.Vertices(), 1)
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(c.Vertices()[0].Direction, r3.Vec{Y: -1})), 1e-12)
}
