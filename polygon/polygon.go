/*
Package polygon implements polygonal trimming domains in the parameter plane
of a surface.

A domain is bounded by one or more closed polygons (an outline and possibly
holes). Every polygon edge is a trimming arc, and every polygon knot is a
vertex shared by the two arcs meeting there. Domains satisfy blend.Domain.

Clients build polygons with a builder:

	pg := NullPolygon().Knot(P(0,0)).Knot(P(4,0)).Knot(P(2,3)).Cycle()

and combine them into domains, possibly subtracting holes with polygon
clipping.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package polygon

import (
	"errors"
	"fmt"
	"strings"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/blend"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'polygon'
func tracer() tracing.Trace {
	return tracing.Select("polygon")
}

var (
	// ErrTooFewKnots indicates a polygon with less than 3 knots.
	ErrTooFewKnots = errors.New("polygon has too few knots")
	// ErrOpenPolygon indicates a polygon which has not been closed by Cycle().
	ErrOpenPolygon = errors.New("polygon is not cyclic")
	// ErrDegenerateEdge indicates two consecutive knots collapsing to one point.
	ErrDegenerateEdge = errors.New("polygon has degenerate edge")
	// ErrEmptyDomain indicates a clipping operation which left nothing over.
	ErrEmptyDomain = errors.New("domain is empty")
)

// Polygon is a sequence of knots in the parameter plane. To construct a
// polygon, start with NullPolygon() and extend it.
type Polygon struct {
	knots []blend.Pair
	cycle bool
}

// NullPolygon creates an empty polygon.
func NullPolygon() *Polygon {
	return &Polygon{knots: make([]blend.Pair, 0, 4)}
}

// Knot appends a knot to the polygon.
func (pg *Polygon) Knot(p blend.Pair) *Polygon {
	pg.knots = append(pg.knots, p)
	return pg
}

// Cycle closes the polygon.
func (pg *Polygon) Cycle() *Polygon {
	pg.cycle = true
	return pg
}

// N is the number of knots of the polygon.
func (pg *Polygon) N() int {
	return len(pg.knots)
}

// Pt returns knot i.
func (pg *Polygon) Pt(i int) blend.Pair {
	return pg.knots[i]
}

// IsCycle is true if the polygon has been closed.
func (pg *Polygon) IsCycle() bool {
	return pg.cycle
}

// Box creates a closed rectangle from two opposite corners. The knots are
// ordered counter-clockwise, starting at the lower left corner.
func Box(a, b blend.Pair) *Polygon {
	xmin, xmax := minmax(a.X(), b.X())
	ymin, ymax := minmax(a.Y(), b.Y())
	return NullPolygon().Knot(blend.P(xmin, ymin)).Knot(blend.P(xmax, ymin)).
		Knot(blend.P(xmax, ymax)).Knot(blend.P(xmin, ymax)).Cycle()
}

// AsString returns a polygon in MetaPost-like notation.
func AsString(pg *Polygon) string {
	var sb strings.Builder
	for i, k := range pg.knots {
		if i > 0 {
			sb.WriteString("--")
		}
		sb.WriteString(k.String())
	}
	if pg.cycle {
		sb.WriteString("--cycle")
	}
	return sb.String()
}

// validate checks the preconditions for using pg as a domain boundary.
func (pg *Polygon) validate() error {
	if pg == nil || len(pg.knots) < 3 {
		return ErrTooFewKnots
	}
	if !pg.cycle {
		return fmt.Errorf("%w: %s", ErrOpenPolygon, AsString(pg))
	}
	for i, k := range pg.knots {
		next := pg.knots[(i+1)%len(pg.knots)]
		if k.Dist(next) <= blend.PConfusion {
			return fmt.Errorf("%w: knots %d and %d", ErrDegenerateEdge, i, (i+1)%len(pg.knots))
		}
	}
	return nil
}

func (pg *Polygon) contour() polyclip.Contour {
	c := make(polyclip.Contour, 0, len(pg.knots))
	for _, k := range pg.knots {
		c.Add(polyclip.Point{X: k.X(), Y: k.Y()})
	}
	return c
}

func fromContour(c polyclip.Contour) *Polygon {
	pg := NullPolygon()
	for _, pt := range c {
		pg.Knot(blend.P(pt.X, pt.Y))
	}
	return pg.Cycle()
}

func minmax(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
