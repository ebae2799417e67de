package polygon

import (
	"fmt"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/blend"
)

// Domain is a trimmed parameter domain bounded by closed polygons. Points are
// inside if they are enclosed by an odd number of boundary polygons.
type Domain struct {
	contours []polyclip.Contour
	arcs     []*Segment
	vertices [][]blend.ArcVertex // two per arc: at start and at end
	vtol     float64
}

var _ blend.Domain = (*Domain)(nil)

// NewDomain creates a domain from an outline and holes. vtol is the tolerance
// of the polygon knots as vertices. Arcs are numbered in knot order, outline
// first.
func NewDomain(vtol float64, outline *Polygon, holes ...*Polygon) (*Domain, error) {
	pgs := append([]*Polygon{outline}, holes...)
	for i, pg := range pgs {
		if err := pg.validate(); err != nil {
			return nil, fmt.Errorf("boundary polygon #%d: %w", i, err)
		}
	}
	d := &Domain{vtol: vtol}
	for _, pg := range pgs {
		d.addBoundary(pg)
	}
	tracer().Debugf("domain with %d boundaries and %d arcs", len(d.contours), len(d.arcs))
	return d, nil
}

// MustDomain is like NewDomain, but panics on error.
func MustDomain(vtol float64, outline *Polygon, holes ...*Polygon) *Domain {
	d, err := NewDomain(vtol, outline, holes...)
	if err != nil {
		panic(err)
	}
	return d
}

// addBoundary appends the arcs of a closed polygon. Adjacent arcs share the
// vertex handle of their common knot.
func (d *Domain) addBoundary(pg *Polygon) {
	d.contours = append(d.contours, pg.contour())
	n := pg.N()
	base := len(d.arcs)
	for i := 0; i < n; i++ {
		seg := NewSegment(pg.Pt(i), pg.Pt((i+1)%n))
		d.arcs = append(d.arcs, seg)
		d.vertices = append(d.vertices, []blend.ArcVertex{
			{Vertex: blend.VertexHandle(base + i), Param: 0, Tol: d.vtol},
			{Vertex: blend.VertexHandle(base + (i+1)%n), Param: seg.Length(), Tol: d.vtol},
		})
	}
}

// Subtract cuts holes out of d, using polygon clipping. The arcs of the
// resulting domain follow the clipped contours.
func (d *Domain) Subtract(holes ...*Polygon) (*Domain, error) {
	var clip polyclip.Polygon
	for i, h := range holes {
		if err := h.validate(); err != nil {
			return nil, fmt.Errorf("hole #%d: %w", i, err)
		}
		clip.Add(h.contour())
	}
	subject := polyclip.Polygon(d.contours)
	result := subject.Construct(polyclip.DIFFERENCE, clip)
	if result.NumVertices() == 0 {
		return nil, ErrEmptyDomain
	}
	r := &Domain{vtol: d.vtol}
	for _, c := range result {
		if len(c) < 3 {
			continue
		}
		r.addBoundary(fromContour(c))
	}
	tracer().Debugf("subtracted %d holes, domain has %d arcs", len(holes), len(r.arcs))
	return r, nil
}

// Classify classifies p against the domain. Points closer than tol to the
// boundary are ON it.
func (d *Domain) Classify(p blend.Pair, tol float64) blend.State {
	for _, a := range d.arcs {
		if a.distance(p) <= tol {
			return blend.On
		}
	}
	pt := polyclip.Point{X: p.X(), Y: p.Y()}
	inside := false
	for _, c := range d.contours {
		bb := c.BoundingBox()
		if pt.X < bb.Min.X || pt.X > bb.Max.X || pt.Y < bb.Min.Y || pt.Y > bb.Max.Y {
			continue
		}
		if c.Contains(pt) {
			inside = !inside
		}
	}
	if inside {
		return blend.In
	}
	return blend.Out
}

// NbArcs is the number of trimming arcs.
func (d *Domain) NbArcs() int {
	return len(d.arcs)
}

// Arc returns trimming arc i.
func (d *Domain) Arc(i int) blend.Curve2d {
	return d.arcs[i]
}

// Vertices returns the vertices bounding arc i.
func (d *Domain) Vertices(arc int) []blend.ArcVertex {
	return d.vertices[arc]
}
