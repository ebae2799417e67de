package walking

import "github.com/npillmayer/blend"

// Line is the trace of a marching session: points ordered by increasing guide
// parameter, the extremities at both ends, and the transitions of the line
// relative to the boundaries of both surfaces.
type Line struct {
	points                 []Point
	startS1, startS2       Extremity
	endS1, endS2           Extremity
	transS1, transS2       blend.TransitionType
	hasTransS1, hasTransS2 bool
}

// NewLine creates an empty line.
func NewLine() *Line {
	return &Line{}
}

// NbPoints is the number of points of the line.
func (l *Line) NbPoints() int {
	return len(l.points)
}

// Point returns the i-th point, 0 ≤ i < NbPoints().
func (l *Line) Point(i int) Point {
	return l.points[i]
}

// Points returns a copy of the points.
func (l *Line) Points() []Point {
	pts := make([]Point, len(l.points))
	copy(pts, l.points)
	return pts
}

// Append adds a point at the end of the line.
func (l *Line) Append(p Point) {
	l.points = append(l.points, p)
}

// Prepend adds a point at the start of the line.
func (l *Line) Prepend(p Point) {
	l.points = append(l.points, Point{})
	copy(l.points[1:], l.points)
	l.points[0] = p
}

// Remove deletes the points from index from to index to, both inclusive.
// An empty range is a no-op.
func (l *Line) Remove(from, to int) {
	if from > to || from < 0 || to >= len(l.points) {
		return
	}
	l.points = append(l.points[:from], l.points[to+1:]...)
}

// Clear removes all points and transitions. Extremities are kept.
func (l *Line) Clear() {
	l.points = l.points[:0]
	l.hasTransS1, l.hasTransS2 = false, false
}

// Set records the transitions of the line on both surfaces.
func (l *Line) Set(onS1, onS2 blend.TransitionType) {
	l.transS1, l.transS2 = onS1, onS2
	l.hasTransS1, l.hasTransS2 = true, true
}

// TransitionOnS1 is the transition of the line relative to the boundary of
// the first surface. ok is false as long as it is unknown.
func (l *Line) TransitionOnS1() (t blend.TransitionType, ok bool) {
	return l.transS1, l.hasTransS1
}

// TransitionOnS2 is the transition of the line relative to the boundary of
// the second surface.
func (l *Line) TransitionOnS2() (t blend.TransitionType, ok bool) {
	return l.transS2, l.hasTransS2
}

// SetStartPoints sets the extremities at the start of the line.
func (l *Line) SetStartPoints(onS1, onS2 Extremity) {
	l.startS1, l.startS2 = onS1, onS2
}

// SetEndPoints sets the extremities at the end of the line.
func (l *Line) SetEndPoints(onS1, onS2 Extremity) {
	l.endS1, l.endS2 = onS1, onS2
}

func (l *Line) StartPointOnFirst() Extremity  { return l.startS1 }
func (l *Line) StartPointOnSecond() Extremity { return l.startS2 }
func (l *Line) EndPointOnFirst() Extremity    { return l.endS1 }
func (l *Line) EndPointOnSecond() Extremity   { return l.endS2 }
