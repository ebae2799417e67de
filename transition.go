package blend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TransitionType tells how a line crosses another one on a surface.
type TransitionType int8

// Transition types. TransIn means the first line enters the region to the
// left of the second one (with respect to the surface normal).
const (
	TransIn TransitionType = iota
	TransOut
	TransTouch
	TransUndecided
)

func (t TransitionType) String() string {
	switch t {
	case TransIn:
		return "in"
	case TransOut:
		return "out"
	case TransTouch:
		return "touch"
	}
	return "undecided"
}

// Transition is the topological transition of a line at a crossing with
// another line, e.g. of a marching line with a trimming arc.
type Transition struct {
	Type     TransitionType
	Opposite bool // only meaningful for TransTouch
}

func (t Transition) String() string {
	if t.Type == TransTouch {
		return fmt.Sprintf("touch[opposite=%v]", t.Opposite)
	}
	return t.Type.String()
}

// transitionTolerance is the minimum normalized triple product for an in/out
// decision.
const transitionTolerance = 0.0001

// MakeTransition computes the transitions of two lines crossing at a point of
// a surface with the given normal. tgFirst and tgSecond are the tangents of the
// lines at the crossing.
func MakeTransition(tgFirst, tgSecond, normal r3.Vec) (first, second Transition) {
	nFirst := r3.Norm(tgFirst)
	nSecond := r3.Norm(tgSecond)
	if nFirst <= Confusion {
		first = Transition{Type: TransUndecided}
		second = Transition{Type: TransUndecided}
		return
	}
	pvect := r3.Cross(tgSecond, tgFirst)
	oppos := r3.Dot(tgFirst, tgSecond) < 0
	touch := Transition{Type: TransTouch, Opposite: oppos}
	if nSecond <= Confusion || r3.Norm(pvect) <= math.Sin(Angular)*nFirst*nSecond {
		return touch, touch
	}
	nNormal := r3.Norm(normal)
	if nNormal <= Resolution {
		return touch, touch
	}
	yu := r3.Dot(pvect, normal) / (nNormal * nFirst * nSecond)
	switch {
	case yu > transitionTolerance:
		first = Transition{Type: TransIn}
		second = Transition{Type: TransOut}
	case yu < -transitionTolerance:
		first = Transition{Type: TransOut}
		second = Transition{Type: TransIn}
	default:
		first, second = touch, touch
	}
	return
}
