/*
Package walking marches along the guide curve of a blend and collects the
solutions of a blend function into a Line.

A Walker is set up with two surfaces, their trimming domains and a guide.
Perform starts at a solution for a given guide parameter and extends the
line, step by step, until the guide parameter reaches a bound or the line
leaves one of the domains. Steps are adapted to the curvature of the line:
a candidate point is accepted if the chord to the previous point deviates
little enough from the tangents at both ends. When a candidate falls
outside a domain, the march is re-targeted onto the trimming arc it crossed,
by solving the inverse blend function, and the line ends there with an
extremity carrying the topological transitions of line and arc.

Walkers are not safe for concurrent use. Blend functions cache their last
solution, so every concurrent session needs its own functions.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package walking

import (
	"errors"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'walking'
func tracer() tracing.Trace {
	return tracing.Select("walking")
}

var (
	// ErrNotDone is flagged when continuing a line which has never been
	// performed successfully.
	ErrNotDone = errors.New("marching has not been performed")
	// ErrFirstSection is flagged when a first section cannot be put onto a
	// trimming arc.
	ErrFirstSection = errors.New("first section cannot be anchored on a restriction")
)

// Config holds the empirically tuned thresholds of the marching algorithm.
type Config struct {
	CosRef3D           float64 // min cos² between chord and tangents in space
	CosRef2D           float64 // min cos² between chord and tangents in parameter space
	CosRefGuide        float64 // min cos² between guide tangents of consecutive steps
	SimultaneousFactor float64 // re-targetings closer than this × guide tolerance are simultaneous
	MinStepFactor      float64 // a resumed step is at least this × guide tolerance
	LengthStepRatio    float64 // max parameter jump of a re-targeted step, relative to the bounds
	TolProd            float64 // max sine between guide tangent and section plane normal
	TolAng             float64 // max angle between section planes when correcting extremities
	MaxIterations      int     // Newton iterations for the blend function
	MaxInvIterations   int     // Newton iterations for the inverse blend function
	// FirstSectionExtrapolation is the margin on the guide parameter allowed
	// when putting a first section onto a restriction, relative to the
	// marching range.
	FirstSectionExtrapolation float64
}

// DefaultConfig returns the thresholds which have proved to work for common
// surface types.
func DefaultConfig() Config {
	return Config{
		CosRef3D:                  0.98,
		CosRef2D:                  0.88,
		CosRefGuide:               0.88,
		SimultaneousFactor:        10,
		MinStepFactor:             100,
		LengthStepRatio:           0.05,
		TolProd:                   1e-5,
		TolAng:                    0.001,
		MaxIterations:             30,
		MaxInvIterations:          35,
		FirstSectionExtrapolation: 0.02,
	}
}

// Tolerances control a marching session.
type Tolerances struct {
	Tol3d    float64 // tolerance of points in space
	TolGuide float64 // tolerance of the guide parameter
	Fleche   float64 // max deflection of the line from its chords
	MaxStep  float64 // max step on the guide
}

// Section reports the outcome of a single marching step to an Observer.
type Section struct {
	Param  float64    // guide parameter of the candidate
	Sol    [4]float64 // (u1,v1,u2,v2) of the candidate
	Status blend.Status
}

// Observer is called after every step classification.
type Observer func(Section)

// Option configures a Walker.
type Option func(*Walker)

// WithConfig replaces the default thresholds.
func WithConfig(c Config) Option {
	return func(w *Walker) {
		w.conf = c
	}
}

// WithObserver installs an observer for marching steps.
func WithObserver(o Observer) Option {
	return func(w *Walker) {
		w.observer = o
	}
}
