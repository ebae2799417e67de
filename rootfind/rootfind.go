/*
Package rootfind solves systems of non-linear equations F(x) = 0.

The solver is a damped Newton iteration which keeps its iterates within
box bounds. Jacobians which are singular or ill-conditioned are handled by
falling back to a least-squares step computed from a singular value
decomposition.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package rootfind

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/mat"
)

// tracer writes to trace with key 'rootfind'
func tracer() tracing.Trace {
	return tracing.Select("rootfind")
}

// ErrDimension is flagged if vectors or matrices do not match the dimension
// of a function set.
var ErrDimension = errors.New("dimension mismatch")

// FunctionSet is a system of equations F(x) = 0.
type FunctionSet interface {
	NbVariables() int
	NbEquations() int
	// Value computes F(x) into f. It returns false if F is not defined at x.
	Value(x, f []float64) bool
	// Derivatives computes the Jacobian of F at x into d, which has
	// NbEquations rows and NbVariables columns.
	Derivatives(x []float64, d *mat.Dense) bool
}

// maxBacktrack is the number of step halvings tried to reduce |F|.
const maxBacktrack = 8

// Solver is a bounded Newton root finder.
type Solver struct {
	tol     []float64 // convergence tolerance per variable
	maxIter int
	done    bool
	root    []float64
	iter    int
}

// New creates a solver. tol holds the convergence tolerance of each variable.
func New(tol []float64, maxIter int) *Solver {
	t := make([]float64, len(tol))
	copy(t, tol)
	return &Solver{tol: t, maxIter: maxIter}
}

// Perform searches a root of f starting at start. Iterates are kept within
// [inf, sup].
func (s *Solver) Perform(f FunctionSet, start, inf, sup []float64) {
	s.done = false
	s.iter = 0
	n, m := f.NbVariables(), f.NbEquations()
	if len(start) != n || len(inf) != n || len(sup) != n || len(s.tol) != n {
		tracer().Errorf("rootfind: %v", fmt.Errorf("%w: %d variables", ErrDimension, n))
		return
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = clamp(start[i], inf[i], sup[i])
	}
	fx := make([]float64, m)
	if !f.Value(x, fx) {
		return
	}
	jac := mat.NewDense(m, n, nil)
	trial := make([]float64, n)
	ftrial := make([]float64, m)
	for s.iter = 1; s.iter <= s.maxIter; s.iter++ {
		if !f.Derivatives(x, jac) {
			return
		}
		rhs := make([]float64, m)
		for i := range fx {
			rhs[i] = -fx[i]
		}
		dx, ok := SolveLinear(jac, rhs)
		if !ok {
			tracer().Debugf("rootfind: no Newton direction in iteration %d", s.iter)
			return
		}
		truncate(x, dx, inf, sup)
		norm := norm2(fx)
		accepted := false
		for k := 0; k <= maxBacktrack; k++ {
			for i := range x {
				trial[i] = clamp(x[i]+dx[i], inf[i], sup[i])
			}
			if f.Value(trial, ftrial) && (norm2(ftrial) <= norm || k == maxBacktrack) {
				accepted = true
				break
			}
			for i := range dx {
				dx[i] /= 2
			}
		}
		if !accepted {
			return
		}
		converged := true
		for i := range x {
			if math.Abs(trial[i]-x[i]) > s.tol[i] {
				converged = false
			}
		}
		copy(x, trial)
		copy(fx, ftrial)
		if converged || norm2(fx) == 0 {
			s.done = true
			s.root = x
			return
		}
	}
	tracer().Debugf("rootfind: no convergence after %d iterations", s.maxIter)
}

// IsDone is true if the last call to Perform found a root.
func (s *Solver) IsDone() bool {
	return s.done
}

// Root returns a copy of the root found. It panics if IsDone is false.
func (s *Solver) Root() []float64 {
	if !s.done {
		panic("rootfind: no root available")
	}
	r := make([]float64, len(s.root))
	copy(r, s.root)
	return r
}

// Iterations returns the number of Newton iterations of the last call to Perform.
func (s *Solver) Iterations() int {
	return s.iter
}

// truncate scales dx such that x+dx does not leave the box [inf, sup] in any
// coordinate where x is still inside.
func truncate(x, dx, inf, sup []float64) {
	scale := 1.0
	for i := range x {
		var room float64
		switch {
		case dx[i] > 0 && x[i] < sup[i]:
			room = sup[i] - x[i]
		case dx[i] < 0 && x[i] > inf[i]:
			room = inf[i] - x[i]
		default:
			continue
		}
		if r := room / dx[i]; r < scale {
			scale = r
		}
	}
	if scale < 1 {
		for i := range dx {
			dx[i] *= scale
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func norm2(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}
