package rootfind

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// rankCondition is the relative singular value below which directions are
// dropped from least-squares solutions.
const rankCondition = 1e-9

// SolveLinear solves a·x = b. Square, well-conditioned systems are solved by
// LU decomposition; all others get the minimum-norm least-squares solution.
// It returns false if a carries no information at all.
func SolveLinear(a *mat.Dense, b []float64) ([]float64, bool) {
	r, c := a.Dims()
	if len(b) != r {
		return nil, false
	}
	bv := mat.NewVecDense(r, b)
	if r == c {
		var x mat.VecDense
		if err := x.SolveVec(a, bv); err == nil {
			return copyVec(&x, c), true
		}
	}
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, false
	}
	rank := svd.Rank(rankCondition)
	if rank == 0 {
		return nil, false
	}
	var x mat.VecDense
	svd.SolveVecTo(&x, bv, rank)
	return copyVec(&x, c), true
}

func copyVec(v *mat.VecDense, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = v.AtVec(i)
	}
	return x
}

// Jacobian approximates the derivatives of f at x by central differences
// and stores them in d. f computes m function values.
func Jacobian(f func(x, fx []float64) bool, x []float64, d *mat.Dense) bool {
	m, n := d.Dims()
	if n != len(x) {
		return false
	}
	xh := make([]float64, n)
	copy(xh, x)
	fp := make([]float64, m)
	fm := make([]float64, m)
	for j := 0; j < n; j++ {
		h := 1e-6 * (1 + math.Abs(x[j]))
		xh[j] = x[j] + h
		if !f(xh, fp) {
			return false
		}
		xh[j] = x[j] - h
		if !f(xh, fm) {
			return false
		}
		xh[j] = x[j]
		for i := 0; i < m; i++ {
			d.Set(i, j, (fp[i]-fm[i])/(2*h))
		}
	}
	return true
}
