// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import "gonum.org/v1/gonum/mat"

const (
	zero = 0.0
	one  = 1.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

type admMode int

const (
	OK admMode = iota
	// HasSolution problem solved to the requested tolerance.
	HasSolution
	// BadArgument input dimension unacceptable.
	BadArgument
	// KKTRankDefect the regularized KKT system is singular.
	KKTRankDefect
	// ExceedMaxIter max iterations reached without convergence.
	ExceedMaxIter
)

type admSpec struct {
	// the number of variables
	n int
	// the number of constraint rows
	m int
	Problem
}

// admData is the numeric problem data the splitting iterates on.
// Update refreshes it in place between solves.
type admData struct {
	p       *mat.SymDense // n×n
	a       *mat.Dense    // m×n
	q, l, u []float64
	// per-row penalties: equality rows (𝑙ᵢ = 𝑢ᵢ) are weighted 10³·ρ
	rho []float64
}

type admCtx struct {
	// iterates
	x, z, y []float64 // n, m, m
	// relaxed auxiliaries
	xt, zt []float64 // n, m
	// residual buffers
	ax, px, aty []float64 // m, n, n
	// KKT system [[P+σI, Aᵀ],[A, -diag(1/ρ)]]
	kkt      *mat.Dense
	rhs, sol *mat.VecDense // n + m
	lu       mat.LU
	// iteration counter.
	iter int
}
