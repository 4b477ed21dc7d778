// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package admm implements an operator-splitting solver for convex
// quadratic programs of the form
//
//	min ½𝐱ᵀP𝐱 + 𝐪ᵀ𝐱  s.t.  𝐥 ≤ A𝐱 ≤ 𝐮
//
// with P positive semidefinite. One-sided rows use ±Inf bounds and
// equality rows state 𝑙ᵢ = 𝑢ᵢ.
package admm

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Settings specifies the splitting parameters and stopping criteria.
// Zero values select the defaults.
type Settings struct {
	// The penalty parameter ρ > 0.
	Rho float64
	// The regularization parameter σ > 0.
	Sigma float64
	// The relaxation parameter, 0 < α < 2.
	Alpha float64
	// The iteration stops when both residuals satisfy
	// ‖𝐫‖∞ ≤ 𝚎𝚙𝚜_𝚊𝚋𝚜 + 𝚎𝚙𝚜_𝚛𝚎𝚕·scale.
	EpsAbs, EpsRel float64
	// The iteration stops when the number of iterations reaches limit.
	MaxIterations int
	// Residuals are checked every CheckInterval iterations.
	CheckInterval int
}

// Problem specifies the problem for the ADMM optimizer.
type Problem struct {
	N, M int           // dimensions: variables and constraint rows
	P    *mat.SymDense // quadratic cost, n×n
	A    *mat.Dense    // constraint matrix, m×n
	Q    []float64     // linear cost, n
	L, U []float64     // row bounds, m; ±Inf for one-sided rows
	Settings
}

// New creates a new ADMM optimizer for the given problem.
func (p *Problem) New() (optimizer *Optimizer, err error) {

	n, m := p.N, p.M
	set := p.Settings

	if set.Rho == zero {
		set.Rho = 0.1
	}
	if set.Sigma == zero {
		set.Sigma = 1e-6
	}
	if set.Alpha == zero {
		set.Alpha = 1.6
	}
	if set.EpsAbs == zero {
		set.EpsAbs = 1e-8
	}
	if set.EpsRel == zero {
		set.EpsRel = 1e-8
	}
	if set.MaxIterations == 0 {
		set.MaxIterations = 200000
	}
	if set.CheckInterval == 0 {
		set.CheckInterval = 25
	}

	switch {
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case m <= 0:
		err = errors.New("constraint number must greater than 0")
	case p.P == nil || p.A == nil:
		err = errors.New("cost and constraint matrices are required")
	case len(p.Q) != n || len(p.L) != m || len(p.U) != m:
		err = errors.New("vector size must match dimensions")
	case set.Rho < zero || set.Sigma < zero:
		err = errors.New("penalty parameters must not less than 0")
	case set.Alpha <= zero || set.Alpha >= 2:
		err = errors.New("relaxation parameter must lie in (0, 2)")
	case set.EpsAbs < zero || set.EpsRel < zero:
		err = errors.New("tolerance must not less than 0")
	case set.MaxIterations < 0:
		err = errors.New("max iteration must not less than 0")
	}
	if err != nil {
		return
	}

	if p.P.SymmetricDim() != n {
		err = errors.New("cost matrix size must equal to n")
		return
	}
	if r, c := p.A.Dims(); r != m || c != n {
		err = errors.New("constraint matrix size must be m by n")
		return
	}

	for k := 0; k < m; k++ {
		l, u := p.L[k], p.U[k]
		if math.IsNaN(l) || math.IsNaN(u) || l > u {
			err = errors.New(fmt.Sprintf("bound error at %d", k))
			return
		}
	}

	data := &admData{
		p:   mat.NewSymDense(n, nil),
		a:   mat.NewDense(m, n, nil),
		q:   slices.Clone(p.Q),
		l:   slices.Clone(p.L),
		u:   slices.Clone(p.U),
		rho: make([]float64, m),
	}
	data.p.CopySym(p.P)
	data.a.Copy(p.A)
	fillRho(data, set.Rho)

	optimizer = &Optimizer{
		admSpec: admSpec{
			n: n, m: m,
			Problem: Problem{
				N: n, M: m,
				Settings: set,
			},
		},
		data: data,
	}
	return
}

// fillRho weights equality rows (𝑙ᵢ = 𝑢ᵢ) three orders of magnitude above
// the inequality penalty so they are enforced tightly.
func fillRho(data *admData, rho float64) {
	for i := range data.rho {
		if data.l[i] == data.u[i] {
			data.rho[i] = rho * 1e3
		} else {
			data.rho[i] = rho
		}
	}
}

// Optimizer implemented using the OSQP operator splitting.
type Optimizer struct {
	admSpec
	data *admData
}

// Options exposes the splitting settings for reading and writing.
// Tolerance and iteration limits take effect on the next Fit; penalty
// parameters take effect on the next Update.
func (o *Optimizer) Options() *Settings {
	return &o.Settings
}

// Workspace contains the state and context of the optimization process.
// Iterates persist across Fit calls, so a second solve warm-starts from
// the previous solution. Separate workspaces must be created for each
// goroutine, but multiple workspaces could share one optimizer spec.
type Workspace struct {
	n, m int
	admCtx
}

// Result contains the final result of the optimization process.
type Result struct {
	OK      bool      // Whether the optimization converged.
	Obj     float64   // Final objective value.
	X, Y    []float64 // Final primal solution and dual multipliers.
	Summary           // Optimization summary.
}

// Summary contains a summary of the optimization process.
type Summary struct {
	Status  admMode // Final status after optimization.
	NumIter int     // Number of iterations performed.
}

// Init allocates a workspace and factorizes the KKT system for the
// current data.
func (o *Optimizer) Init() (*Workspace, error) {
	w := new(Workspace)
	w.n, w.m = o.n, o.m

	n, m := o.n, o.m
	w.admCtx = admCtx{
		x: make([]float64, n), z: make([]float64, m), y: make([]float64, m),
		xt: make([]float64, n), zt: make([]float64, m),
		ax: make([]float64, m), px: make([]float64, n), aty: make([]float64, n),
		kkt: mat.NewDense(n+m, n+m, nil),
		rhs: mat.NewVecDense(n+m, nil),
		sol: mat.NewVecDense(n+m, nil),
	}

	if err := o.factorize(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Update refreshes the numeric problem data in place and refactorizes the
// workspace KKT system. The sparsity structure is fixed at New; only
// values change between solves.
func (o *Optimizer) Update(p *mat.SymDense, a *mat.Dense, q, l, u []float64, w *Workspace) error {

	if w.n != o.n || w.m != o.m {
		panic("workspace dimension not match spec")
	}
	if len(q) != o.n || len(l) != o.m || len(u) != o.m {
		panic("vector dimension not match spec")
	}

	d := o.data
	d.p.CopySym(p)
	d.a.Copy(a)
	copy(d.q, q)
	copy(d.l, l)
	copy(d.u, u)
	fillRho(d, o.Settings.Rho)

	return o.factorize(w)
}

// factorize assembles [[P+σI, Aᵀ],[A, -diag(1/ρ)]] and computes its LU
// decomposition.
func (o *Optimizer) factorize(w *Workspace) error {
	n, m, d := o.n, o.m, o.data
	sigma := o.Settings.Sigma

	kkt := w.kkt
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := d.p.At(i, j)
			if i == j {
				v += sigma
			}
			kkt.Set(i, j, v)
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := d.a.At(i, j)
			kkt.Set(n+i, j, v)
			kkt.Set(j, n+i, v)
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i == j {
				kkt.Set(n+i, n+j, -one/d.rho[i])
			} else {
				kkt.Set(n+i, n+j, zero)
			}
		}
	}

	w.lu.Factorize(kkt)
	if w.lu.Cond() > one/eps {
		return errors.New("kkt system is numerically singular")
	}
	return nil
}
