// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/epigraph/admm"
	"github.com/curioloop/epigraph/cvx"
)

// Exit codes reported by ExitCode.
const (
	ExitUnsolved = -1 // Solve has not run yet
	ExitSolved   = 0  // converged to tolerance
	ExitMaxIter  = 1  // iteration limit reached
	ExitError    = 2  // numeric failure in the back end
)

// Solver adapts the canonical QP to the ADMM back end. Canonicalization,
// the convexity check and the first KKT factorization happen once at
// construction; every Solve re-evaluates the Parameter matrices and runs
// the data-update entry point, so mutated dynamic-parameter cells are
// picked up without reformulation.
type Solver struct {
	form *Form
	opt  *admm.Optimizer
	ws   *admm.Workspace

	p       *mat.SymDense
	a       *mat.Dense
	q, l, u []float64

	res      *admm.Result
	solveErr error
	solved   bool

	setupCount int
}

// NewSolver canonicalizes the problem, rejects non-convex costs and
// performs the one-time back-end setup.
func NewSolver(prob *cvx.Problem) (*Solver, error) {
	form, err := Canonicalize(prob)
	if err != nil {
		return nil, err
	}
	if !form.IsConvex() {
		form.Release()
		return nil, cvx.NewError(cvx.SetupFailure, "QP cost matrix is not positive semidefinite")
	}
	if form.NumInequalities() == 0 {
		form.Release()
		return nil, cvx.NewError(cvx.SetupFailure, "QP problems need at least one constraint row")
	}

	s := &Solver{form: form}
	s.update()

	ap := admm.Problem{
		N: form.NumVariables(), M: form.NumInequalities(),
		P: s.p, A: s.a, Q: s.q, L: s.l, U: s.u,
	}
	opt, err := ap.New()
	if err != nil {
		form.Release()
		return nil, cvx.NewError(cvx.SetupFailure, "back end refused the problem: %v", err)
	}
	ws, err := opt.Init()
	if err != nil {
		form.Release()
		return nil, cvx.NewError(cvx.SetupFailure, "back end setup failed: %v", err)
	}

	s.opt, s.ws = opt, ws
	s.setupCount++
	return s, nil
}

// update re-evaluates the Parameter matrices into the numeric buffers.
func (s *Solver) update() {
	f := s.form
	s.p = f.SymEval()
	s.a = f.A.EvalDense()
	s.q = cvx.EvalParams(f.Q, s.q)
	s.l = cvx.EvalParams(f.L, s.l)
	s.u = cvx.EvalParams(f.U, s.u)
}

// Solve refreshes the numeric data, reruns the splitting and installs the
// primal result into the shared solution storage. The verbose flag is
// accepted for interface parity; the back end is silent. Solve returns
// false only on a fatal numeric failure; hitting the iteration limit is
// reported through ResultString.
func (s *Solver) Solve(verbose bool) bool {
	_ = verbose

	s.update()
	if err := s.opt.Update(s.p, s.a, s.q, s.l, s.u, s.ws); err != nil {
		s.res, s.solveErr, s.solved = nil, err, true
		return false
	}

	res := s.opt.Fit(s.ws)
	s.res, s.solveErr, s.solved = res, nil, true

	x := make([]float64, len(res.X))
	copy(x, res.X)
	s.form.Solution().SetAll(x)
	return true
}

// ResultString describes the back end's last exit.
func (s *Solver) ResultString() string {
	switch {
	case !s.solved:
		return "Problem not solved yet."
	case s.solveErr != nil || s.res.Status == admm.KKTRankDefect:
		return "Numerical problems (singular KKT system)."
	case s.res.Status == admm.ExceedMaxIter:
		return "Maximum number of iterations reached."
	default:
		return "Optimal solution found."
	}
}

// ExitCode returns the adapter exit classification of the last solve.
func (s *Solver) ExitCode() int {
	switch {
	case !s.solved:
		return ExitUnsolved
	case s.solveErr != nil || s.res.Status == admm.KKTRankDefect:
		return ExitError
	case s.res.Status == admm.ExceedMaxIter:
		return ExitMaxIter
	default:
		return ExitSolved
	}
}

// Options exposes the back-end settings for reading and writing.
func (s *Solver) Options() *admm.Settings {
	return s.opt.Options()
}

// Result returns the last back-end result, or nil before the first solve.
func (s *Solver) Result() *admm.Result {
	return s.res
}

// Form returns the canonical form backing this solver.
func (s *Solver) Form() *Form {
	return s.form
}

// IsFeasible checks 𝐥 - tol ≤ A𝐱 ≤ 𝐮 + tol at the current solution.
func (s *Solver) IsFeasible(tolerance float64) bool {
	f := s.form
	n := f.NumVariables()
	x := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.SetVec(i, f.Solution().At(i))
	}
	ax := mat.NewVecDense(f.NumInequalities(), nil)
	ax.MulVec(s.a, x)
	for i := 0; i < f.NumInequalities(); i++ {
		if v := ax.AtVec(i); v < s.l[i]-tolerance || v > s.u[i]+tolerance {
			return false
		}
	}
	return true
}

// Release unlinks every variable the canonicalizer linked, leaving the
// handles safe to re-link elsewhere.
func (s *Solver) Release() {
	s.form.Release()
}

var _ cvx.Solver = (*Solver)(nil)
