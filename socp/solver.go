// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package socp

import (
	"math"

	gocvx "github.com/hrautila/cvx"
	"github.com/hrautila/cvx/sets"
	"github.com/hrautila/linalg/blas"
	"github.com/hrautila/matrix"

	"github.com/curioloop/epigraph/cvx"
)

// Exit codes reported by ExitCode.
const (
	ExitUnsolved   = -1 // Solve has not run yet
	ExitOptimal    = 0  // optimality certificate found
	ExitNotOptimal = 1  // terminated without an optimality certificate
	ExitError      = 2  // back end rejected the problem or failed
)

// Solver adapts the canonical SOCP to the cone-LP back end. The
// canonicalizer runs exactly once at construction; every Solve
// re-evaluates the Parameter matrices, flips the signs into the
// G𝐱 + 𝐬 = 𝐡 convention the back end expects and hands over fresh
// numeric data.
type Solver struct {
	form *Form
	opts gocvx.SolverOptions
	dims *sets.DimensionSet

	c, h, b *matrix.FloatMatrix
	g, a    *matrix.FloatMatrix

	sol      *gocvx.Solution
	solveErr error
	solved   bool

	setupCount int
}

// NewSolver canonicalizes the problem and performs the one-time numeric
// setup.
func NewSolver(prob *cvx.Problem) (*Solver, error) {
	form, err := Canonicalize(prob)
	if err != nil {
		return nil, err
	}

	dims := sets.NewDimensionSet("l", "q", "s")
	dims.Set("l", []int{form.NumPositive()})
	if form.NumCones() > 0 {
		dims.Set("q", form.SocDims)
	}

	s := &Solver{form: form, dims: dims}
	s.opts.MaxIter = 100
	s.opts.AbsTol = 1e-8
	s.opts.RelTol = 1e-8
	s.opts.FeasTol = 1e-8
	s.update()
	s.setupCount++
	return s, nil
}

// update re-evaluates the Parameter matrices into the back-end buffers,
// picking up any mutated dynamic-parameter cells.
func (s *Solver) update() {
	f := s.form
	n := f.NumVariables()

	s.c = matrix.FloatVector(cvx.EvalParams(f.C, nil))
	s.h = matrix.FloatVector(cvx.EvalParams(f.H, nil))

	// The signs of A and G flip here: rows are stored as h + Gx >= 0 but
	// the back end wants Gx + s = h.
	gd := make([]float64, f.G.Rows()*n)
	f.G.Each(func(row, col int, p cvx.Parameter) {
		gd[col*f.G.Rows()+row] = -p.Value()
	})
	s.g = matrix.FloatNew(f.G.Rows(), n, gd)

	if f.NumEqualities() > 0 {
		s.b = matrix.FloatVector(cvx.EvalParams(f.B, nil))
		ad := make([]float64, f.A.Rows()*n)
		f.A.Each(func(row, col int, p cvx.Parameter) {
			ad[col*f.A.Rows()+row] = -p.Value()
		})
		s.a = matrix.FloatNew(f.A.Rows(), n, ad)
	}
}

// Solve refreshes the numeric data, invokes the back end and installs the
// primal result into the shared solution storage. It returns false only
// when the back end fails fatally; non-optimal exits are reported through
// ResultString.
func (s *Solver) Solve(verbose bool) bool {
	s.update()
	s.opts.ShowProgress = verbose

	sol, err := gocvx.ConeLp(s.c, s.g, s.h, s.a, s.b, s.dims, &s.opts, nil, nil)
	s.sol, s.solveErr, s.solved = sol, err, true
	if err != nil || sol == nil {
		return false
	}

	x := sol.Result.At("x")[0]
	s.form.Solution().SetAll(x.FloatArray())
	return true
}

// ResultString describes the back end's last exit.
func (s *Solver) ResultString() string {
	switch {
	case !s.solved:
		return "Problem not solved yet."
	case s.solveErr != nil:
		return s.solveErr.Error()
	case s.sol != nil && s.sol.Status == gocvx.Optimal:
		return "Optimal solution found."
	default:
		return "Terminated without optimality certificate."
	}
}

// ExitCode returns the adapter exit classification of the last solve.
func (s *Solver) ExitCode() int {
	switch {
	case !s.solved:
		return ExitUnsolved
	case s.solveErr != nil || s.sol == nil:
		return ExitError
	case s.sol.Status == gocvx.Optimal:
		return ExitOptimal
	default:
		return ExitNotOptimal
	}
}

// Options exposes the back-end settings for reading and writing.
func (s *Solver) Options() *gocvx.SolverOptions {
	return &s.opts
}

// Form returns the canonical form backing this solver.
func (s *Solver) Form() *Form {
	return s.form
}

// IsFeasible checks the current solution against the canonical
// constraints: equality residual within tolerance, positive orthant slack
// above -tolerance and every cone satisfying ‖𝐮‖₂ ≤ 𝑡 + tolerance.
func (s *Solver) IsFeasible(tolerance float64) bool {
	f := s.form
	n := f.NumVariables()
	xd := make([]float64, n)
	for i := range xd {
		xd[i] = f.Solution().At(i)
	}
	x := matrix.FloatVector(xd)

	if f.NumEqualities() > 0 {
		res := s.a.Times(x).Minus(s.b)
		if blas.Nrm2(res).Float() > tolerance {
			return false
		}
	}

	slack := s.h.Minus(s.g.Times(x)).FloatArray()
	pos := f.NumPositive()
	for _, v := range slack[:pos] {
		if v < -tolerance {
			return false
		}
	}
	off := pos
	for _, q := range f.SocDims {
		t := slack[off]
		u := 0.
		for _, v := range slack[off+1 : off+q] {
			u += v * v
		}
		if math.Sqrt(u) > t+tolerance {
			return false
		}
		off += q
	}
	return true
}

// Release unlinks every variable the canonicalizer linked, leaving the
// handles safe to re-link elsewhere.
func (s *Solver) Release() {
	s.form.Release()
}

var _ cvx.Solver = (*Solver)(nil)
