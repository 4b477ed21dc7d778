// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Fit runs the splitting iteration in workspace w until both residuals
// fall below tolerance or the iteration limit is hit. The workspace
// iterates carry over, so a subsequent Fit warm-starts from the last
// solution.
func (o *Optimizer) Fit(w *Workspace) *Result {

	if w.n != o.n || w.m != o.m {
		panic("workspace dimension not match spec")
	}

	status := o.mainLoop(w)

	x := make([]float64, o.n)
	y := make([]float64, o.m)
	copy(x, w.x)
	copy(y, w.y)

	return &Result{
		OK:  status == OK || status == HasSolution,
		Obj: o.objective(w),
		X:   x, Y: y,
		Summary: Summary{
			Status:  status,
			NumIter: w.iter,
		},
	}
}

func (o *Optimizer) objective(w *Workspace) float64 {
	n, d := o.n, o.data
	xv := mat.NewVecDense(n, w.x)
	pxv := mat.NewVecDense(n, w.px)
	pxv.MulVec(d.p, xv)
	return 0.5*floats.Dot(w.px, w.x) + floats.Dot(d.q, w.x)
}

func (o *Optimizer) mainLoop(w *Workspace) admMode {

	n, m, d := o.n, o.m, o.data
	set := o.Settings
	alpha := set.Alpha

	w.iter = 0
	for w.iter < set.MaxIterations {
		w.iter++

		// KKT right-hand side: (σ𝐱 - 𝐪, 𝐳 - 𝐲/ρ)
		for i := 0; i < n; i++ {
			w.rhs.SetVec(i, set.Sigma*w.x[i]-d.q[i])
		}
		for i := 0; i < m; i++ {
			w.rhs.SetVec(n+i, w.z[i]-w.y[i]/d.rho[i])
		}

		if err := w.lu.SolveVecTo(w.sol, false, w.rhs); err != nil {
			return KKTRankDefect
		}
		for i := 0; i < n; i++ {
			w.xt[i] = w.sol.AtVec(i)
		}
		for i := 0; i < m; i++ {
			nu := w.sol.AtVec(n + i)
			w.zt[i] = w.z[i] + (nu-w.y[i])/d.rho[i]
		}

		// Relaxed updates with projection onto [𝐥, 𝐮].
		for i := 0; i < n; i++ {
			w.x[i] = alpha*w.xt[i] + (one-alpha)*w.x[i]
		}
		for i := 0; i < m; i++ {
			relaxed := alpha*w.zt[i] + (one-alpha)*w.z[i]
			z := relaxed + w.y[i]/d.rho[i]
			z = math.Max(d.l[i], math.Min(d.u[i], z))
			w.y[i] += d.rho[i] * (relaxed - z)
			w.z[i] = z
		}

		if w.iter%set.CheckInterval == 0 && o.converged(w) {
			return OK
		}
	}

	if o.converged(w) {
		return OK
	}
	return ExceedMaxIter
}

// converged checks the primal residual A𝐱 - 𝐳 and the dual residual
// P𝐱 + 𝐪 + Aᵀ𝐲 against 𝚎𝚙𝚜_𝚊𝚋𝚜 + 𝚎𝚙𝚜_𝚛𝚎𝚕·scale in the ∞-norm.
func (o *Optimizer) converged(w *Workspace) bool {
	n, m, d := o.n, o.m, o.data
	set := o.Settings
	inf := math.Inf(1)

	xv := mat.NewVecDense(n, w.x)
	yv := mat.NewVecDense(m, w.y)
	axv := mat.NewVecDense(m, w.ax)
	pxv := mat.NewVecDense(n, w.px)
	atyv := mat.NewVecDense(n, w.aty)

	axv.MulVec(d.a, xv)
	pxv.MulVec(d.p, xv)
	atyv.MulVec(d.a.T(), yv)

	rprim := zero
	for i := 0; i < m; i++ {
		rprim = math.Max(rprim, math.Abs(w.ax[i]-w.z[i]))
	}
	eprim := set.EpsAbs + set.EpsRel*math.Max(floats.Norm(w.ax, inf), floats.Norm(w.z, inf))
	if rprim > eprim {
		return false
	}

	rdual := zero
	for i := 0; i < n; i++ {
		rdual = math.Max(rdual, math.Abs(w.px[i]+d.q[i]+w.aty[i]))
	}
	scale := math.Max(floats.Norm(w.px, inf), floats.Norm(w.aty, inf))
	scale = math.Max(scale, floats.Norm(d.q, inf))
	edual := set.EpsAbs + set.EpsRel*scale

	return rdual <= edual
}
