// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func almostEqual(got, want []float64, tol float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func simpleProblem() Problem {
	return Problem{
		N: 2, M: 3,
		P: mat.NewSymDense(2, []float64{4, 1, 1, 2}),
		A: mat.NewDense(3, 2, []float64{1, 1, 1, 0, 0, 1}),
		Q: []float64{1, 1},
		L: []float64{1, 0, 0},
		U: []float64{1, 0.7, 0.7},
	}
}

func TestSimpleQP(t *testing.T) {

	p := simpleProblem()
	o, err := p.New()
	if err != nil {
		t.Fatal(err)
	}
	w, err := o.Init()
	if err != nil {
		t.Fatal(err)
	}

	r := o.Fit(w)

	wantX := []float64{0.3, 0.7}
	wantF := 1.88

	switch {
	case !r.OK:
		t.Fatal("TestSimpleQP: Not Converge")
	case !almostEqual(r.X, wantX, 1e-4):
		t.Fatal("TestSimpleQP: Bad Solution")
	case math.Abs(r.Obj-wantF) > 1e-3:
		t.Fatal("TestSimpleQP: Bad Objective")
	}
}

func TestEqualityRows(t *testing.T) {

	// min ½‖x‖² subject to x₀ + x₁ = 1.
	p := Problem{
		N: 2, M: 1,
		P: mat.NewSymDense(2, []float64{1, 0, 0, 1}),
		A: mat.NewDense(1, 2, []float64{1, 1}),
		Q: []float64{0, 0},
		L: []float64{1},
		U: []float64{1},
	}
	o, err := p.New()
	if err != nil {
		t.Fatal(err)
	}
	w, err := o.Init()
	if err != nil {
		t.Fatal(err)
	}

	r := o.Fit(w)

	switch {
	case !r.OK:
		t.Fatal("TestEqualityRows: Not Converge")
	case !almostEqual(r.X, []float64{0.5, 0.5}, 1e-5):
		t.Fatal("TestEqualityRows: Bad Solution")
	}
}

func TestOneSidedRows(t *testing.T) {

	// min (x-1)² subject to x ≥ 2, stated as a one-sided row.
	p := Problem{
		N: 1, M: 1,
		P: mat.NewSymDense(1, []float64{2}),
		A: mat.NewDense(1, 1, []float64{1}),
		Q: []float64{-2},
		L: []float64{2},
		U: []float64{math.Inf(1)},
	}
	o, err := p.New()
	if err != nil {
		t.Fatal(err)
	}
	w, err := o.Init()
	if err != nil {
		t.Fatal(err)
	}

	r := o.Fit(w)

	switch {
	case !r.OK:
		t.Fatal("TestOneSidedRows: Not Converge")
	case !almostEqual(r.X, []float64{2}, 1e-5):
		t.Fatal("TestOneSidedRows: Bad Solution")
	}
}

func TestMaxIterations(t *testing.T) {

	p := simpleProblem()
	p.Settings.MaxIterations = 1
	o, err := p.New()
	if err != nil {
		t.Fatal(err)
	}
	w, err := o.Init()
	if err != nil {
		t.Fatal(err)
	}

	r := o.Fit(w)

	switch {
	case r.OK || r.Status != ExceedMaxIter:
		t.Fatal("TestMaxIterations: Unexpected Status")
	case r.NumIter != 1:
		t.Fatal("TestMaxIterations: Iteration Count")
	}
}

func TestWarmStart(t *testing.T) {

	p := simpleProblem()
	o, err := p.New()
	if err != nil {
		t.Fatal(err)
	}
	w, err := o.Init()
	if err != nil {
		t.Fatal(err)
	}

	first := o.Fit(w)
	second := o.Fit(w)

	switch {
	case !first.OK || !second.OK:
		t.Fatal("TestWarmStart: Not Converge")
	case second.NumIter > first.NumIter:
		t.Fatal("TestWarmStart: Warm Start Slower Than Cold")
	case !almostEqual(second.X, first.X, 1e-6):
		t.Fatal("TestWarmStart: Solutions Diverge")
	}
}

func TestDataUpdate(t *testing.T) {

	p := simpleProblem()
	o, err := p.New()
	if err != nil {
		t.Fatal(err)
	}
	w, err := o.Init()
	if err != nil {
		t.Fatal(err)
	}

	if r := o.Fit(w); !r.OK {
		t.Fatal("TestDataUpdate: Not Converge")
	}

	// Loosen the budget row and re-solve without a new workspace.
	l := []float64{0.8, 0, 0}
	u := []float64{0.8, 0.7, 0.7}
	if err := o.Update(p.P, p.A, p.Q, l, u, w); err != nil {
		t.Fatal(err)
	}
	r := o.Fit(w)

	switch {
	case !r.OK:
		t.Fatal("TestDataUpdate: Not Converge After Update")
	case math.Abs(r.X[0]+r.X[1]-0.8) > 1e-5:
		t.Fatal("TestDataUpdate: Updated Row Ignored")
	}
}

func TestValidation(t *testing.T) {

	tests := []func(p *Problem){
		func(p *Problem) { p.N = 0 },
		func(p *Problem) { p.M = 0 },
		func(p *Problem) { p.P = nil },
		func(p *Problem) { p.Q = nil },
		func(p *Problem) { p.L = p.L[:1] },
		func(p *Problem) { p.L[0], p.U[0] = 2, 1 },
		func(p *Problem) { p.Settings.Alpha = 2 },
		func(p *Problem) { p.A = mat.NewDense(2, 2, nil) },
	}

	for k, mutate := range tests {
		p := simpleProblem()
		mutate(&p)
		if _, err := p.New(); err == nil {
			t.Fatalf("TestValidation: Case %d Accepted", k)
		}
	}
}
