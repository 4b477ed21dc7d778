// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/epigraph/cvx"
)

func kindOf(t *testing.T, err error) cvx.ErrorKind {
	t.Helper()
	var cerr *cvx.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *cvx.Error, got %v", err)
	}
	return cerr.Kind
}

func TestCanonicalizeRejectsCones(t *testing.T) {

	prob := cvx.NewProblem()
	x := prob.AddVectorVariable("x", 2)

	prob.AddConstraint(cvx.LessThan(x.Norm(), cvx.Param(5)))
	prob.AddCostTerm(x.Sum())

	_, err := Canonicalize(prob)
	if err == nil || kindOf(t, err) != cvx.InvalidConstraint {
		t.Fatal("TestCanonicalizeRejectsCones: Cone Accepted")
	}
}

func TestCanonicalizeCostErrors(t *testing.T) {

	{
		prob := cvx.NewProblem()
		x := prob.AddVariable("x")
		prob.AddConstraint(cvx.GreaterThan(x, cvx.Param(0)))
		prob.AddCostTerm(cvx.Param(1))

		_, err := Canonicalize(prob)
		if err == nil || kindOf(t, err) != cvx.InvalidCost {
			t.Fatal("TestCanonicalizeCostErrors: Constant Cost Accepted")
		}
	}

	{
		prob := cvx.NewProblem()
		x := prob.AddVectorVariable("x", 2)
		prob.AddConstraint(cvx.GreaterThanVec(x, cvx.Rep(cvx.Param(0), 2))...)
		prob.AddCostTerm(x.Norm())

		_, err := Canonicalize(prob)
		if err == nil || kindOf(t, err) != cvx.InvalidCost {
			t.Fatal("TestCanonicalizeCostErrors: Norm Cost Accepted")
		}
	}
}

func TestCanonicalizeBoxRows(t *testing.T) {

	// Constant bounds collapse to one two-sided row.
	{
		prob := cvx.NewProblem()
		x := prob.AddVariable("x")
		prob.AddConstraint(cvx.Box(cvx.Param(-1), x, cvx.Param(1)))
		prob.AddCostTerm(cvx.Square(x))

		form, err := Canonicalize(prob)
		if err != nil {
			t.Fatal(err)
		}
		defer form.Release()
		if form.NumInequalities() != 1 {
			t.Fatal("TestCanonicalizeBoxRows: Constant Box Rows")
		}
	}

	// A variable bound splits into two half-box rows.
	{
		prob := cvx.NewProblem()
		x := prob.AddVariable("x")
		y := prob.AddVariable("y")
		prob.AddConstraint(cvx.Box(y, x, cvx.Param(1)))
		prob.AddCostTerm(cvx.Square(x))

		form, err := Canonicalize(prob)
		if err != nil {
			t.Fatal(err)
		}
		defer form.Release()
		if form.NumInequalities() != 2 {
			t.Fatal("TestCanonicalizeBoxRows: Half Box Rows")
		}
	}
}

func TestCanonicalizeQuadratic(t *testing.T) {

	prob := cvx.NewProblem()
	x := prob.AddVectorVariable("x", 2)

	prob.AddConstraint(cvx.GreaterThanVec(x, cvx.Rep(cvx.Param(0), 2))...)
	// (1 + x₀)·x₁ contributes P₀₁ = 1 and a linear spill onto x₁;
	// x₀² contributes a doubled diagonal.
	prob.AddCostTerm(cvx.Param(1).Add(x[0]).Mul(x[1]))
	prob.AddCostTerm(cvx.Square(x[0]))

	form, err := Canonicalize(prob)
	if err != nil {
		t.Fatal(err)
	}
	defer form.Release()

	sym := form.SymEval()
	q := cvx.EvalParams(form.Q, nil)
	switch {
	case sym.At(0, 0) != 2:
		t.Fatal("TestCanonicalizeQuadratic: Diagonal Not Doubled")
	case sym.At(0, 1) != 1 || sym.At(1, 0) != 1:
		t.Fatal("TestCanonicalizeQuadratic: Off Diagonal")
	case q[0] != 0 || q[1] != 1:
		t.Fatal("TestCanonicalizeQuadratic: Linear Spill")
	}
}

func TestIsConvex(t *testing.T) {

	{
		prob := cvx.NewProblem()
		x := prob.AddVectorVariable("x", 3)
		prob.AddConstraint(cvx.EqualTo(x.Sum(), cvx.Param(1)))
		prob.AddCostTerm(x.SquaredNorm())

		form, err := Canonicalize(prob)
		if err != nil {
			t.Fatal(err)
		}
		defer form.Release()
		if !form.IsConvex() {
			t.Fatal("TestIsConvex: PSD Rejected")
		}
	}

	{
		prob := cvx.NewProblem()
		x := prob.AddVectorVariable("x", 3)
		prob.AddConstraint(cvx.EqualTo(x.Sum(), cvx.Param(1)))
		m := mat.NewDense(3, 3, []float64{
			-3, 0, 0,
			0, -2, 0,
			0, 0, -1,
		})
		prob.AddCostTerm(x.Dot(cvx.ParMat(m).MulVec(x)))

		form, err := Canonicalize(prob)
		if err != nil {
			t.Fatal(err)
		}
		defer form.Release()
		if form.IsConvex() {
			t.Fatal("TestIsConvex: Indefinite Accepted")
		}
	}

	{
		// No quadratic part at all is trivially convex.
		prob := cvx.NewProblem()
		x := prob.AddVariable("x")
		prob.AddConstraint(cvx.GreaterThan(x, cvx.Param(0)))
		prob.AddCostTerm(x)

		form, err := Canonicalize(prob)
		if err != nil {
			t.Fatal(err)
		}
		defer form.Release()
		if !form.IsConvex() {
			t.Fatal("TestIsConvex: Linear Rejected")
		}
	}
}
