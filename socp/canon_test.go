// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package socp

import (
	"errors"
	"testing"

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

func TestCanonicalizeBounds(t *testing.T) {

	prob := cvx.NewProblem()
	x := prob.AddVectorVariable("x", 2)

	prob.AddConstraint(cvx.GreaterThanVec(x, cvx.Rep(cvx.Param(1), 2))...)
	prob.AddConstraint(cvx.LessThanVec(x, cvx.Rep(cvx.Param(5), 2))...)
	prob.AddCostTerm(x.Sum().Neg())

	form, err := Canonicalize(prob)
	if err != nil {
		t.Fatal(err)
	}
	defer form.Release()

	switch {
	case form.NumVariables() != 2:
		t.Fatal("TestCanonicalizeBounds: Variable Count")
	case form.NumEqualities() != 0:
		t.Fatal("TestCanonicalizeBounds: Equality Rows")
	case form.NumInequalities() != 4 || form.NumPositive() != 4:
		t.Fatal("TestCanonicalizeBounds: Inequality Rows")
	case form.NumCones() != 0:
		t.Fatal("TestCanonicalizeBounds: Cone Count")
	}
}

func TestCanonicalizeConeLayout(t *testing.T) {

	prob := cvx.NewProblem()
	x := prob.AddVectorVariable("x", 2)

	prob.AddConstraint(cvx.GreaterThanVec(x, cvx.Rep(cvx.Param(1), 2))...)
	prob.AddConstraint(cvx.LessThan(x.Norm(), cvx.Param(5)))
	prob.AddCostTerm(x.Sum().Neg())

	form, err := Canonicalize(prob)
	if err != nil {
		t.Fatal(err)
	}
	defer form.Release()

	sum := 0
	for _, q := range form.SocDims {
		sum += q
	}
	switch {
	case form.NumCones() != 1 || len(form.SocDims) != 1:
		t.Fatal("TestCanonicalizeConeLayout: Cone Count")
	case form.SocDims[0] != 3:
		t.Fatal("TestCanonicalizeConeLayout: Cone Dimension")
	case form.NumInequalities() != form.NumPositive()+sum:
		t.Fatal("TestCanonicalizeConeLayout: Row Split")
	}
}

func TestCanonicalizeDegenerate(t *testing.T) {

	prob := cvx.NewProblem()
	x := prob.AddVectorVariable("x", 2)

	// Constant rows and cancelled norm rows vanish after cleanup.
	prob.AddConstraint(cvx.EqualTo(cvx.Param(2), cvx.Param(2)))
	prob.AddConstraint(cvx.EqualTo(x[0].Sub(x[0]), cvx.Param(0)))
	norm := cvx.Sqrt(cvx.Square(x[0].Sub(x[0])).Add(cvx.Square(x[1])))
	prob.AddConstraint(cvx.LessThan(norm, cvx.Param(5)))
	prob.AddCostTerm(x.Sum())

	form, err := Canonicalize(prob)
	if err != nil {
		t.Fatal(err)
	}
	defer form.Release()

	switch {
	case form.NumEqualities() != 0:
		t.Fatal("TestCanonicalizeDegenerate: Constant Equality Kept")
	case form.NumCones() != 1 || form.SocDims[0] != 2:
		t.Fatal("TestCanonicalizeDegenerate: Zero Norm Row Kept")
	}
}

func TestCanonicalizeCostVariables(t *testing.T) {

	prob := cvx.NewProblem()
	x := prob.AddVariable("x")
	y := prob.AddVariable("y")

	prob.AddConstraint(cvx.GreaterThan(x, cvx.Param(0)))
	// y appears only in the cost but still receives a dense index.
	prob.AddCostTerm(x.Add(y))

	form, err := Canonicalize(prob)
	if err != nil {
		t.Fatal(err)
	}
	defer form.Release()

	if form.NumVariables() != 2 {
		t.Fatal("TestCanonicalizeCostVariables: Cost Variable Unindexed")
	}
	if len(form.C) != 2 {
		t.Fatal("TestCanonicalizeCostVariables: Cost Vector Size")
	}
}

func TestCanonicalizeCostErrors(t *testing.T) {

	{
		prob := cvx.NewProblem()
		x := prob.AddVariable("x")
		prob.AddConstraint(cvx.GreaterThan(x, cvx.Param(0)))
		prob.AddCostTerm(cvx.Square(x))

		_, err := Canonicalize(prob)
		if err == nil || kindOf(t, err) != cvx.InvalidCost {
			t.Fatal("TestCanonicalizeCostErrors: Quadratic Cost Accepted")
		}
	}

	{
		prob := cvx.NewProblem()
		x := prob.AddVariable("x")
		prob.AddConstraint(cvx.GreaterThan(x, cvx.Param(0)))
		prob.AddCostTerm(cvx.Param(3))

		_, err := Canonicalize(prob)
		if err == nil || kindOf(t, err) != cvx.InvalidCost {
			t.Fatal("TestCanonicalizeCostErrors: Constant Cost Accepted")
		}
	}
}
