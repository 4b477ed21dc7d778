// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qp lowers a modeling problem into the quadratic form
//
//	min ½𝐱ᵀP𝐱 + 𝐪ᵀ𝐱  s.t.  𝐥 ≤ A𝐱 ≤ 𝐮
//
// with P stored as its upper triangle and solves it through an
// operator-splitting back end.
package qp

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/epigraph/cvx"
)

// Form is the canonical QP emitted from a problem. P keeps only the upper
// triangle with diagonal coefficients already doubled for the ½𝐱ᵀP𝐱
// convention; one-sided rows carry an infinite upper bound.
type Form struct {
	linker *cvx.Linker

	P, A    *cvx.SparseParam
	Q, L, U []cvx.Parameter
}

type qpRows struct {
	aTrip []cvx.Triplet
	l, u  []cvx.Parameter
}

func (r *qpRows) push(f *Form, terms []cvx.Term, l, u cvx.Parameter) {
	for _, t := range terms {
		f.linker.AddVariable(t.Var)
		r.aTrip = append(r.aTrip, cvx.Triplet{Row: len(r.l), Col: t.Var.ProblemIndex(), Value: t.Coeff})
	}
	r.l = append(r.l, l)
	r.u = append(r.u, u)
}

// Canonicalize reads the problem once and builds the Parameter matrices.
// Rows without first-order content after cleanup are dropped; second-order
// cone constraints are not accepted; the cost must be order 1 or 2 and not
// a norm.
func Canonicalize(prob *cvx.Problem) (*Form, error) {
	if len(prob.SecondOrderCones()) > 0 {
		return nil, cvx.NewError(cvx.InvalidConstraint, "QP canonicalizers do not accept second order cone constraints")
	}

	f := &Form{linker: cvx.NewLinker()}
	rows := &qpRows{}
	inf := cvx.NewParameter(math.Inf(1))

	// Equality rows: 𝑙ᵢ = 𝑢ᵢ = -constant.
	for _, c := range prob.Equalities() {
		affine := c.Affine.Clone()
		affine.CleanUp()
		if affine.IsConstant() {
			continue
		}
		bound := affine.Constant.Neg()
		rows.push(f, affine.Terms, bound, bound)
	}

	// One-sided rows from nonnegativity constraints.
	for _, c := range prob.Nonnegatives() {
		affine := c.Affine.Clone()
		affine.CleanUp()
		if affine.IsConstant() {
			continue
		}
		rows.push(f, affine.Terms, affine.Constant.Neg(), inf)
	}

	// Box constraints: one two-sided row when both bounds are constant,
	// two half-box rows otherwise.
	for _, c := range prob.Boxes() {
		if c.Lower.IsConstant() && c.Upper.IsConstant() {
			middle := c.Middle.Clone()
			middle.CleanUp()
			if !middle.IsFirstOrder() {
				continue
			}
			rows.push(f, middle.Terms,
				c.Lower.Constant.Sub(middle.Constant),
				c.Upper.Constant.Sub(middle.Constant))
			continue
		}
		for _, half := range []cvx.Affine{
			c.Middle.Minus(c.Lower), // lower - middle constants bound middle - lower
			c.Upper.Minus(c.Middle),
		} {
			half.CleanUp()
			if !half.IsFirstOrder() {
				continue
			}
			rows.push(f, half.Terms, half.Constant.Neg(), inf)
		}
	}

	// Cost function.
	cost := prob.Cost()
	if cost.IsNorm() || cost.Order() == 0 {
		return nil, cvx.NewError(cvx.InvalidCost, "QP cost functions must be linear or quadratic")
	}

	type qEntry struct {
		idx   int
		coeff cvx.Parameter
	}
	var qAcc []qEntry
	var pTrip []cvx.Triplet

	costAffine := cost.AffinePart()
	costAffine.CleanUp()
	for _, t := range costAffine.Terms {
		f.linker.AddVariable(t.Var)
		qAcc = append(qAcc, qEntry{t.Var.ProblemIndex(), t.Coeff})
	}

	two := cvx.NewParameter(2)
	for _, product := range cost.Products() {
		first, second := product.First(), product.Second()

		for _, t1 := range first.Terms {
			f.linker.AddVariable(t1.Var)
			for _, t2 := range second.Terms {
				f.linker.AddVariable(t2.Var)
				i, j := t1.Var.ProblemIndex(), t2.Var.ProblemIndex()
				if i > j {
					i, j = j, i
				}
				w := t1.Coeff.Mul(t2.Coeff)
				if i == j {
					// The ½𝐱ᵀP𝐱 convention needs 2w on the diagonal.
					w = w.Mul(two)
				}
				pTrip = append(pTrip, cvx.Triplet{Row: i, Col: j, Value: w})
			}
		}

		// Linear spill from factors with constant parts.
		if !first.Constant.IsZero() {
			for _, t := range second.Terms {
				f.linker.AddVariable(t.Var)
				qAcc = append(qAcc, qEntry{t.Var.ProblemIndex(), first.Constant.Mul(t.Coeff)})
			}
		}
		if !second.Constant.IsZero() {
			for _, t := range first.Terms {
				f.linker.AddVariable(t.Var)
				qAcc = append(qAcc, qEntry{t.Var.ProblemIndex(), second.Constant.Mul(t.Coeff)})
			}
		}
	}

	n := f.linker.NumVariables()
	f.Q = make([]cvx.Parameter, n)
	for _, e := range qAcc {
		f.Q[e.idx] = f.Q[e.idx].Add(e.coeff)
	}

	f.P = cvx.NewSparseParam(n, n, pTrip)
	f.A = cvx.NewSparseParam(len(rows.l), n, rows.aTrip)
	f.L = rows.l
	f.U = rows.u
	f.linker.Solution().Resize(n)

	return f, nil
}

// NumVariables returns the number of linked variables.
func (f *Form) NumVariables() int { return f.linker.NumVariables() }

// NumInequalities returns the number of constraint rows.
func (f *Form) NumInequalities() int { return f.A.Rows() }

// Solution returns the shared primal storage the linked variables read.
func (f *Form) Solution() *cvx.SolutionVector { return f.linker.Solution() }

// Release unlinks every variable this form linked.
func (f *Form) Release() { f.linker.Release() }

// SymEval evaluates P into a full symmetric matrix by transposing the
// strict upper triangle into the lower one.
func (f *Form) SymEval() *mat.SymDense {
	n := f.P.Rows()
	sym := mat.NewSymDense(n, nil)
	f.P.Each(func(row, col int, p cvx.Parameter) {
		sym.SetSym(row, col, sym.At(row, col)+p.Value())
	})
	return sym
}

// IsConvex attempts a dense Cholesky factorization of the symmetrized P
// at the current parameter values. A P without nonzeros is trivially
// convex.
func (f *Form) IsConvex() bool {
	if f.P.NonZeros() == 0 {
		return true
	}
	var chol mat.Cholesky
	return chol.Factorize(f.SymEval())
}

func (f *Form) String() string {
	var b strings.Builder
	b.WriteString("Quadratic problem\n")
	b.WriteString("Minimize 0.5x'Px + q'x\n")
	b.WriteString("Subject to l <= Ax <= u\n")
	b.WriteString("With:\n\n")
	if f.NumVariables() > 0 {
		q := mat.NewVecDense(len(f.Q), cvx.EvalParams(f.Q, nil))
		fmt.Fprintf(&b, "P:\n%v\n\n", mat.Formatted(f.SymEval()))
		fmt.Fprintf(&b, "q:\n%v\n\n", mat.Formatted(q))
	}
	if f.A.Rows() > 0 {
		l := mat.NewVecDense(len(f.L), cvx.EvalParams(f.L, nil))
		u := mat.NewVecDense(len(f.U), cvx.EvalParams(f.U, nil))
		fmt.Fprintf(&b, "A:\n%v\n\n", mat.Formatted(f.A.EvalDense()))
		fmt.Fprintf(&b, "l:\n%v\n\n", mat.Formatted(l))
		fmt.Fprintf(&b, "u:\n%v\n", mat.Formatted(u))
	}
	return b.String()
}
