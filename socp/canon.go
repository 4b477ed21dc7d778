// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package socp lowers a modeling problem into the second-order cone form
//
//	min 𝐜ᵀ𝐱  s.t.  A𝐱 = 𝐛,  G𝐱 ≤_K 𝐡
//
// where K is a positive orthant followed by second-order cones, and solves
// it through a cone-LP back end.
package socp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/epigraph/cvx"
)

// Form is the canonical SOCP emitted from a problem. Every matrix entry is
// a Parameter, so the numeric data can be refreshed between solves without
// touching the structure.
//
// The encoded rows follow the modeling sign convention: an equality row
// states 𝐛ᵢ + Aᵢ𝐱 == 0 and an inequality row states 𝐡ᵢ + Gᵢ𝐱 ≥ 0 (cone
// rows analogous). Back ends using G𝐱 + 𝐬 = 𝐡 negate A and G when
// materializing.
type Form struct {
	linker *cvx.Linker

	A, G    *cvx.SparseParam
	B, H, C []cvx.Parameter
	SocDims []int
}

// Canonicalize reads the problem once, assigns every reachable variable a
// dense index in traversal order and builds the Parameter matrices.
// Equality, nonnegativity and box rows without first-order content after
// cleanup are dropped. In a cone block the affine row is always kept and a
// norm row is dropped only when it cleans up to a literal zero, so constant
// norm rows stay. The cost must be linear.
func Canonicalize(prob *cvx.Problem) (*Form, error) {
	f := &Form{linker: cvx.NewLinker()}

	var aTrip, gTrip []cvx.Triplet
	var b, h []cvx.Parameter

	// Equality constraint rows (b + A·x == 0).
	for _, c := range prob.Equalities() {
		affine := c.Affine.Clone()
		affine.CleanUp()
		if affine.IsConstant() {
			continue
		}
		for _, t := range affine.Terms {
			f.linker.AddVariable(t.Var)
			aTrip = append(aTrip, cvx.Triplet{Row: len(b), Col: t.Var.ProblemIndex(), Value: t.Coeff})
		}
		b = append(b, affine.Constant)
	}

	// Positive orthant rows.
	for _, c := range prob.Nonnegatives() {
		affine := c.Affine.Clone()
		affine.CleanUp()
		if affine.IsConstant() {
			continue
		}
		for _, t := range affine.Terms {
			f.linker.AddVariable(t.Var)
			gTrip = append(gTrip, cvx.Triplet{Row: len(h), Col: t.Var.ProblemIndex(), Value: t.Coeff})
		}
		h = append(h, affine.Constant)
	}

	// Box constraints become two positive orthant rows.
	for _, c := range prob.Boxes() {
		for _, affine := range []cvx.Affine{
			c.Middle.Minus(c.Lower), // 0 <= middle - lower
			c.Upper.Minus(c.Middle), // 0 <= upper - middle
		} {
			affine.CleanUp()
			if !affine.IsFirstOrder() {
				continue
			}
			for _, t := range affine.Terms {
				f.linker.AddVariable(t.Var)
				gTrip = append(gTrip, cvx.Triplet{Row: len(h), Col: t.Var.ProblemIndex(), Value: t.Coeff})
			}
			h = append(h, affine.Constant)
		}
	}

	// Cone blocks: the affine side first, then the surviving norm rows.
	for _, c := range prob.SecondOrderCones() {
		affine := c.Affine.Clone()
		affine.CleanUp()
		for _, t := range affine.Terms {
			f.linker.AddVariable(t.Var)
			gTrip = append(gTrip, cvx.Triplet{Row: len(h), Col: t.Var.ProblemIndex(), Value: t.Coeff})
		}
		h = append(h, affine.Constant)

		dim := 1
		for _, norm := range c.Norm {
			affine := norm.Clone()
			affine.CleanUp()
			if affine.IsZero() {
				continue
			}
			for _, t := range affine.Terms {
				f.linker.AddVariable(t.Var)
				gTrip = append(gTrip, cvx.Triplet{Row: len(h), Col: t.Var.ProblemIndex(), Value: t.Coeff})
			}
			h = append(h, affine.Constant)
			dim++
		}
		f.SocDims = append(f.SocDims, dim)
	}

	// Cost: must clean up to a purely linear expression. Terms on
	// variables no constraint mentioned still receive an index.
	cost := prob.Cost()
	costAffine := cost.AffinePart()
	costAffine.CleanUp()
	if len(cost.Products()) > 0 || cost.IsNorm() || !costAffine.IsFirstOrder() {
		return nil, cvx.NewError(cvx.InvalidCost, "SOCP cost functions must be linear")
	}
	for _, t := range costAffine.Terms {
		f.linker.AddVariable(t.Var)
	}

	n := f.linker.NumVariables()
	f.C = make([]cvx.Parameter, n)
	for _, t := range costAffine.Terms {
		idx := t.Var.ProblemIndex()
		f.C[idx] = f.C[idx].Add(t.Coeff)
	}

	f.A = cvx.NewSparseParam(len(b), n, aTrip)
	f.G = cvx.NewSparseParam(len(h), n, gTrip)
	f.B = b
	f.H = h
	f.linker.Solution().Resize(n)

	return f, nil
}

// NumVariables returns the number of linked variables.
func (f *Form) NumVariables() int { return f.linker.NumVariables() }

// NumEqualities returns the number of equality rows.
func (f *Form) NumEqualities() int { return f.A.Rows() }

// NumInequalities returns the total number of cone-product rows.
func (f *Form) NumInequalities() int { return f.G.Rows() }

// NumPositive returns the positive orthant prefix length.
func (f *Form) NumPositive() int {
	n := f.G.Rows()
	for _, q := range f.SocDims {
		n -= q
	}
	return n
}

// NumCones returns the number of second-order cones.
func (f *Form) NumCones() int { return len(f.SocDims) }

// Solution returns the shared primal storage the linked variables read.
func (f *Form) Solution() *cvx.SolutionVector { return f.linker.Solution() }

// Release unlinks every variable this form linked.
func (f *Form) Release() { f.linker.Release() }

func (f *Form) String() string {
	var b strings.Builder
	b.WriteString("Second order cone problem\n")
	b.WriteString("Minimize c'x\n")
	b.WriteString("Subject to Gx <=_K h\n")
	b.WriteString("           Ax == b\n")
	b.WriteString("With:\n\n")
	if len(f.C) > 0 {
		c := mat.NewVecDense(len(f.C), cvx.EvalParams(f.C, nil))
		fmt.Fprintf(&b, "c:\n%v\n\n", mat.Formatted(c))
	}
	if len(f.H) > 0 {
		g := f.G.EvalDense()
		g.Scale(-1, g)
		h := mat.NewVecDense(len(f.H), cvx.EvalParams(f.H, nil))
		fmt.Fprintf(&b, "G:\n%v\n\n", mat.Formatted(g))
		fmt.Fprintf(&b, "h:\n%v\n\n", mat.Formatted(h))
	}
	if f.A.Rows() > 0 {
		a := f.A.EvalDense()
		a.Scale(-1, a)
		bv := mat.NewVecDense(len(f.B), cvx.EvalParams(f.B, nil))
		fmt.Fprintf(&b, "A:\n%v\n\n", mat.Formatted(a))
		fmt.Fprintf(&b, "b:\n%v\n\n", mat.Formatted(bv))
	}
	return b.String()
}
