// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

import "math"

// Term is a single first-order monomial 𝑝·𝑣 with a Parameter coefficient.
type Term struct {
	Coeff Parameter
	Var   Variable
}

// Evaluate returns the coefficient value times the linked solution value.
func (t Term) Evaluate() float64 {
	return t.Coeff.Value() * t.Var.Solution()
}

// Equal reports equality of coefficient structure and variable identity.
func (t Term) Equal(o Term) bool {
	return t.Coeff.Equal(o.Coeff) && t.Var.Equal(o.Var)
}

// Affine is a linear combination of variables plus a constant:
// Σ 𝑝ᵢ·𝑣ᵢ + 𝑐. Term order is preserved as built.
type Affine struct {
	Constant Parameter
	Terms    []Term
}

// Evaluate sums the constant and all term values.
func (a Affine) Evaluate() float64 {
	sum := a.Constant.Value()
	for _, t := range a.Terms {
		sum += t.Evaluate()
	}
	return sum
}

// Equal compares term sequences in order and the constants structurally.
func (a Affine) Equal(o Affine) bool {
	if len(a.Terms) != len(o.Terms) || !a.Constant.Equal(o.Constant) {
		return false
	}
	for i := range a.Terms {
		if !a.Terms[i].Equal(o.Terms[i]) {
			return false
		}
	}
	return true
}

// IsZero reports no terms and a literal zero constant.
func (a Affine) IsZero() bool {
	return len(a.Terms) == 0 && a.Constant.IsZero()
}

// IsConstant reports no terms.
func (a Affine) IsConstant() bool {
	return len(a.Terms) == 0
}

// IsFirstOrder reports at least one term.
func (a Affine) IsFirstOrder() bool {
	return len(a.Terms) > 0
}

// Clone returns a copy whose term slice is independent of the receiver.
func (a Affine) Clone() Affine {
	return a.clone()
}

// Minus returns a - o.
func (a Affine) Minus(o Affine) Affine {
	return a.minus(o)
}

func (a Affine) clone() Affine {
	terms := make([]Term, len(a.Terms))
	copy(terms, a.Terms)
	return Affine{Constant: a.Constant, Terms: terms}
}

func (a Affine) plus(o Affine) Affine {
	terms := make([]Term, 0, len(a.Terms)+len(o.Terms))
	terms = append(terms, a.Terms...)
	terms = append(terms, o.Terms...)
	return Affine{Constant: a.Constant.Add(o.Constant), Terms: terms}
}

func (a Affine) minus(o Affine) Affine {
	return a.plus(o.neg())
}

func (a Affine) neg() Affine {
	return a.scale(NewParameter(-1))
}

func (a Affine) scale(p Parameter) Affine {
	terms := make([]Term, len(a.Terms))
	for i, t := range a.Terms {
		terms[i] = Term{Coeff: t.Coeff.Mul(p), Var: t.Var}
	}
	return Affine{Constant: a.Constant.Mul(p), Terms: terms}
}

func (a Affine) divide(p Parameter) Affine {
	terms := make([]Term, len(a.Terms))
	for i, t := range a.Terms {
		terms[i] = Term{Coeff: t.Coeff.Div(p), Var: t.Var}
	}
	return Affine{Constant: a.Constant.Div(p), Terms: terms}
}

// CleanUp combines terms on the same variable, keeping the first
// occurrence position, and drops terms whose coefficient reduced to a
// literal zero. Idempotent; invoked only at canonicalization boundaries so
// user-visible term order survives ordinary arithmetic.
func (a *Affine) CleanUp() {
	cleaned := make([]Term, 0, len(a.Terms))
	for _, t := range a.Terms {
		merged := false
		for i := range cleaned {
			if cleaned[i].Var.Equal(t.Var) {
				cleaned[i].Coeff = cleaned[i].Coeff.Add(t.Coeff)
				merged = true
				break
			}
		}
		if !merged {
			cleaned = append(cleaned, t)
		}
	}
	kept := cleaned[:0]
	for _, t := range cleaned {
		if !t.Coeff.IsZero() {
			kept = append(kept, t)
		}
	}
	a.Terms = kept
}

// Product is a quadratic monomial: one factor means a squared Affine, two
// factors a bilinear product.
type Product struct {
	factors []Affine
}

func squareProduct(a Affine) Product {
	return Product{factors: []Affine{a}}
}

func newProduct(lhs, rhs Affine) Product {
	if lhs.Equal(rhs) {
		return squareProduct(lhs)
	}
	return Product{factors: []Affine{lhs, rhs}}
}

// IsSquare reports a single squared factor.
func (p Product) IsSquare() bool {
	return len(p.factors) == 1
}

// First returns the first factor.
func (p Product) First() Affine {
	return p.factors[0]
}

// Second returns the second factor, or the first again for a square.
func (p Product) Second() Affine {
	if p.IsSquare() {
		return p.factors[0]
	}
	return p.factors[1]
}

// Evaluate returns the numeric product of the factor values.
func (p Product) Evaluate() float64 {
	if p.IsSquare() {
		v := p.factors[0].Evaluate()
		return v * v
	}
	return p.factors[0].Evaluate() * p.factors[1].Evaluate()
}

// Equal compares factors commutatively.
func (p Product) Equal(o Product) bool {
	return (p.First().Equal(o.First()) && p.Second().Equal(o.Second())) ||
		(p.First().Equal(o.Second()) && p.Second().Equal(o.First()))
}

func (p Product) clone() Product {
	factors := make([]Affine, len(p.factors))
	for i, f := range p.factors {
		factors[i] = f.clone()
	}
	return Product{factors: factors}
}

// toSquared coerces the product into a squared form. A bilinear product is
// accepted only in the single-term same-variable case
// (𝑝·𝑥)·(𝑞·𝑥) → (√(𝑝𝑞)·𝑥)², needed for products built term by term.
func (p Product) toSquared() (Product, bool) {
	if p.IsSquare() {
		return p, true
	}
	first, second := p.factors[0], p.factors[1]
	if len(first.Terms) == 1 && len(second.Terms) == 1 &&
		first.Constant.IsZero() && second.Constant.IsZero() &&
		first.Terms[0].Var.Equal(second.Terms[0].Var) {
		coeff := first.Terms[0].Coeff.Mul(second.Terms[0].Coeff).Sqrt()
		return squareProduct(Affine{Terms: []Term{{Coeff: coeff, Var: first.Terms[0].Var}}}), true
	}
	return Product{}, false
}

// Scalar is the user-facing expression type: an Affine part plus a list of
// quadratic Products, optionally marked as a 2-norm of the products.
type Scalar struct {
	affine   Affine
	products []Product
	norm     bool
}

// Param returns the constant expression v.
func Param(v float64) Scalar {
	return Scalar{affine: Affine{Constant: NewParameter(v)}}
}

// DynParam returns a dynamic expression reading from ptr on every
// evaluation. The cell must outlive every solver referencing it.
func DynParam(ptr *float64) Scalar {
	return Scalar{affine: Affine{Constant: NewDynParameter(ptr)}}
}

func variableScalar(v Variable) Scalar {
	return Scalar{affine: Affine{Terms: []Term{{Coeff: NewParameter(1), Var: v}}}}
}

// NewVar returns a fresh scalar decision variable that is not registered
// with any problem.
func NewVar(name string) Scalar {
	return variableScalar(newVariable(name, 0, 0, ShapeScalar))
}

// Order is 0 for a constant, 1 for a linear expression and 2 as soon as
// any Product is present, norm or not.
func (s Scalar) Order() int {
	switch {
	case len(s.products) > 0:
		return 2
	case s.affine.IsFirstOrder():
		return 1
	default:
		return 0
	}
}

// IsNorm reports whether the products are to be read under a square root.
func (s Scalar) IsNorm() bool {
	return s.norm
}

// AffinePart returns a copy of the affine part.
func (s Scalar) AffinePart() Affine {
	return s.affine.clone()
}

// Products returns a copy of the quadratic products.
func (s Scalar) Products() []Product {
	products := make([]Product, len(s.products))
	for i, p := range s.products {
		products[i] = p.clone()
	}
	return products
}

// Evaluate computes the numeric value with current parameter cells and
// linked solutions.
func (s Scalar) Evaluate() float64 {
	sum := 0.
	for _, p := range s.products {
		sum += p.Evaluate()
	}
	if s.norm {
		sum = math.Sqrt(sum)
	}
	return sum + s.affine.Evaluate()
}

// Equal compares affine parts, product lists and norm flags.
func (s Scalar) Equal(o Scalar) bool {
	if s.norm != o.norm || len(s.products) != len(o.products) || !s.affine.Equal(o.affine) {
		return false
	}
	for i := range s.products {
		if !s.products[i].Equal(o.products[i]) {
			return false
		}
	}
	return true
}

// Add returns s + o. Mixing a norm with any second-order expression of
// either kind is rejected.
func (s Scalar) Add(o Scalar) Scalar {
	if (s.norm && o.Order() == 2) || (s.Order() == 2 && o.norm) || (s.norm && o.norm) {
		failf(InvalidOrder, "incompatible addition of norm and quadratic expressions")
	}
	products := make([]Product, 0, len(s.products)+len(o.products))
	products = append(products, s.products...)
	products = append(products, o.products...)
	return Scalar{
		affine:   s.affine.plus(o.affine),
		products: products,
		norm:     s.norm || o.norm,
	}
}

// Sub returns s - o; only constant or linear expressions may be
// subtracted.
func (s Scalar) Sub(o Scalar) Scalar {
	if o.Order() > 1 {
		failf(InvalidOrder, "subtraction is not supported for higher-order expressions")
	}
	return Scalar{
		affine:   s.affine.minus(o.affine),
		products: s.products,
		norm:     s.norm,
	}
}

// Mul returns s · o. Both factors must be constant or linear; two linear
// factors form a Product, otherwise the constant side scales the other.
func (s Scalar) Mul(o Scalar) Scalar {
	if s.Order() == 2 || o.Order() == 2 {
		failf(InvalidOrder, "factors in a multiplication have to be constant or linear")
	}
	switch {
	case s.affine.IsFirstOrder() && o.affine.IsFirstOrder():
		return Scalar{products: []Product{newProduct(s.affine, o.affine)}}
	case s.affine.IsConstant():
		return Scalar{affine: o.affine.scale(s.affine.Constant)}
	default:
		return Scalar{affine: s.affine.scale(o.affine.Constant)}
	}
}

// Div returns s ÷ o for a constant divisor and a constant or linear
// dividend.
func (s Scalar) Div(o Scalar) Scalar {
	if s.Order() == 2 {
		failf(InvalidOrder, "the dividend has to be constant or linear")
	}
	if o.Order() > 0 {
		failf(InvalidOrder, "the divisor has to be constant")
	}
	return Scalar{affine: s.affine.divide(o.affine.Constant)}
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	return Param(-1).Mul(s)
}

// Sqrt turns a purely quadratic expression into its 2-norm. Every product
// must be coercible to a squared form and no linear terms may be present;
// a constant under the root is promoted to a squared constant product.
func Sqrt(s Scalar) Scalar {
	products := make([]Product, len(s.products))
	for i, p := range s.products {
		sq, ok := p.toSquared()
		if !ok {
			failf(InvalidOrder, "could not convert a product expression into a squared expression")
		}
		products[i] = sq
	}
	if !s.affine.IsConstant() {
		failf(InvalidOrder, "can only take the square root when no linear terms are present")
	}
	if !s.affine.Constant.IsZero() {
		products = append(products, squareProduct(Affine{Constant: s.affine.Constant.Sqrt()}))
	}
	return Scalar{products: products, norm: true}
}

// Square returns s² for a constant or linear s.
func Square(s Scalar) Scalar {
	if s.Order() > 1 {
		failf(InvalidOrder, "can only square constant or linear expressions")
	}
	return Scalar{products: []Product{squareProduct(s.affine.clone())}}
}
