// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

// ConstraintKind selects one of the four canonical constraint shapes.
type ConstraintKind int8

const (
	KindEquality ConstraintKind = iota
	KindNonnegative
	KindBox
	KindSecondOrderCone
)

// EqualityConstraint encodes affine == 0.
type EqualityConstraint struct {
	Affine Affine
}

// NonnegativeConstraint encodes 0 ≤ affine.
type NonnegativeConstraint struct {
	Affine Affine
}

// BoxConstraint encodes lower ≤ middle ≤ upper.
type BoxConstraint struct {
	Lower, Middle, Upper Affine
}

// SecondOrderConeConstraint encodes ‖norm‖₂ ≤ affine where the norm
// gathers the listed affine expressions.
type SecondOrderConeConstraint struct {
	Norm   []Affine
	Affine Affine
}

// Constraint is a tagged union over the four shapes. Constraints are
// immutable once built. The zero Constraint is an empty equality, which
// canonicalizers skip; comparison helpers use it to drop
// constant-versus-constant no-ops.
type Constraint struct {
	kind ConstraintKind
	eq   EqualityConstraint
	nn   NonnegativeConstraint
	box  BoxConstraint
	soc  SecondOrderConeConstraint
}

// Kind returns the shape tag.
func (c Constraint) Kind() ConstraintKind {
	return c.kind
}

// EqualTo builds lhs == rhs. Both sides must be constant or linear.
func EqualTo(lhs, rhs Scalar) Constraint {
	if lhs.Order() > 1 || rhs.Order() > 1 {
		failf(InvalidOrder, "the expressions in an equality have to be constant or linear")
	}
	return Constraint{
		kind: KindEquality,
		eq:   EqualityConstraint{Affine: lhs.affine.minus(rhs.affine)},
	}
}

// LessThan builds lhs ≤ rhs. A 2-norm on the smaller side becomes a
// second-order cone constraint; a constant or linear side becomes a
// nonnegativity constraint, or a no-op when both sides are constant.
func LessThan(lhs, rhs Scalar) Constraint {
	if rhs.Order() > 1 {
		failf(InvalidOrder, "the larger side in an inequality has to be constant or linear")
	}
	switch {
	case lhs.IsNorm():
		norm := make([]Affine, len(lhs.products))
		for i, p := range lhs.products {
			norm[i] = p.First().clone()
		}
		return Constraint{
			kind: KindSecondOrderCone,
			soc: SecondOrderConeConstraint{
				Norm:   norm,
				Affine: rhs.affine.minus(lhs.affine),
			},
		}
	case lhs.Order() < 2:
		if lhs.Order() == 0 && rhs.Order() == 0 {
			return Constraint{}
		}
		return Constraint{
			kind: KindNonnegative,
			nn:   NonnegativeConstraint{Affine: rhs.affine.minus(lhs.affine)},
		}
	default:
		failf(InvalidOrder, "the smaller side in an inequality has to be constant, linear or a 2-norm")
		return Constraint{}
	}
}

// GreaterThan builds lhs ≥ rhs.
func GreaterThan(lhs, rhs Scalar) Constraint {
	return LessThan(rhs, lhs)
}

// Box builds lower ≤ middle ≤ upper for constant or linear expressions.
func Box(lower, middle, upper Scalar) Constraint {
	if lower.Order() > 1 || middle.Order() > 1 || upper.Order() > 1 {
		failf(InvalidOrder, "the expressions in a box constraint have to be constant or linear")
	}
	return Constraint{
		kind: KindBox,
		box: BoxConstraint{
			Lower:  lower.affine.clone(),
			Middle: middle.affine.clone(),
			Upper:  upper.affine.clone(),
		},
	}
}
