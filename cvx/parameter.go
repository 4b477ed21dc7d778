// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cvx implements a disciplined convex optimization modeling layer:
// a symbolic expression algebra over decision variables and deferred
// parameters, convexity-preserving operator rules, and the problem
// aggregate the socp and qp canonicalizers lower into solver matrices.
package cvx

import "math"

type paramOp int8

const (
	opNone paramOp = iota
	opAdd
	opMul
	opDiv
	opSqrt
)

// parameterSource is one node of the deferred-evaluation DAG.
// A leaf is either a literal constant or a pointer into a user-owned cell;
// interior nodes apply an opcode to one (Sqrt) or two children.
// Nodes are never mutated after construction, so sharing is free.
type parameterSource struct {
	op       paramOp
	value    float64
	ptr      *float64
	lhs, rhs *parameterSource
}

var constZero = &parameterSource{}

func (s *parameterSource) isConstant() bool {
	return s.op == opNone && s.ptr == nil
}

func (s *parameterSource) isPointer() bool {
	return s.op == opNone && s.ptr != nil
}

func (s *parameterSource) eval() float64 {
	switch s.op {
	case opAdd:
		return s.lhs.eval() + s.rhs.eval()
	case opMul:
		return s.lhs.eval() * s.rhs.eval()
	case opDiv:
		d := s.rhs.eval()
		if d == 0 {
			failf(NumericDomain, "parameter evaluated to a division by zero")
		}
		return s.lhs.eval() / d
	case opSqrt:
		v := s.lhs.eval()
		if v < 0 {
			failf(NumericDomain, "parameter evaluated to the square root of %v", v)
		}
		return math.Sqrt(v)
	default:
		if s.ptr != nil {
			return *s.ptr
		}
		return s.value
	}
}

func (s *parameterSource) equal(o *parameterSource) bool {
	if s == o {
		return true
	}
	if s.op != o.op {
		return false
	}
	switch s.op {
	case opAdd, opMul:
		// Add and Mul compare commutatively.
		return (s.lhs.equal(o.lhs) && s.rhs.equal(o.rhs)) ||
			(s.lhs.equal(o.rhs) && s.rhs.equal(o.lhs))
	case opDiv:
		return s.lhs.equal(o.lhs) && s.rhs.equal(o.rhs)
	case opSqrt:
		return s.lhs.equal(o.lhs)
	default:
		if s.ptr != nil || o.ptr != nil {
			return s.ptr == o.ptr
		}
		return s.value == o.value
	}
}

// Parameter is a handle on a deferred-evaluation scalar. Its numeric value
// is produced on demand by Value, reading the current contents of any
// pointer cells in its DAG. The zero Parameter is the constant 0.
type Parameter struct {
	source *parameterSource
}

// NewParameter returns a literal constant parameter.
func NewParameter(v float64) Parameter {
	return Parameter{source: &parameterSource{value: v}}
}

// NewDynParameter returns a dynamic parameter reading from ptr.
// The cell must outlive every solver that references the parameter.
func NewDynParameter(ptr *float64) Parameter {
	if ptr == nil {
		failf(NumericDomain, "dynamic parameter requires a non-nil cell")
	}
	return Parameter{source: &parameterSource{ptr: ptr}}
}

func (p Parameter) src() *parameterSource {
	if p.source == nil {
		return constZero
	}
	return p.source
}

// Value evaluates the DAG once against the current pointer cells.
func (p Parameter) Value() float64 {
	return p.src().eval()
}

// IsZero reports whether p is the literal constant 0. A dynamic parameter
// whose cell currently holds 0 is not zero.
func (p Parameter) IsZero() bool {
	s := p.src()
	return s.isConstant() && s.value == 0
}

// IsOne reports whether p is the literal constant 1.
func (p Parameter) IsOne() bool {
	s := p.src()
	return s.isConstant() && s.value == 1
}

// Equal reports structural DAG equality, commutatively for Add and Mul.
// Pointer leaves compare by cell address, constants by value.
func (p Parameter) Equal(o Parameter) bool {
	return p.src().equal(o.src())
}

// Add returns p + o with constructor-time reductions:
// 0 absorbs into the other operand and two constants fold.
func (p Parameter) Add(o Parameter) Parameter {
	switch {
	case o.IsZero():
		return p
	case p.IsZero():
		return o
	case p.src().isConstant() && o.src().isConstant():
		return NewParameter(p.Value() + o.Value())
	}
	return Parameter{source: &parameterSource{op: opAdd, lhs: p.src(), rhs: o.src()}}
}

// Sub returns p - o.
func (p Parameter) Sub(o Parameter) Parameter {
	return p.Add(o.Neg())
}

// Neg returns -p as multiplication by the constant -1.
func (p Parameter) Neg() Parameter {
	return NewParameter(-1).Mul(p)
}

// Mul returns p · o. A literal zero factor collapses the product to zero
// and two constants fold.
func (p Parameter) Mul(o Parameter) Parameter {
	switch {
	case p.IsZero():
		return p
	case o.IsZero():
		return o
	case p.src().isConstant() && o.src().isConstant():
		return NewParameter(p.Value() * o.Value())
	}
	return Parameter{source: &parameterSource{op: opMul, lhs: p.src(), rhs: o.src()}}
}

// Div returns p ÷ o. Division by a literal zero is rejected here;
// a dynamic divisor is checked at evaluation instead.
func (p Parameter) Div(o Parameter) Parameter {
	if o.IsZero() {
		failf(NumericDomain, "division by a literal zero parameter")
	}
	switch {
	case p.IsZero() || o.IsOne():
		return p
	case p.src().isConstant() && o.src().isConstant():
		return NewParameter(p.Value() / o.Value())
	}
	return Parameter{source: &parameterSource{op: opDiv, lhs: p.src(), rhs: o.src()}}
}

// Sqrt returns √p. A literal constant folds immediately and must be
// nonnegative; a dynamic argument is checked at evaluation.
func (p Parameter) Sqrt() Parameter {
	s := p.src()
	switch {
	case p.IsZero() || p.IsOne():
		return p
	case s.isConstant():
		if s.value < 0 {
			failf(NumericDomain, "square root of the literal negative %v", s.value)
		}
		return NewParameter(math.Sqrt(s.value))
	}
	return Parameter{source: &parameterSource{op: opSqrt, lhs: s}}
}
