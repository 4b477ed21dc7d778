// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

import "fmt"

// ErrorKind classifies the failure modes of the modeling layer.
type ErrorKind int

const (
	// InvalidArity element-wise helper received shape-mismatched operands.
	InvalidArity ErrorKind = iota
	// InvalidOrder operator applied to expressions of disallowed order.
	InvalidOrder
	// InvalidCost cost function violates the canonical target form.
	InvalidCost
	// InvalidConstraint constraint kind unacceptable for the canonical target form.
	InvalidConstraint
	// DuplicateName named variable created twice with the same shape.
	DuplicateName
	// MissingName named variable looked up before creation.
	MissingName
	// UnlinkedVariable problem index requested from an unlinked variable.
	UnlinkedVariable
	// LinkConflict variable linked to a second solution storage.
	LinkConflict
	// NumericDomain literal square root of a negative or division by literal zero.
	NumericDomain
	// SetupFailure back end refused the problem.
	SetupFailure
	// SolveFailure back end returned a fatal status.
	SolveFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArity:
		return "invalid arity"
	case InvalidOrder:
		return "invalid order"
	case InvalidCost:
		return "invalid cost"
	case InvalidConstraint:
		return "invalid constraint"
	case DuplicateName:
		return "duplicate name"
	case MissingName:
		return "missing name"
	case UnlinkedVariable:
		return "unlinked variable"
	case LinkConflict:
		return "link conflict"
	case NumericDomain:
		return "numeric domain"
	case SetupFailure:
		return "setup failure"
	default:
		return "solve failure"
	}
}

// Error carries a taxonomy kind alongside the failure description.
// Modeling mistakes are raised as panics with an *Error payload at the
// call that built the offending expression. Canonicalizers and solver
// adapters return an *Error as a plain error instead.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return "cvx: " + e.Msg
}

// NewError builds a taxonomy error for canonicalizers and adapters to
// return.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return errorf(kind, format, args...)
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func failf(kind ErrorKind, format string, args ...any) {
	panic(errorf(kind, format, args...))
}
