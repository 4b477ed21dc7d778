// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

// VariableShape tags the container a named variable was created in.
type VariableShape int8

const (
	ShapeScalar VariableShape = iota
	ShapeVector
	ShapeMatrix
)

// variableSource is the shared identity of a decision variable.
// Two Variable handles are the same variable iff they share a source.
// The solver back-link (sol, idx) is set while a canonicalizer owns the
// variable and cleared again on release.
type variableSource struct {
	name     string
	row, col int
	shape    VariableShape
	sol      *SolutionVector
	idx      int
}

// Variable is a handle on a named decision variable. Handles are cheap to
// copy; every copy refers to the same underlying variable.
type Variable struct {
	source *variableSource
}

func newVariable(name string, row, col int, shape VariableShape) Variable {
	return Variable{source: &variableSource{name: name, row: row, col: col, shape: shape}}
}

// Equal reports identity: both handles share the same source.
func (v Variable) Equal(o Variable) bool {
	return v.source == o.source
}

// Name returns the display name the variable was created with.
func (v Variable) Name() string {
	return v.source.name
}

// IsLinked reports whether a canonicalizer has assigned the variable a
// dense index into a solution storage.
func (v Variable) IsLinked() bool {
	return v.source.sol != nil
}

// LinkTo binds the variable to sol at index idx and reports whether the
// link was freshly made, so callers can count new variables exactly once.
// Re-linking to the same storage is a no-op; linking to a different
// storage while linked is a conflict.
func (v Variable) LinkTo(sol *SolutionVector, idx int) bool {
	src := v.source
	if src.sol != nil {
		if src.sol != sol {
			failf(LinkConflict, "variable %q is already linked to another solver", src.name)
		}
		return false
	}
	src.sol = sol
	src.idx = idx
	return true
}

// Unlink clears the solver back-link. The handle stays valid and reads a
// zero solution until linked again.
func (v Variable) Unlink() {
	v.source.sol = nil
	v.source.idx = 0
}

// Solution returns the current solver value, or 0 when unlinked.
// Unused variables may legitimately never be linked.
func (v Variable) Solution() float64 {
	if v.source.sol == nil {
		return 0
	}
	return v.source.sol.At(v.source.idx)
}

// ProblemIndex returns the dense index assigned by the owning
// canonicalizer.
func (v Variable) ProblemIndex() int {
	if v.source.sol == nil {
		failf(UnlinkedVariable, "variable %q must be linked to a problem first", v.source.name)
	}
	return v.source.idx
}
