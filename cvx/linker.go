// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

// SolutionVector is the shared primal storage a solver writes and linked
// variables read. It is the only mutable state shared across components
// and is written only inside Solve.
type SolutionVector struct {
	values []float64
}

// Len returns the current storage length.
func (s *SolutionVector) Len() int {
	return len(s.values)
}

// Resize grows or shrinks the storage, zero-filling new entries.
func (s *SolutionVector) Resize(n int) {
	if n <= cap(s.values) {
		old := len(s.values)
		s.values = s.values[:n]
		for i := old; i < n; i++ {
			s.values[i] = 0
		}
		return
	}
	grown := make([]float64, n)
	copy(grown, s.values)
	s.values = grown
}

// At returns the value at index i.
func (s *SolutionVector) At(i int) float64 {
	return s.values[i]
}

// SetAll copies v into the storage.
func (s *SolutionVector) SetAll(v []float64) {
	if len(v) != len(s.values) {
		panic("solution dimension not match storage")
	}
	copy(s.values, v)
}

// Linker assigns dense problem indices to variables in first-use order and
// owns the solution storage their back-links point into. Both
// canonicalizers route variable registration through it.
type Linker struct {
	vars []Variable
	sol  *SolutionVector
}

// NewLinker returns an empty linker with a fresh solution storage.
func NewLinker() *Linker {
	return &Linker{sol: &SolutionVector{}}
}

// AddVariable links v to the next free dense index if it is not linked
// yet; an already-linked variable is left untouched.
func (l *Linker) AddVariable(v Variable) {
	if v.LinkTo(l.sol, len(l.vars)) {
		l.vars = append(l.vars, v)
	}
}

// NumVariables returns the number of distinct variables linked so far.
func (l *Linker) NumVariables() int {
	return len(l.vars)
}

// Solution returns the shared storage.
func (l *Linker) Solution() *SolutionVector {
	return l.sol
}

// Release unlinks every variable this linker linked, making the handles
// safe to re-link elsewhere. Idempotent.
func (l *Linker) Release() {
	for _, v := range l.vars {
		v.Unlink()
	}
	l.vars = nil
}
