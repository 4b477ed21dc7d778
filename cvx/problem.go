// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

import "gonum.org/v1/gonum/mat"

// Problem aggregates a cost expression, the four constraint lists and a
// registry of named variables. Constraints keep insertion order per kind;
// canonicalizers read the problem once at adapter construction.
type Problem struct {
	cost Scalar

	equalities   []EqualityConstraint
	nonnegatives []NonnegativeConstraint
	boxes        []BoxConstraint
	socs         []SecondOrderConeConstraint

	scalars  map[string]Scalar
	vectors  map[string]VectorX
	matrices map[string]MatrixX

	numVars int
}

// NewProblem returns an empty problem with a zero cost.
func NewProblem() *Problem {
	return &Problem{
		scalars:  make(map[string]Scalar),
		vectors:  make(map[string]VectorX),
		matrices: make(map[string]MatrixX),
	}
}

// AddVariable creates and registers a named scalar variable.
func (p *Problem) AddVariable(name string) Scalar {
	if _, ok := p.scalars[name]; ok {
		failf(DuplicateName, "could not add scalar variable %q since it already exists", name)
	}
	s := variableScalar(newVariable(name, 0, 0, ShapeScalar))
	p.scalars[name] = s
	p.numVars++
	return s
}

// AddVectorVariable creates and registers a named vector variable with one
// fresh scalar variable per row.
func (p *Problem) AddVectorVariable(name string, rows int) VectorX {
	if _, ok := p.vectors[name]; ok {
		failf(DuplicateName, "could not add vector variable %q since it already exists", name)
	}
	v := make(VectorX, rows)
	for row := range v {
		v[row] = variableScalar(newVariable(name, row, 0, ShapeVector))
	}
	p.vectors[name] = v
	p.numVars += rows
	return v
}

// AddMatrixVariable creates and registers a named matrix variable with one
// fresh scalar variable per element.
func (p *Problem) AddMatrixVariable(name string, rows, cols int) MatrixX {
	if _, ok := p.matrices[name]; ok {
		failf(DuplicateName, "could not add matrix variable %q since it already exists", name)
	}
	m := MatrixX{rows: rows, cols: cols, data: make([]Scalar, rows*cols)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			m.data[row*cols+col] = variableScalar(newVariable(name, row, col, ShapeMatrix))
		}
	}
	p.matrices[name] = m
	p.numVars += rows * cols
	return m
}

// AddConstraint appends constraints to the matching per-kind lists in
// order.
func (p *Problem) AddConstraint(constraints ...Constraint) {
	for _, c := range constraints {
		switch c.kind {
		case KindEquality:
			p.equalities = append(p.equalities, c.eq)
		case KindNonnegative:
			p.nonnegatives = append(p.nonnegatives, c.nn)
		case KindBox:
			p.boxes = append(p.boxes, c.box)
		case KindSecondOrderCone:
			p.socs = append(p.socs, c.soc)
		}
	}
}

// AddCostTerm accumulates cost += s under the expression order rules, so
// an incompatible term fails at insertion time.
func (p *Problem) AddCostTerm(s Scalar) {
	p.cost = p.cost.Add(s)
}

// Cost returns a copy of the accumulated cost expression.
func (p *Problem) Cost() Scalar {
	return Scalar{
		affine:   p.cost.affine.clone(),
		products: p.cost.Products(),
		norm:     p.cost.norm,
	}
}

// Equalities returns the equality constraints in insertion order.
func (p *Problem) Equalities() []EqualityConstraint {
	return p.equalities
}

// Nonnegatives returns the nonnegativity constraints in insertion order.
func (p *Problem) Nonnegatives() []NonnegativeConstraint {
	return p.nonnegatives
}

// Boxes returns the box constraints in insertion order.
func (p *Problem) Boxes() []BoxConstraint {
	return p.boxes
}

// SecondOrderCones returns the cone constraints in insertion order.
func (p *Problem) SecondOrderCones() []SecondOrderConeConstraint {
	return p.socs
}

// GetVariable returns the previously created scalar variable.
func (p *Problem) GetVariable(name string) Scalar {
	s, ok := p.scalars[name]
	if !ok {
		failf(MissingName, "could not find scalar variable %q, make sure it has been created first", name)
	}
	return s
}

// GetVectorVariable returns the previously created vector variable.
func (p *Problem) GetVectorVariable(name string) VectorX {
	v, ok := p.vectors[name]
	if !ok {
		failf(MissingName, "could not find vector variable %q, make sure it has been created first", name)
	}
	return v
}

// GetMatrixVariable returns the previously created matrix variable.
func (p *Problem) GetMatrixVariable(name string) MatrixX {
	m, ok := p.matrices[name]
	if !ok {
		failf(MissingName, "could not find matrix variable %q, make sure it has been created first", name)
	}
	return m
}

// GetVariableValue evaluates the named scalar variable with the linked
// solution.
func (p *Problem) GetVariableValue(name string) float64 {
	return p.GetVariable(name).Evaluate()
}

// GetVectorValue evaluates the named vector variable element-wise.
func (p *Problem) GetVectorValue(name string) *mat.VecDense {
	return EvalVec(p.GetVectorVariable(name))
}

// GetMatrixValue evaluates the named matrix variable element-wise.
func (p *Problem) GetMatrixValue(name string) *mat.Dense {
	return EvalMat(p.GetMatrixVariable(name))
}

// OptimalValue evaluates the cost with the current solutions. The result
// may differ from the back end's reported objective when constant terms
// were eliminated during canonicalization.
func (p *Problem) OptimalValue() float64 {
	return p.cost.Evaluate()
}

// NumVariables returns the number of scalar variable elements created
// through the registry.
func (p *Problem) NumVariables() int {
	return p.numVars
}
