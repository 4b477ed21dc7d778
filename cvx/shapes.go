// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

import "gonum.org/v1/gonum/mat"

// VectorX is a dense vector of scalar expressions.
type VectorX []Scalar

// NewVarVec returns a fresh unregistered vector variable.
func NewVarVec(name string, rows int) VectorX {
	v := make(VectorX, rows)
	for row := range v {
		v[row] = variableScalar(newVariable(name, row, 0, ShapeVector))
	}
	return v
}

// ParVec lifts a numeric vector into constant expressions.
func ParVec(v mat.Vector) VectorX {
	out := make(VectorX, v.Len())
	for i := range out {
		out[i] = Param(v.AtVec(i))
	}
	return out
}

// ParSlice lifts a numeric slice into constant expressions.
func ParSlice(v []float64) VectorX {
	out := make(VectorX, len(v))
	for i := range out {
		out[i] = Param(v[i])
	}
	return out
}

// DynParVec lifts a slice of cells into dynamic expressions, one pointer
// per element. Mutating cells[i] is visible on the next evaluation.
func DynParVec(cells []float64) VectorX {
	out := make(VectorX, len(cells))
	for i := range out {
		out[i] = DynParam(&cells[i])
	}
	return out
}

// Rep repeats a scalar expression into an n-vector, for broadcasting
// against shaped operands.
func Rep(s Scalar, n int) VectorX {
	out := make(VectorX, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// Sum returns the sum of all elements.
func (v VectorX) Sum() Scalar {
	sum := Param(0)
	for _, s := range v {
		sum = sum.Add(s)
	}
	return sum
}

// Dot returns vᵀo under the multiplication order rules.
func (v VectorX) Dot(o VectorX) Scalar {
	if len(v) != len(o) {
		failf(InvalidArity, "dot product of vectors with %d and %d elements", len(v), len(o))
	}
	sum := Param(0)
	for i := range v {
		sum = sum.Add(v[i].Mul(o[i]))
	}
	return sum
}

// SquaredNorm returns vᵀv.
func (v VectorX) SquaredNorm() Scalar {
	return v.Dot(v)
}

// Norm returns ‖v‖₂ as a norm-flagged expression.
func (v VectorX) Norm() Scalar {
	return Sqrt(v.SquaredNorm())
}

// Add returns the element-wise sum.
func (v VectorX) Add(o VectorX) VectorX {
	if len(v) != len(o) {
		failf(InvalidArity, "sum of vectors with %d and %d elements", len(v), len(o))
	}
	out := make(VectorX, len(v))
	for i := range v {
		out[i] = v[i].Add(o[i])
	}
	return out
}

// Sub returns the element-wise difference.
func (v VectorX) Sub(o VectorX) VectorX {
	if len(v) != len(o) {
		failf(InvalidArity, "difference of vectors with %d and %d elements", len(v), len(o))
	}
	out := make(VectorX, len(v))
	for i := range v {
		out[i] = v[i].Sub(o[i])
	}
	return out
}

// MulElem returns the element-wise product.
func (v VectorX) MulElem(o VectorX) VectorX {
	if len(v) != len(o) {
		failf(InvalidArity, "element product of vectors with %d and %d elements", len(v), len(o))
	}
	out := make(VectorX, len(v))
	for i := range v {
		out[i] = v[i].Mul(o[i])
	}
	return out
}

// Scale returns s·v.
func (v VectorX) Scale(s Scalar) VectorX {
	out := make(VectorX, len(v))
	for i := range v {
		out[i] = s.Mul(v[i])
	}
	return out
}

// Neg returns -v.
func (v VectorX) Neg() VectorX {
	return v.Scale(Param(-1))
}

// MatrixX is a dense row-major matrix of scalar expressions.
type MatrixX struct {
	rows, cols int
	data       []Scalar
}

// NewVarMat returns a fresh unregistered matrix variable.
func NewVarMat(name string, rows, cols int) MatrixX {
	m := MatrixX{rows: rows, cols: cols, data: make([]Scalar, rows*cols)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			m.data[row*cols+col] = variableScalar(newVariable(name, row, col, ShapeMatrix))
		}
	}
	return m
}

// ParMat lifts a numeric matrix into constant expressions.
func ParMat(src mat.Matrix) MatrixX {
	rows, cols := src.Dims()
	m := MatrixX{rows: rows, cols: cols, data: make([]Scalar, rows*cols)}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i*cols+j] = Param(src.At(i, j))
		}
	}
	return m
}

// DynParMat lifts a dense matrix into dynamic expressions pointing at the
// matrix backing storage, so mutations through src show up on the next
// evaluation.
func DynParMat(src *mat.Dense) MatrixX {
	rows, cols := src.Dims()
	raw := src.RawMatrix()
	m := MatrixX{rows: rows, cols: cols, data: make([]Scalar, rows*cols)}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i*cols+j] = DynParam(&raw.Data[i*raw.Stride+j])
		}
	}
	return m
}

// Dims returns the shape.
func (m MatrixX) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// At returns the element at (i, j).
func (m MatrixX) At(i, j int) Scalar {
	return m.data[i*m.cols+j]
}

// Row returns a copy of row i.
func (m MatrixX) Row(i int) VectorX {
	out := make(VectorX, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Col returns a copy of column j.
func (m MatrixX) Col(j int) VectorX {
	out := make(VectorX, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// T returns the transpose.
func (m MatrixX) T() MatrixX {
	out := MatrixX{rows: m.cols, cols: m.rows, data: make([]Scalar, len(m.data))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Flatten returns the elements row by row.
func (m MatrixX) Flatten() VectorX {
	out := make(VectorX, len(m.data))
	copy(out, m.data)
	return out
}

// Sum returns the sum of all elements.
func (m MatrixX) Sum() Scalar {
	return m.Flatten().Sum()
}

// SquaredNorm returns the sum of squared elements.
func (m MatrixX) SquaredNorm() Scalar {
	return m.Flatten().SquaredNorm()
}

// MulVec returns the matrix-vector product under the order rules.
func (m MatrixX) MulVec(x VectorX) VectorX {
	if m.cols != len(x) {
		failf(InvalidArity, "product of a %dx%d matrix with a %d-vector", m.rows, m.cols, len(x))
	}
	out := make(VectorX, m.rows)
	for i := range out {
		sum := Param(0)
		for j := 0; j < m.cols; j++ {
			sum = sum.Add(m.data[i*m.cols+j].Mul(x[j]))
		}
		out[i] = sum
	}
	return out
}

// EvalVec evaluates every element into a numeric vector.
func EvalVec(v VectorX) *mat.VecDense {
	out := mat.NewVecDense(len(v), nil)
	for i, s := range v {
		out.SetVec(i, s.Evaluate())
	}
	return out
}

// EvalMat evaluates every element into a numeric matrix.
func EvalMat(m MatrixX) *mat.Dense {
	out := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.Set(i, j, m.data[i*m.cols+j].Evaluate())
		}
	}
	return out
}

// EqualToVec builds one equality per element.
func EqualToVec(lhs, rhs VectorX) []Constraint {
	if len(lhs) != len(rhs) {
		failf(InvalidArity, "equality of vectors with %d and %d elements", len(lhs), len(rhs))
	}
	out := make([]Constraint, len(lhs))
	for i := range lhs {
		out[i] = EqualTo(lhs[i], rhs[i])
	}
	return out
}

// LessThanVec builds one inequality per element.
func LessThanVec(lhs, rhs VectorX) []Constraint {
	if len(lhs) != len(rhs) {
		failf(InvalidArity, "inequality of vectors with %d and %d elements", len(lhs), len(rhs))
	}
	out := make([]Constraint, len(lhs))
	for i := range lhs {
		out[i] = LessThan(lhs[i], rhs[i])
	}
	return out
}

// GreaterThanVec builds one inequality per element.
func GreaterThanVec(lhs, rhs VectorX) []Constraint {
	return LessThanVec(rhs, lhs)
}

// BoxVec builds one box constraint per element.
func BoxVec(lower, middle, upper VectorX) []Constraint {
	if len(lower) != len(middle) || len(middle) != len(upper) {
		failf(InvalidArity, "box of vectors with %d, %d and %d elements", len(lower), len(middle), len(upper))
	}
	out := make([]Constraint, len(middle))
	for i := range middle {
		out[i] = Box(lower[i], middle[i], upper[i])
	}
	return out
}
