package cvx

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Triplet is one sparse entry contributed during canonicalization.
type Triplet struct {
	Row, Col int
	Value    Parameter
}

// SparseParam is a column-compressed matrix of Parameters. Duplicate
// triplets are summed symbolically when the matrix is finalized, so a
// coefficient stays a single Parameter DAG that re-evaluates between
// solves.
type SparseParam struct {
	rows, cols int
	colPtr     []int
	rowInd     []int
	values     []Parameter
}

// NewSparseParam finalizes triplets into compressed-column storage.
func NewSparseParam(rows, cols int, triplets []Triplet) *SparseParam {
	ts := make([]Triplet, len(triplets))
	copy(ts, triplets)
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Col != ts[j].Col {
			return ts[i].Col < ts[j].Col
		}
		return ts[i].Row < ts[j].Row
	})

	var entryCol []int
	m := &SparseParam{rows: rows, cols: cols}
	for _, t := range ts {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			panic("triplet outside matrix dimensions")
		}
		if n := len(m.values); n > 0 && entryCol[n-1] == t.Col && m.rowInd[n-1] == t.Row {
			m.values[n-1] = m.values[n-1].Add(t.Value)
			continue
		}
		entryCol = append(entryCol, t.Col)
		m.rowInd = append(m.rowInd, t.Row)
		m.values = append(m.values, t.Value)
	}
	m.colPtr = make([]int, cols+1)
	for _, c := range entryCol {
		m.colPtr[c+1]++
	}
	for c := 0; c < cols; c++ {
		m.colPtr[c+1] += m.colPtr[c]
	}
	return m
}

// Rows returns the row count.
func (m *SparseParam) Rows() int { return m.rows }

// Cols returns the column count.
func (m *SparseParam) Cols() int { return m.cols }

// NonZeros returns the number of stored entries.
func (m *SparseParam) NonZeros() int { return len(m.values) }

// Each visits the stored entries in column-major order.
func (m *SparseParam) Each(fn func(row, col int, p Parameter)) {
	for col := 0; col < m.cols; col++ {
		for k := m.colPtr[col]; k < m.colPtr[col+1]; k++ {
			fn(m.rowInd[k], col, m.values[k])
		}
	}
}

// EvalValues evaluates the stored Parameters in storage order into dst,
// optionally negating for back ends with an opposite sign convention.
func (m *SparseParam) EvalValues(dst []float64, negate bool) []float64 {
	if dst == nil {
		dst = make([]float64, len(m.values))
	}
	if len(dst) != len(m.values) {
		panic("destination dimension not match matrix")
	}
	for i, p := range m.values {
		v := p.Value()
		if negate {
			v = -v
		}
		dst[i] = v
	}
	return dst
}

// EvalDense evaluates into a dense numeric matrix.
func (m *SparseParam) EvalDense() *mat.Dense {
	out := mat.NewDense(m.rows, m.cols, nil)
	m.Each(func(row, col int, p Parameter) {
		out.Set(row, col, p.Value())
	})
	return out
}

// EvalParams evaluates a dense Parameter vector.
func EvalParams(params []Parameter, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(params))
	}
	for i, p := range params {
		dst[i] = p.Value()
	}
	return dst
}
