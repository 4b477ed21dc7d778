package cvx

import "testing"

func TestSparseParamFinalize(t *testing.T) {

	// Duplicates sum symbolically; columns compress in order.
	trip := []Triplet{
		{Row: 1, Col: 0, Value: NewParameter(2)},
		{Row: 0, Col: 1, Value: NewParameter(3)},
		{Row: 1, Col: 0, Value: NewParameter(4)},
		{Row: 2, Col: 2, Value: NewParameter(5)},
	}
	m := NewSparseParam(3, 3, trip)

	switch {
	case m.Rows() != 3 || m.Cols() != 3:
		t.Fatal("TestSparseParamFinalize: Dimensions")
	case m.NonZeros() != 3:
		t.Fatal("TestSparseParamFinalize: Duplicate Merge")
	}

	dense := m.EvalDense()
	switch {
	case dense.At(1, 0) != 6:
		t.Fatal("TestSparseParamFinalize: Summed Entry")
	case dense.At(0, 1) != 3 || dense.At(2, 2) != 5:
		t.Fatal("TestSparseParamFinalize: Plain Entries")
	case dense.At(0, 0) != 0:
		t.Fatal("TestSparseParamFinalize: Empty Entry")
	}

	vals := m.EvalValues(nil, true)
	if vals[0] != -6 {
		t.Fatal("TestSparseParamFinalize: Negated Values")
	}

	var visits int
	lastCol := -1
	m.Each(func(row, col int, p Parameter) {
		visits++
		if col < lastCol {
			t.Fatal("TestSparseParamFinalize: Column Order")
		}
		lastCol = col
	})
	if visits != 3 {
		t.Fatal("TestSparseParamFinalize: Visit Count")
	}
}

func TestSparseParamDynamic(t *testing.T) {

	cell := 1.
	m := NewSparseParam(1, 1, []Triplet{{Row: 0, Col: 0, Value: NewDynParameter(&cell)}})

	if m.EvalDense().At(0, 0) != 1 {
		t.Fatal("TestSparseParamDynamic: First Value")
	}
	cell = 9
	if m.EvalDense().At(0, 0) != 9 {
		t.Fatal("TestSparseParamDynamic: Updated Value")
	}
}
