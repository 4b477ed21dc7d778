// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cvx

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestShapeBridges(t *testing.T) {

	v := ParVec(mat.NewVecDense(3, []float64{1, 2, 3}))
	if v.Sum().Evaluate() != 6 {
		t.Fatal("TestShapeBridges: ParVec")
	}

	m := ParMat(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	if m.Sum().Evaluate() != 10 || m.At(1, 0).Evaluate() != 3 {
		t.Fatal("TestShapeBridges: ParMat")
	}
	if m.T().At(0, 1).Evaluate() != 3 {
		t.Fatal("TestShapeBridges: Transpose")
	}

	x := NewVarVec("x", 2)
	linkValues(t, x, []float64{1, 2})
	mx := m.MulVec(x)
	if mx[0].Evaluate() != 5 || mx[1].Evaluate() != 11 {
		t.Fatal("TestShapeBridges: MulVec")
	}

	ev := EvalVec(mx)
	if ev.AtVec(1) != 11 {
		t.Fatal("TestShapeBridges: EvalVec")
	}
}

func TestDynamicShapeBridges(t *testing.T) {

	cells := []float64{1, 2}
	v := DynParVec(cells)
	if v.Sum().Evaluate() != 3 {
		t.Fatal("TestDynamicShapeBridges: Initial Cells")
	}
	cells[0] = 10
	if v.Sum().Evaluate() != 12 {
		t.Fatal("TestDynamicShapeBridges: Mutated Cells")
	}

	d := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	dm := DynParMat(d)
	if dm.Sum().Evaluate() != 10 {
		t.Fatal("TestDynamicShapeBridges: Initial Matrix")
	}
	d.Set(0, 0, 5)
	if dm.Sum().Evaluate() != 14 {
		t.Fatal("TestDynamicShapeBridges: Mutated Matrix")
	}
}

func TestRepBroadcast(t *testing.T) {

	x := NewVarVec("x", 3)
	cs := BoxVec(Rep(Param(-1), 3), x, Rep(Param(1), 3))
	if len(cs) != 3 || cs[2].Kind() != KindBox {
		t.Fatal("TestRepBroadcast: Box Constraints")
	}
}
