package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

func TestUnaryOps(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float32{-4, 0, 9}, tensor.Shape{3})

	assertFloat32s(t, backend.Neg(x), tensor.Shape{3}, []float32{4, 0, -9})
	assertFloat32s(t, backend.Abs(x), tensor.Shape{3}, []float32{4, 0, 9})
	assertFloat32s(t, backend.Sign(x), tensor.Shape{3}, []float32{-1, 0, 1})
	assertFloat32s(t, backend.Step(x), tensor.Shape{3}, []float32{0, 0, 1})

	sqrt := backend.Sqrt(x).AsFloat32()
	if !math.IsNaN(float64(sqrt[0])) || sqrt[1] != 0 || sqrt[2] != 3 {
		t.Errorf("Sqrt = %v, want [NaN 0 3]", sqrt)
	}
}

func TestSignPreservesNaN(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{math.NaN(), math.Inf(-1)}, tensor.Shape{2})

	got := backend.Sign(x).AsFloat64()
	if !math.IsNaN(got[0]) {
		t.Errorf("Sign(NaN) = %v, want NaN", got[0])
	}
	if got[1] != -1 {
		t.Errorf("Sign(-Inf) = %v, want -1", got[1])
	}
}

func TestClampMin(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{math.Inf(-1), -1, 0.5, math.Inf(1)}, tensor.Shape{4})

	got := backend.ClampMin(x, 0).AsFloat64()
	want := []float64{0, 0, 0.5, math.Inf(1)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ClampMin[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSigmoid(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{0, 2, -2}, tensor.Shape{3})

	got := backend.Sigmoid(x).AsFloat64()
	if got[0] != 0.5 {
		t.Errorf("Sigmoid(0) = %v, want 0.5", got[0])
	}
	if math.Abs(got[1]+got[2]-1) > 1e-12 {
		t.Errorf("Sigmoid(2) + Sigmoid(-2) = %v, want 1", got[1]+got[2])
	}
}

func TestScalarOps(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float32{1, -2}, tensor.Shape{2})

	assertFloat32s(t, backend.MulScalar(x, 3), tensor.Shape{2}, []float32{3, -6})
	assertFloat32s(t, backend.AddScalar(x, 0.5), tensor.Shape{2}, []float32{1.5, -1.5})
}

func TestUnaryRejectsIntegers(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []int64{1, 2}, tensor.Shape{2})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Sqrt on int64 should panic")
		}
	}()
	backend.Sqrt(x)
}
