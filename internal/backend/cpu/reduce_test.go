package cpu

import (
	"testing"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

func TestSumDim_1D(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{4})

	// Sum along dim 0 with keepDim=true -> [1]
	assertFloat32s(t, backend.SumDim(x, 0, true), tensor.Shape{1}, []float32{10})

	// Sum along dim 0 with keepDim=false -> []
	assertFloat32s(t, backend.SumDim(x, 0, false), tensor.Shape{}, []float32{10})
}

func TestSumDim_2D(t *testing.T) {
	backend := New()
	// Row 0: [1, 2, 3]
	// Row 1: [4, 5, 6]
	x := mustFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	assertFloat32s(t, backend.SumDim(x, 0, true), tensor.Shape{1, 3}, []float32{5, 7, 9})
	assertFloat32s(t, backend.SumDim(x, 0, false), tensor.Shape{3}, []float32{5, 7, 9})
	assertFloat32s(t, backend.SumDim(x, 1, true), tensor.Shape{2, 1}, []float32{6, 15})
	assertFloat32s(t, backend.SumDim(x, -1, false), tensor.Shape{2}, []float32{6, 15})
}

func TestSumDim_3D_Middle(t *testing.T) {
	backend := New()
	data := make([]float64, 24)
	for i := range data {
		data[i] = float64(i)
	}
	x := mustFromSlice(t, data, tensor.Shape{2, 3, 4})

	got := backend.SumDim(x, 1, false)
	if !got.Shape().Equal(tensor.Shape{2, 4}) {
		t.Fatalf("shape = %v, want [2 4]", got.Shape())
	}
	// out[o][i] = sum_k x[o][k][i] = 3*(12*o + i) + 4*(0+1+2)
	for o := 0; o < 2; o++ {
		for i := 0; i < 4; i++ {
			want := float64(3*(12*o+i) + 12)
			if v := got.AsFloat64()[o*4+i]; v != want {
				t.Errorf("out[%d][%d] = %v, want %v", o, i, v, want)
			}
		}
	}
}

func TestSumDimOutOfRangePanics(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float32{1, 2}, tensor.Shape{2})

	defer func() {
		if r := recover(); r == nil {
			t.Error("SumDim with dim 1 on 1D tensor should panic")
		}
	}()
	backend.SumDim(x, 1, false)
}

func TestSum(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	got := backend.Sum(x)
	if len(got.Shape()) != 0 || got.AsFloat64()[0] != 21 {
		t.Errorf("Sum = %v %v, want scalar 21", got.Shape(), got.AsFloat64())
	}
}

func TestExpand(t *testing.T) {
	backend := New()
	row := mustFromSlice(t, []float32{1, 2}, tensor.Shape{1, 2})

	assertFloat32s(t, backend.Expand(row, tensor.Shape{3, 2}), tensor.Shape{3, 2}, []float32{1, 2, 1, 2, 1, 2})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expand [1,2] to [3,3] should panic")
		}
	}()
	backend.Expand(row, tensor.Shape{3, 3})
}

func TestReshape(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 4})

	assertFloat32s(t, backend.Reshape(x, tensor.Shape{4}), tensor.Shape{4}, []float32{1, 2, 3, 4})
}
