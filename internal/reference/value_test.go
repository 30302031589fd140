package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

func TestValueChainRule(t *testing.T) {
	// f(a, b) = (a * b + a) / b
	a := NewValue(3)
	b := NewValue(2)
	f := a.Mul(b).Add(a).Div(b)

	Backward([]*Value{f}, []float64{1})

	assert.InDelta(t, 4.5, f.Data, 1e-12)
	// df/da = (b + 1) / b
	assert.InDelta(t, 1.5, a.Grad, 1e-12)
	// df/db = -a / b²
	assert.InDelta(t, -0.75, b.Grad, 1e-12)
}

func TestValueSharedSubexpression(t *testing.T) {
	x := NewValue(2)
	y := x.Mul(x).Add(x) // x² + x

	Backward([]*Value{y}, []float64{1})
	assert.InDelta(t, 5, x.Grad, 1e-12)
}

func TestValueUnary(t *testing.T) {
	tests := []struct {
		name  string
		f     func(*Value) *Value
		x     float64
		value float64
		grad  float64
	}{
		{"sqrt", (*Value).Sqrt, 4, 2, 0.25},
		{"exp", (*Value).Exp, 0, 1, 1},
		{"abs", (*Value).Abs, -3, 3, -1},
		{"abs at zero", (*Value).Abs, 0, 0, 0},
		{"relu", (*Value).ReLU, -1, 0, 0},
		{"relu positive", (*Value).ReLU, 2, 2, 1},
		{"sigmoid", (*Value).Sigmoid, 0, 0.5, 0.25},
		{"silu", (*Value).SiLU, 0, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewValue(tt.x)
			y := tt.f(x)
			Backward([]*Value{y}, []float64{1})
			assert.InDelta(t, tt.value, y.Data, 1e-12)
			assert.InDelta(t, tt.grad, x.Grad, 1e-12)
		})
	}
}

func TestValueSeedScales(t *testing.T) {
	x := NewValue(1.5)
	y := x.Scale(2)
	Backward([]*Value{y}, []float64{-3})
	assert.InDelta(t, -6, x.Grad, 1e-12)
}

func TestValueDeepChain(t *testing.T) {
	// Deep graphs must not overflow the stack.
	x := NewValue(1)
	y := x
	for i := 0; i < 100000; i++ {
		y = y.Add(NewValue(0))
	}
	Backward([]*Value{y}, []float64{1})
	assert.InDelta(t, 1, x.Grad, 0)
}

func TestTensorBinaryBroadcast(t *testing.T) {
	xs, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	require.NoError(t, err)
	ys, err := tensor.FromSlice([]float64{10, 20}, tensor.Shape{1, 2})
	require.NoError(t, err)

	x, y := FromRaw(xs), FromRaw(ys)
	out, err := Binary(x, y, (*Value).Mul)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape)
	assert.Equal(t, []float64{10, 40, 30, 80, 50, 120}, out.Values())

	require.NoError(t, out.Backward([]float64{1, 1, 1, 1, 1, 1}))
	assert.Equal(t, []float64{9, 12}, y.Grads())
	assert.Equal(t, []float64{10, 20, 10, 20, 10, 20}, x.Grads())

	assert.Error(t, out.Backward([]float64{1}))
}

func TestTensorSegmentSum(t *testing.T) {
	raw, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	require.NoError(t, err)
	x := FromRaw(raw)

	out, err := SegmentSum(x, []int{0, 0, 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6, 0, 0, 5, 6}, out.Values())

	require.NoError(t, out.Backward([]float64{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []float64{1, 2, 1, 2, 5, 6}, x.Grads())

	_, err = SegmentSum(x, []int{0, 3, 1}, 3)
	assert.Error(t, err)
}

func TestTensorLinearAndMean(t *testing.T) {
	xr, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	wr, _ := tensor.FromSlice([]float64{3, 4, 5, 6}, tensor.Shape{2, 2})
	br, _ := tensor.FromSlice([]float64{1, -1}, tensor.Shape{2})
	x, w, b := FromRaw(xr), FromRaw(wr), FromRaw(br)

	out, err := Linear(x, w, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 16}, out.Values())

	m := Mean(out)
	assert.Equal(t, tensor.Shape{}, m.Shape)
	require.NoError(t, m.Backward([]float64{1}))
	assert.Equal(t, []float64{4, 5}, x.Grads())
	assert.Equal(t, []float64{0.5, 1, 0.5, 1}, w.Grads())
	assert.Equal(t, []float64{0.5, 0.5}, b.Grads())

	_, err = Linear(x, x, b)
	assert.Error(t, err)
}

func TestSumRows(t *testing.T) {
	raw, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	x := FromRaw(raw)
	out, err := SumRows(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2}, out.Shape)
	assert.Equal(t, []float64{4, 6}, out.Values())

	flat := Tensor{Shape: tensor.Shape{4}, Data: x.Data}
	_, err = SumRows(flat)
	assert.Error(t, err)
}
