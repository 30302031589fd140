package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

func TestTapeChain(t *testing.T) {
	tape := NewTape(nil)

	// loss = mse(relu(x @ Wᵀ + b), target)
	x := f64(t, []float64{1, -1, 2, 0.5}, 2, 2)
	w := f64(t, []float64{1, 0, 0, 1}, 2, 2)
	b := f64(t, []float64{0, 0}, 2)
	target := f64(t, []float64{0, 0, 0, 0}, 2, 2)

	h, err := tape.Apply(kernel.Linear, kernel.Attrs{}, x, w, b)
	require.NoError(t, err)
	a, err := tape.Apply(kernel.ReLU, kernel.Attrs{}, h)
	require.NoError(t, err)
	loss, err := tape.Apply(kernel.MSELoss, kernel.Attrs{}, a, target)
	require.NoError(t, err)
	assert.Equal(t, 3, tape.NumOps())

	// h = x (identity weights), relu keeps 1, 2, 0.5; loss = (1 + 4 + 0.25) / 4
	assert.InDelta(t, 5.25/4, loss.AsFloat64()[0], 1e-12)

	one, err := tensor.Ones(tensor.Shape{}, tensor.Float64)
	require.NoError(t, err)
	grads, err := tape.Backward(loss, one)
	require.NoError(t, err)
	assert.Zero(t, tape.NumOps())

	// dL/dh = relu'(h) * 2h/4 = [0.5, 0, 1, 0.25]; dx = dh @ W = dh.
	assert.InDeltaSlice(t, []float64{0.5, 0, 1, 0.25}, grads[x].AsFloat64(), 1e-12)
	// db = colsum(dh)
	assert.InDeltaSlice(t, []float64{1.5, 0.25}, grads[b].AsFloat64(), 1e-12)
	require.Contains(t, grads, w)
	require.Contains(t, grads, target)
}

func TestTapeAccumulatesSharedInputs(t *testing.T) {
	tape := NewTape(nil)
	x := f64(t, []float64{1, 2, 3}, 3)

	// y = x * x + x
	sq, err := tape.Apply(kernel.Mul, kernel.Attrs{}, x, x)
	require.NoError(t, err)
	y, err := tape.Apply(kernel.Add, kernel.Attrs{}, sq, x)
	require.NoError(t, err)

	grads, err := tape.Backward(y, f64(t, []float64{1, 1, 1}, 3))
	require.NoError(t, err)

	// dy/dx = 2x + 1
	assert.Equal(t, []float64{3, 5, 7}, grads[x].AsFloat64())
}

func TestTapeSkipsUnreachedNodes(t *testing.T) {
	tape := NewTape(nil)
	x := f64(t, []float64{4}, 1)

	_, err := tape.Apply(kernel.Sqrt, kernel.Attrs{}, x)
	require.NoError(t, err)
	y, err := tape.Apply(kernel.Sigmoid, kernel.Attrs{}, x)
	require.NoError(t, err)

	grads, err := tape.Backward(y, f64(t, []float64{1}, 1))
	require.NoError(t, err)
	require.Contains(t, grads, x)
	s := y.AsFloat64()[0]
	assert.InDelta(t, s*(1-s), grads[x].AsFloat64()[0], 1e-12)
}

func TestTapeBackwardError(t *testing.T) {
	tape := NewTape(nil)
	x := f64(t, []float64{1, 2}, 2)
	y, err := tape.Apply(kernel.Sigmoid, kernel.Attrs{}, x)
	require.NoError(t, err)

	_, err = tape.Backward(y, f64(t, []float64{1}, 1))
	assert.ErrorIs(t, err, kernel.ErrShape)
	assert.Zero(t, tape.NumOps())
}
