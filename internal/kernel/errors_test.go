package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

func cpuBackend() kernel.Backend { return cpu.New() }

func TestBackwardRejectsForeignContext(t *testing.T) {
	b := cpuBackend()
	add, err := kernel.Lookup(kernel.Add)
	require.NoError(t, err)
	mul, err := kernel.Lookup(kernel.Mul)
	require.NoError(t, err)

	x := f64(t, []float64{1, 2}, 2)
	out, ctx, err := add.Forward(b, kernel.Attrs{}, x, x)
	require.NoError(t, err)

	_, err = mul.Backward(b, out, ctx)
	assert.ErrorIs(t, err, kernel.ErrContext)

	_, err = mul.Backward(b, out, nil)
	assert.ErrorIs(t, err, kernel.ErrContext)

	// A zero-value context was never produced by forward.
	_, err = mul.Backward(b, out, &kernel.MulContext{})
	assert.ErrorIs(t, err, kernel.ErrContext)
}

func TestBackwardRejectsGradientShape(t *testing.T) {
	b := cpuBackend()
	k, err := kernel.Lookup(kernel.Sigmoid)
	require.NoError(t, err)

	_, ctx, err := k.Forward(b, kernel.Attrs{}, f64(t, []float64{1, 2, 3, 4}, 2, 2))
	require.NoError(t, err)

	_, err = k.Backward(b, f64(t, []float64{1, 2, 3, 4}, 4), ctx)
	assert.ErrorIs(t, err, kernel.ErrShape)

	_, err = k.Backward(b, nil, ctx)
	assert.ErrorIs(t, err, kernel.ErrShape)

	g32, err := tensor.Ones(tensor.Shape{2, 2}, tensor.Float32)
	require.NoError(t, err)
	_, err = k.Backward(b, g32, ctx)
	assert.ErrorIs(t, err, kernel.ErrDType)
}

func TestForwardValidatesInputs(t *testing.T) {
	b := cpuBackend()
	k, err := kernel.Lookup(kernel.Add)
	require.NoError(t, err)

	x := f64(t, []float64{1, 2}, 2)
	_, _, err = k.Forward(b, kernel.Attrs{}, x)
	assert.ErrorIs(t, err, kernel.ErrShape)

	_, _, err = k.Forward(b, kernel.Attrs{}, x, nil)
	assert.ErrorIs(t, err, kernel.ErrShape)

	_, _, err = k.Forward(b, kernel.Attrs{}, x, i64(t, []int64{1, 2}))
	assert.ErrorIs(t, err, kernel.ErrDType)

	x32, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	_, _, err = k.Forward(b, kernel.Attrs{}, x, x32)
	assert.ErrorIs(t, err, kernel.ErrDType)
}

func TestErrorMessagesNameKernel(t *testing.T) {
	k, err := kernel.Lookup(kernel.MulBroadcast)
	require.NoError(t, err)
	_, _, err = k.Forward(cpuBackend(), kernel.Attrs{}, f64(t, []float64{1, 2, 3}, 3), f64(t, []float64{1, 2}, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mul_broadcast")
}

func TestKernelsDoNotModifyInputs(t *testing.T) {
	for _, kind := range []kernel.Kind{kernel.Div, kernel.MulBroadcast, kernel.MSELoss} {
		x := f64(t, []float64{1, 2, 3, 4}, 2, 2)
		y := f64(t, []float64{2, 2, 2, 2}, 2, 2)
		_, _ = roundTrip(t, kind, kernel.Attrs{}, x, y)
		assert.Equal(t, []float64{1, 2, 3, 4}, x.AsFloat64(), kind.String())
		assert.Equal(t, []float64{2, 2, 2, 2}, y.AsFloat64(), kind.String())
	}
}
