package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

func f64(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return raw
}

func i64(t *testing.T, data []int64) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape{len(data)})
	require.NoError(t, err)
	return raw
}

func ones(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Ones(shape, tensor.Float64)
	require.NoError(t, err)
	return raw
}

// roundTrip runs forward then backward seeded with ones.
func roundTrip(t *testing.T, kind kernel.Kind, attrs kernel.Attrs, inputs ...*tensor.RawTensor) (*tensor.RawTensor, []*tensor.RawTensor) {
	t.Helper()
	k, err := kernel.Lookup(kind)
	require.NoError(t, err)

	b := cpu.New()
	out, ctx, err := k.Forward(b, attrs, inputs...)
	require.NoError(t, err)
	require.Equal(t, kind, ctx.Kind())

	grads, err := k.Backward(b, ones(t, out.Shape()), ctx)
	require.NoError(t, err)
	return out, grads
}
