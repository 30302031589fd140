package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/kernelgrad/internal/kernel"
)

func TestMSELoss(t *testing.T) {
	x := f64(t, []float64{1, 2, 3, 4}, 2, 2)
	y := f64(t, []float64{0, 2, 5, 4}, 2, 2)

	out, grads := roundTrip(t, kernel.MSELoss, kernel.Attrs{}, x, y)
	assert.Empty(t, out.Shape())
	assert.InDelta(t, (1.0+0+4+0)/4, out.AsFloat64()[0], 1e-12)

	require.Len(t, grads, 2)
	assert.InDeltaSlice(t, []float64{0.5, 0, -1, 0}, grads[0].AsFloat64(), 1e-12)
	for i, dx := range grads[0].AsFloat64() {
		assert.InDelta(t, 0, dx+grads[1].AsFloat64()[i], 1e-12)
	}
}

func TestMAELoss(t *testing.T) {
	x := f64(t, []float64{1, 2, 3, 4}, 4)
	y := f64(t, []float64{0, 2, 5, 4.5}, 4)

	out, grads := roundTrip(t, kernel.MAELoss, kernel.Attrs{}, x, y)
	assert.InDelta(t, (1.0+0+2+0.5)/4, out.AsFloat64()[0], 1e-12)
	// sign(0) = 0
	assert.InDeltaSlice(t, []float64{0.25, 0, -0.25, -0.25}, grads[0].AsFloat64(), 1e-12)
	assert.InDeltaSlice(t, []float64{-0.25, 0, 0.25, 0.25}, grads[1].AsFloat64(), 1e-12)
}

func TestLossScalesSeed(t *testing.T) {
	b := cpuBackend()
	x := f64(t, []float64{1, 3, -2, 0.5}, 2, 2)
	y := f64(t, []float64{0, 1, 1, 0.5}, 2, 2)
	const g = 3.0

	tests := []struct {
		kind kernel.Kind
		dx   []float64
	}{
		// 2 * (x - y) / numel * g
		{kernel.MSELoss, []float64{1.5, 3, -4.5, 0}},
		// sign(x - y) / numel * g
		{kernel.MAELoss, []float64{0.75, 0.75, -0.75, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			k, err := kernel.Lookup(tt.kind)
			require.NoError(t, err)

			_, ctx, err := k.Forward(b, kernel.Attrs{}, x, y)
			require.NoError(t, err)

			grads, err := k.Backward(b, f64(t, []float64{g}), ctx)
			require.NoError(t, err)
			require.Len(t, grads, 2)
			assert.InDeltaSlice(t, tt.dx, grads[0].AsFloat64(), 1e-12)
			for i, dx := range tt.dx {
				assert.InDelta(t, -dx, grads[1].AsFloat64()[i], 1e-12)
			}
		})
	}
}
