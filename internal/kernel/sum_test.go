package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

func TestSum(t *testing.T) {
	x := f64(t, []float64{1, 2, 3, 4, 5, 6}, 3, 2)
	out, grads := roundTrip(t, kernel.Sum, kernel.Attrs{}, x)

	assert.Equal(t, []int{1, 2}, []int(out.Shape()))
	assert.Equal(t, []float64{9, 12}, out.AsFloat64())
	assert.Equal(t, []int{3, 2}, []int(grads[0].Shape()))
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, grads[0].AsFloat64())
}

func TestSumRequires2D(t *testing.T) {
	k, err := kernel.Lookup(kernel.Sum)
	require.NoError(t, err)
	_, _, err = k.Forward(cpu.New(), kernel.Attrs{}, f64(t, []float64{1, 2}, 2))
	assert.ErrorIs(t, err, kernel.ErrShape)
}

func TestSumAggr(t *testing.T) {
	// Rows: [1 2] [3 4] [5 6] [7 8] into buckets 0, 0, 2, 2; bucket 1 is empty.
	x := f64(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2)
	index := i64(t, []int64{0, 0, 2, 2})

	k, err := kernel.Lookup(kernel.SumAggr)
	require.NoError(t, err)
	b := cpu.New()

	out, ctx, err := k.Forward(b, kernel.Attrs{Buckets: 3}, x, index)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, []int(out.Shape()))
	assert.Equal(t, []float64{4, 6, 0, 0, 12, 14}, out.AsFloat64())
	assert.Equal(t, 4, ctx.(*kernel.SumAggrContext).Rows())

	// Each row receives its bucket's gradient.
	g := f64(t, []float64{1, 10, 2, 20, 3, 30}, 3, 2)
	grads, err := k.Backward(b, g, ctx)
	require.NoError(t, err)
	require.Len(t, grads, 1)
	assert.Equal(t, []float64{1, 10, 1, 10, 3, 30, 3, 30}, grads[0].AsFloat64())
}

func TestSumAggrUnsortedIndex(t *testing.T) {
	x := f64(t, []float64{1, 2, 3}, 3, 1)
	index := i64(t, []int64{1, 0, 1})

	out, grads := roundTrip(t, kernel.SumAggr, kernel.Attrs{Buckets: 2}, x, index)
	assert.Equal(t, []float64{2, 4}, out.AsFloat64())
	assert.Equal(t, []float64{1, 1, 1}, grads[0].AsFloat64())

	assert.ErrorIs(t, kernel.CheckSorted(index), kernel.ErrIndex)
	assert.NoError(t, kernel.CheckSorted(i64(t, []int64{0, 0, 1, 3})))
}

func TestSumAggrErrors(t *testing.T) {
	k, err := kernel.Lookup(kernel.SumAggr)
	require.NoError(t, err)
	b := cpu.New()
	x := f64(t, []float64{1, 2, 3}, 3, 1)

	tests := []struct {
		name    string
		index   *tensor.RawTensor
		buckets int
		want    error
	}{
		{"out of range", i64(t, []int64{0, 1, 2}), 2, kernel.ErrIndex},
		{"negative", i64(t, []int64{0, -1, 1}), 2, kernel.ErrIndex},
		{"length", i64(t, []int64{0, 1}), 2, kernel.ErrShape},
		{"no buckets", i64(t, []int64{0, 0, 0}), 0, kernel.ErrShape},
		{"float index", f64(t, []float64{0, 0, 1}, 3), 2, kernel.ErrDType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := k.Forward(b, kernel.Attrs{Buckets: tt.buckets}, x, tt.index)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReduceBroadcast(t *testing.T) {
	b := cpu.New()
	g := f64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	tests := []struct {
		target tensor.Shape
		want   []float64
	}{
		{tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6}},
		{tensor.Shape{1, 3}, []float64{5, 7, 9}},
		{tensor.Shape{2, 1}, []float64{6, 15}},
		{tensor.Shape{3}, []float64{5, 7, 9}},
		{tensor.Shape{1, 1}, []float64{21}},
		{tensor.Shape{}, []float64{21}},
	}
	for _, tt := range tests {
		got, err := kernel.ReduceBroadcast(b, g, tt.target)
		require.NoError(t, err, "%v", tt.target)
		assert.True(t, got.Shape().Equal(tt.target), "shape %v, want %v", got.Shape(), tt.target)
		assert.Equal(t, tt.want, got.AsFloat64(), "%v", tt.target)
	}

	_, err := kernel.ReduceBroadcast(b, g, tensor.Shape{2, 2})
	assert.ErrorIs(t, err, kernel.ErrShape)

	// Equal shapes return a copy.
	same, err := kernel.ReduceBroadcast(b, g, tensor.Shape{2, 3})
	require.NoError(t, err)
	same.AsFloat64()[0] = 100
	assert.Equal(t, 1.0, g.AsFloat64()[0])
}
