package kernel

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// ReduceBroadcast reduces a gradient to the shape of an input that was
// broadcast in the forward pass. It is the adjoint of broadcasting:
// forward replicates along an axis, backward sums along the same axis.
//
// Leading axes absent from target are summed away, then every axis where
// target has size 1 and grad does not is summed with the dimension kept.
//
// Example:
//
//	Forward:  a[3,1] + b[3,4] -> c[3,4]  (a broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
//
// The result never aliases grad.
func ReduceBroadcast(b Backend, grad *tensor.RawTensor, target tensor.Shape) (*tensor.RawTensor, error) {
	gradShape := grad.Shape()
	if gradShape.Equal(target) {
		return grad.Clone(), nil
	}

	out, _, err := tensor.BroadcastShapes(target, gradShape)
	if err != nil || !out.Equal(gradShape) {
		return nil, fmt.Errorf("cannot reduce gradient %v to %v: %w", gradShape, target, ErrShape)
	}

	result := grad
	for lead := len(gradShape) - len(target); lead > 0; lead-- {
		result = b.SumDim(result, 0, false)
	}
	for i, dim := range target {
		if dim == 1 && result.Shape()[i] != 1 {
			result = b.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(target) {
		result = b.Reshape(result, target)
	}
	return result, nil
}

// SegmentSum groups the rows of x into buckets by index and sums each bucket:
//
//	out[index[r]] += x[r]
//
// x has shape [R, ...] and index length R; the result has shape [buckets, ...].
func SegmentSum(b Backend, x, index *tensor.RawTensor, buckets int) (*tensor.RawTensor, error) {
	if len(x.Shape()) == 0 {
		return nil, fmt.Errorf("segment sum: input must have a row dimension, got %v: %w", x.Shape(), ErrShape)
	}
	if buckets <= 0 {
		return nil, fmt.Errorf("segment sum: bucket count must be > 0, got %d: %w", buckets, ErrShape)
	}
	if err := validateIndex(index, x.Shape()[0], buckets); err != nil {
		return nil, fmt.Errorf("segment sum: %w", err)
	}
	return b.IndexAdd(x, index, buckets), nil
}

// GatherSegments is the adjoint of SegmentSum: every row receives the
// gradient of the bucket it was summed into,
//
//	grad_x[r] = grad[index[r]]
//
// No row-level summation is needed; it already happened forming the bucket.
func GatherSegments(b Backend, grad, index *tensor.RawTensor) (*tensor.RawTensor, error) {
	if len(grad.Shape()) == 0 {
		return nil, fmt.Errorf("gather segments: gradient must have a bucket dimension, got %v: %w", grad.Shape(), ErrShape)
	}
	if len(index.Shape()) != 1 {
		return nil, fmt.Errorf("gather segments: index must be 1-D, got %v: %w", index.Shape(), ErrShape)
	}
	if err := validateIndex(index, index.Shape()[0], grad.Shape()[0]); err != nil {
		return nil, fmt.Errorf("gather segments: %w", err)
	}
	return b.IndexSelect(grad, index), nil
}

// CheckSorted returns an error wrapping ErrIndex if index is not
// non-decreasing. SumAggr only guarantees its documented behavior for
// sorted indices; callers sort before dispatching.
func CheckSorted(index *tensor.RawTensor) error {
	if !index.DType().IsInteger() {
		return fmt.Errorf("index must be int32 or int64, got %s: %w", index.DType(), ErrDType)
	}
	values := index.Ints()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return fmt.Errorf("index not sorted at position %d (%d after %d): %w", i, values[i], values[i-1], ErrIndex)
		}
	}
	return nil
}

// validateIndex checks that index is a 1-D integer tensor of length rows
// whose values lie in [0, buckets).
func validateIndex(index *tensor.RawTensor, rows, buckets int) error {
	if !index.DType().IsInteger() {
		return fmt.Errorf("index must be int32 or int64, got %s: %w", index.DType(), ErrDType)
	}
	if len(index.Shape()) != 1 || index.Shape()[0] != rows {
		return fmt.Errorf("index shape %v, want [%d]: %w", index.Shape(), rows, ErrShape)
	}
	for r, v := range index.Ints() {
		if v < 0 || v >= buckets {
			return fmt.Errorf("index %d at row %d out of range [0, %d): %w", v, r, buckets, ErrIndex)
		}
	}
	return nil
}
