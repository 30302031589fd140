package tensor

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// FromSlice creates a tensor holding a copy of data with the given shape.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T Numeric](data []T, shape Shape) (*RawTensor, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, inferDataType[T]())
	if err != nil {
		return nil, err
	}

	switch d := any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), d)
	case []float64:
		copy(raw.AsFloat64(), d)
	case []int32:
		copy(raw.AsInt32(), d)
	case []int64:
		copy(raw.AsInt64(), d)
	}
	return raw, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return NewRaw(shape, dtype)
}

// Full creates a floating-point tensor filled with a specific value.
func Full(shape Shape, dtype DataType, value float64) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = value
		}
	default:
		return nil, fmt.Errorf("full: unsupported dtype %s", dtype)
	}
	return raw, nil
}

// Ones creates a floating-point tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*RawTensor, error) {
	return Full(shape, dtype, 1)
}

// Rand creates a floating-point tensor with values uniformly distributed in
// [low, high) drawn from rng.
func Rand(rng *rand.Rand, shape Shape, dtype DataType, low, high float64) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	span := high - low
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(low + span*rng.Float64())
		}
	case Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = low + span*rng.Float64()
		}
	default:
		return nil, fmt.Errorf("rand: only supports float32 and float64, got %s", dtype)
	}
	return raw, nil
}

// RandIndex creates an Int64 1-D tensor of length n with values drawn
// uniformly from [0, high). When sorted is true the values are returned in
// non-decreasing order.
func RandIndex(rng *rand.Rand, n, high int, sorted bool) (*RawTensor, error) {
	if high <= 0 {
		return nil, fmt.Errorf("rand index: upper bound must be > 0, got %d", high)
	}
	values := make([]int64, n)
	for i := range values {
		values[i] = rng.Int64N(int64(high))
	}
	if sorted {
		slices.Sort(values)
	}
	return FromSlice(values, Shape{n})
}
