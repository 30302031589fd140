// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand/v2"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// RawTensor is a dense row-major tensor.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Typed data access via AsFloat32(), AsFloat64(), AsInt32(), AsInt64()
//   - Deep copies via Clone()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32()
//	clone := raw.Clone()
type RawTensor = tensor.RawTensor

// Shape is the size of each tensor dimension, outermost first.
type Shape = tensor.Shape

// DataType is the element type of a tensor.
type DataType = tensor.DataType

// Numeric is the set of Go element types a tensor can hold.
type Numeric = tensor.Numeric

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
)

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T Numeric](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.Ones(shape, dtype)
}

// Full creates a tensor filled with value.
func Full(shape Shape, dtype DataType, value float64) (*RawTensor, error) {
	return tensor.Full(shape, dtype, value)
}

// Rand creates a float tensor with values drawn uniformly from [low, high).
func Rand(rng *rand.Rand, shape Shape, dtype DataType, low, high float64) (*RawTensor, error) {
	return tensor.Rand(rng, shape, dtype, low, high)
}

// RandIndex creates an int64 index tensor of n values in [0, high),
// optionally sorted ascending.
func RandIndex(rng *rand.Rand, n, high int, sorted bool) (*RawTensor, error) {
	return tensor.RandIndex(rng, n, high, sorted)
}

// BroadcastShapes returns the broadcast shape of a and b, and whether
// broadcasting was needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
