package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is the low-level tensor representation: a contiguous row-major
// byte buffer with shape and runtime type information.
//
// Kernels and backends treat RawTensors as immutable once returned; every
// operation allocates its result.
type RawTensor struct {
	data   []byte   // Row-major element storage
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// MustRaw is like NewRaw but panics on an invalid shape. Backends use it for
// result tensors whose shapes were already validated.
func MustRaw(shape Shape, dtype DataType) *RawTensor {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err)
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Float64s returns a copy of the elements converted to float64, whatever the
// tensor's dtype. Used for comparisons and reporting.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, r.NumElements())
	switch r.dtype {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, r.AsFloat64())
	case Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range r.AsInt64() {
			out[i] = float64(v)
		}
	}
	return out
}

// Ints returns the elements of an integer tensor as []int.
// Panics if the tensor is not Int32 or Int64.
func (r *RawTensor) Ints() []int {
	out := make([]int, r.NumElements())
	switch r.dtype {
	case Int32:
		for i, v := range r.AsInt32() {
			out[i] = int(v)
		}
	case Int64:
		for i, v := range r.AsInt64() {
			out[i] = int(v)
		}
	default:
		panic(fmt.Sprintf("tensor dtype is %s, not an integer type", r.dtype))
	}
	return out
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
}

// Reshape returns a copy of the tensor with a new shape holding the same
// number of elements.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot reshape %v (%d elements) to %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements())
	}
	out := r.Clone()
	out.shape = shape.Clone()
	out.stride = shape.ComputeStrides()
	return out, nil
}

// String returns a short description of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(%s, %v)", r.dtype, r.shape)
}
