package cpu

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	y := backend.SumDim(x, 0, true)   // [4, 10] -> [1, 10]
//	z := backend.SumDim(x, 0, false)  // [4, 10] -> [10]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i := 0; i < ndim; i++ {
			if i != dim {
				outShape = append(outShape, shape[i])
			}
		}
	}

	result := tensor.MustRaw(outShape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		sumDim(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDim(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// Sum reduces every element of x into a scalar (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(tensor.Shape{}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		var s float32
		for _, v := range x.AsFloat32() {
			s += v
		}
		result.AsFloat32()[0] = s
	case tensor.Float64:
		var s float64
		for _, v := range x.AsFloat64() {
			s += v
		}
		result.AsFloat64()[0] = s
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// sumDim views the input as [outer, n, inner] and accumulates over n.
func sumDim[T float](dst, src []T, shape tensor.Shape, dim int) {
	outer := shape[:dim].NumElements()
	n := shape[dim]
	inner := 1
	if dim+1 < len(shape) {
		inner = shape[dim+1:].NumElements()
	}

	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			base := (o*n + k) * inner
			for i := 0; i < inner; i++ {
				dst[o*inner+i] += src[base+i]
			}
		}
	}
}
