package cpu

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// Expand broadcasts x to shape, replicating values along every broadcast
// dimension.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot broadcast %v to %v", x.Shape(), shape))
	}

	result := tensor.MustRaw(shape, x.DType())
	outStrides := shape.ComputeStrides()
	srcStrides := x.Shape().ComputeStrides()

	switch x.DType() {
	case tensor.Float32:
		expand(result.AsFloat32(), x.AsFloat32(), shape, x.Shape(), outStrides, srcStrides)
	case tensor.Float64:
		expand(result.AsFloat64(), x.AsFloat64(), shape, x.Shape(), outStrides, srcStrides)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", x.DType()))
	}

	return result
}

// Reshape returns a copy of t with a new shape holding the same number of elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.Reshape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

func expand[T float](dst, src []T, out, in tensor.Shape, outStrides, inStrides []int) {
	for i := range dst {
		dst[i] = src[tensor.BroadcastIndex(i, out, in, outStrides, inStrides)]
	}
}
