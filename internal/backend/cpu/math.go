package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/kernelgrad/internal/parallel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// Neg computes -x element-wise.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("neg", x, func(v float64) float64 { return -v })
}

// Sqrt computes the element-wise square root.
// Negative inputs produce NaN.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sqrt", x, math.Sqrt)
}

// Abs computes the element-wise absolute value.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("abs", x, math.Abs)
}

// Sign returns 1 for positive, -1 for negative and 0 for zero elements.
// NaN stays NaN.
func (cpu *CPUBackend) Sign(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sign", x, func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return v
		}
	})
}

// Step returns 1 where x > 0 and 0 elsewhere.
func (cpu *CPUBackend) Step(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("step", x, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
}

// Sigmoid computes σ(x) = 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sigmoid", x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}

// unaryOp applies fn element-wise, computing in float64 for both float dtypes.
func (cpu *CPUBackend) unaryOp(name string, x *tensor.RawTensor, fn func(float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		parallel.Chunks(len(dst), cpu.par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				dst[i] = float32(fn(float64(src[i])))
			}
		})
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		parallel.Chunks(len(dst), cpu.par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				dst[i] = fn(src[i])
			}
		})
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, x.DType()))
	}

	return result
}
