package cpu

import (
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unaryOp("mul_scalar", x, func(v float64) float64 { return v * scalar })
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unaryOp("add_scalar", x, func(v float64) float64 { return v + scalar })
}

// ClampMin replaces every element below low with low. NaN is preserved.
func (cpu *CPUBackend) ClampMin(x *tensor.RawTensor, low float64) *tensor.RawTensor {
	return cpu.unaryOp("clamp_min", x, func(v float64) float64 {
		if v < low {
			return low
		}
		return v
	})
}
