// Package cpu implements the pure-Go numeric backend that kernels delegate
// their arithmetic to. Matrix products go through gonum BLAS.
package cpu

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/parallel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

var _ kernel.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor operations on CPU.
//
// Every operation allocates its result; inputs are never modified.
// Invalid arguments (incompatible shapes, unsupported dtypes) are programmer
// errors and panic, callers validate contracts before dispatching here.
//
// Element-wise loops over large tensors are split across goroutines. Every
// element is still computed independently, so results do not depend on the
// worker count.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend using every available core.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, add[float32], add[float64])
}

// Sub performs element-wise subtraction with NumPy-style broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, sub[float32], sub[float64])
}

// Mul performs element-wise multiplication with NumPy-style broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, mul[float32], mul[float64])
}

// Div performs element-wise division with NumPy-style broadcasting.
// Zero denominators are not trapped: results follow IEEE 754 (Inf/NaN).
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b, div[float32], div[float64])
}

type float interface {
	~float32 | ~float64
}

func add[T float](x, y T) T { return x + y }
func sub[T float](x, y T) T { return x - y }
func mul[T float](x, y T) T { return x * y }
func div[T float](x, y T) T { return x / y }

// binaryOp allocates the broadcast result of a and b and fills it with fn.
func (cpu *CPUBackend) binaryOp(name string, a, b *tensor.RawTensor, f32 func(x, y float32) float32, f64 func(x, y float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := tensor.MustRaw(outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryBroadcast(cpu.par, result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), outShape, a.Shape(), b.Shape(), f32)
	case tensor.Float64:
		binaryBroadcast(cpu.par, result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), outShape, a.Shape(), b.Shape(), f64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, a.DType()))
	}

	return result
}

// binaryBroadcast applies fn element-wise, taking the fast path when both
// operands already have the output shape.
func binaryBroadcast[T float](par parallel.Config, dst, a, b []T, outShape, aShape, bShape tensor.Shape, fn func(x, y T) T) {
	if aShape.Equal(outShape) && bShape.Equal(outShape) {
		parallel.Chunks(len(dst), par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				dst[i] = fn(a[i], b[i])
			}
		})
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := aShape.ComputeStrides()
	bStrides := bShape.ComputeStrides()
	parallel.Chunks(len(dst), par, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			ai := tensor.BroadcastIndex(i, outShape, aShape, outStrides, aStrides)
			bi := tensor.BroadcastIndex(i, outShape, bShape, outStrides, bStrides)
			dst[i] = fn(a[ai], b[bi])
		}
	})
}
