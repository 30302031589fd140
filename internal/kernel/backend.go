package kernel

import "github.com/born-ml/kernelgrad/internal/tensor"

// Backend supplies the numeric primitives kernels are built from. Kernels
// own the calling and context contract; the arithmetic itself is delegated
// here so precompiled implementations can be swapped in.
//
// Implementations allocate every result and never modify their inputs.
// Invalid arguments panic; kernels validate shapes before dispatching.
type Backend interface {
	Name() string

	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *tensor.RawTensor) *tensor.RawTensor
	Sub(a, b *tensor.RawTensor) *tensor.RawTensor
	Mul(a, b *tensor.RawTensor) *tensor.RawTensor
	Div(a, b *tensor.RawTensor) *tensor.RawTensor

	// Element-wise unary operations.
	Neg(x *tensor.RawTensor) *tensor.RawTensor
	Sqrt(x *tensor.RawTensor) *tensor.RawTensor
	Abs(x *tensor.RawTensor) *tensor.RawTensor
	Sign(x *tensor.RawTensor) *tensor.RawTensor
	Step(x *tensor.RawTensor) *tensor.RawTensor // 1 where x > 0, else 0
	Sigmoid(x *tensor.RawTensor) *tensor.RawTensor

	// Scalar operations.
	MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor
	ClampMin(x *tensor.RawTensor, low float64) *tensor.RawTensor
	AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor

	// MatMul computes op(a) @ op(b) for 2-D operands.
	MatMul(a, b *tensor.RawTensor, transA, transB bool) *tensor.RawTensor

	// Reductions.
	Sum(x *tensor.RawTensor) *tensor.RawTensor
	SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor

	// Shape operations.
	Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor
	Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor

	// Row indexing along dimension 0.
	IndexAdd(src, index *tensor.RawTensor, buckets int) *tensor.RawTensor
	IndexSelect(src, index *tensor.RawTensor) *tensor.RawTensor
}
