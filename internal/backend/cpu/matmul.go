package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// MatMul performs 2-D matrix multiplication op(a) @ op(b), where op transposes
// its operand when the matching flag is set.
//
//	(M, K) @ (K, N) -> (M, N)
//
// The product is computed by gonum's GEMM, so transposed operands are never
// materialized.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor, transA, transB bool) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k := aShape[0], aShape[1]
	if transA {
		m, k = k, m
	}
	kAlt, n := bShape[0], bShape[1]
	if transB {
		kAlt, n = n, kAlt
	}
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch %v (trans=%t) @ %v (trans=%t)", aShape, transA, bShape, transB))
	}

	result := tensor.MustRaw(tensor.Shape{m, n}, a.DType())
	tA, tB := blasTranspose(transA), blasTranspose(transB)

	switch a.DType() {
	case tensor.Float32:
		blas32.Gemm(tA, tB, 1,
			blas32.General{Rows: aShape[0], Cols: aShape[1], Stride: aShape[1], Data: a.AsFloat32()},
			blas32.General{Rows: bShape[0], Cols: bShape[1], Stride: bShape[1], Data: b.AsFloat32()},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat32()})
	case tensor.Float64:
		blas64.Gemm(tA, tB, 1,
			blas64.General{Rows: aShape[0], Cols: aShape[1], Stride: aShape[1], Data: a.AsFloat64()},
			blas64.General{Rows: bShape[0], Cols: bShape[1], Stride: bShape[1], Data: b.AsFloat64()},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat64()})
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

func blasTranspose(t bool) blas.Transpose {
	if t {
		return blas.Trans
	}
	return blas.NoTrans
}
