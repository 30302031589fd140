// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the raw tensor type that kernels consume and
// produce.
//
// # Overview
//
// A RawTensor is a dense, row-major buffer with a shape and a data type.
// Kernels accept float32 or float64 tensors for differentiable inputs and
// int32/int64 tensors for indices.
//
// # Basic Usage
//
//	import "github.com/born-ml/kernelgrad/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    y, _ := tensor.Ones(tensor.Shape{1, 2}, tensor.Float32)
//	    fmt.Println(x.Shape(), y.AsFloat32())
//	}
//
// # Broadcasting
//
// Shapes broadcast NumPy-style: dimensions are aligned from the right and a
// dimension of size 1 stretches to match. BroadcastShapes reports the result
// shape of two operands.
package tensor
