// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/kernel"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go implementations of every primitive kernels
// need, with matrix products delegated to gonum BLAS.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements kernel.Backend.
var _ kernel.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/kernelgrad/backend/cpu"
//	    "github.com/born-ml/kernelgrad/graph"
//	    "github.com/born-ml/kernelgrad/kernel"
//	)
//
//	func main() {
//	    node, _ := graph.NewNode(kernel.Add, graph.WithBackend(cpu.New()))
//	}
func New() *Backend {
	return internalcpu.New()
}
