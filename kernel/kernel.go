// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernel exposes the differentiable kernels and their calling
// contract.
//
// Every kernel is identified by a Kind and described by a Descriptor naming
// its inputs and which of them receive gradients. Forward returns the output
// and a typed Context; Backward consumes that Context and returns one
// gradient per differentiable input, shaped like the input.
//
// Example:
//
//	k, _ := kernel.Lookup(kernel.Mul)
//	b := cpu.New()
//	out, ctx, _ := k.Forward(b, kernel.Attrs{}, x, y)
//	grads, _ := k.Backward(b, seed, ctx) // [dx, dy]
//
// Most callers use graph.Node, which manages the Context.
package kernel

import "github.com/born-ml/kernelgrad/internal/kernel"

// Kind identifies a kernel.
type Kind = kernel.Kind

// Kernel kinds.
const (
	Add          = kernel.Add
	Sub          = kernel.Sub
	Mul          = kernel.Mul
	Div          = kernel.Div
	AddBroadcast = kernel.AddBroadcast
	MulBroadcast = kernel.MulBroadcast
	Sqrt         = kernel.Sqrt
	Sum          = kernel.Sum
	SumAggr      = kernel.SumAggr
	ReLU         = kernel.ReLU
	SiLU         = kernel.SiLU
	Sigmoid      = kernel.Sigmoid
	Linear       = kernel.Linear
	MSELoss      = kernel.MSELoss
	MAELoss      = kernel.MAELoss
)

type (
	// Kernel is a forward/backward pair with its descriptor.
	Kernel = kernel.Kernel
	// Descriptor describes a kernel's inputs.
	Descriptor = kernel.Descriptor
	// Attrs carries per-call parameters.
	Attrs = kernel.Attrs
	// Context is the state saved by Forward for Backward.
	Context = kernel.Context
	// Backend supplies the numeric primitives kernels are built from.
	Backend = kernel.Backend
)

// Errors returned by kernels, for use with errors.Is.
var (
	ErrShape   = kernel.ErrShape
	ErrContext = kernel.ErrContext
	ErrIndex   = kernel.ErrIndex
	ErrState   = kernel.ErrState
	ErrDType   = kernel.ErrDType
)

// Kinds returns every kernel kind in order.
func Kinds() []Kind {
	return kernel.Kinds()
}

// ParseKind returns the kind with the given name, such as "mse_loss".
func ParseKind(name string) (Kind, error) {
	return kernel.ParseKind(name)
}

// Lookup returns the kernel for kind.
func Lookup(kind Kind) (*Kernel, error) {
	return kernel.Lookup(kind)
}

// Describe returns the descriptor for kind.
func Describe(kind Kind) (Descriptor, error) {
	return kernel.Describe(kind)
}
