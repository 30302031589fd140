// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph wraps kernels as nodes of a reverse-mode autodiff graph.
//
// A Node holds one kernel and a single-use context slot. Apply runs the
// forward pass, Gradient runs the backward pass exactly once per Apply.
// Tape chains nodes and accumulates gradients in reverse order.
//
// Example:
//
//	node, _ := graph.NewNode(kernel.MSELoss)
//	loss, _ := node.Apply(pred, target)
//	one, _ := tensor.Ones(tensor.Shape{}, tensor.Float32)
//	grads, _ := node.Gradient(one)
//	dPred := grads[0].Grad
package graph

import (
	"log/slog"

	"github.com/born-ml/kernelgrad/internal/graph"
	"github.com/born-ml/kernelgrad/kernel"
)

type (
	// Node is one kernel instance in a computation graph.
	Node = graph.Node
	// Option configures a Node.
	Option = graph.Option
	// InputGrad is the gradient for one differentiable input.
	InputGrad = graph.InputGrad
	// Tape records nodes and propagates gradients through them.
	Tape = graph.Tape
)

// NewNode creates a node for the given kernel kind.
func NewNode(kind kernel.Kind, opts ...Option) (*Node, error) {
	return graph.NewNode(kind, opts...)
}

// NewTape creates an empty tape on backend b, the CPU backend when nil.
func NewTape(b kernel.Backend) *Tape {
	return graph.NewTape(b)
}

// WithBackend sets the numeric backend of a node.
func WithBackend(b kernel.Backend) Option {
	return graph.WithBackend(b)
}

// WithAttrs sets the kernel attributes of a node.
func WithAttrs(attrs kernel.Attrs) Option {
	return graph.WithAttrs(attrs)
}

// WithBuckets sets the bucket count used by SumAggr.
func WithBuckets(buckets int) Option {
	return graph.WithBuckets(buckets)
}

// WithLogger sets the logger of a node.
func WithLogger(l *slog.Logger) Option {
	return graph.WithLogger(l)
}
