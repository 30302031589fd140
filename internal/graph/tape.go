package graph

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// Tape records kernel nodes during the forward pass and computes gradients
// during the backward pass using reverse-mode automatic differentiation.
//
// Usage:
//
//	tape := graph.NewTape(cpu.New())
//	h, _ := tape.Apply(kernel.Linear, kernel.Attrs{}, x, w, b)
//	y, _ := tape.Apply(kernel.ReLU, kernel.Attrs{}, h)
//	grads, _ := tape.Backward(y, ones)
//	dw := grads[w]
type Tape struct {
	records []record // in execution order
	backend kernel.Backend
	logger  *slog.Logger
}

type record struct {
	node   *Node
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewTape creates an empty tape. A nil backend selects the CPU backend.
func NewTape(b kernel.Backend) *Tape {
	if b == nil {
		b = cpu.New()
	}
	return &Tape{
		records: make([]record, 0, 16),
		backend: b,
		logger:  slog.Default(),
	}
}

// SetLogger replaces the tape's logger; nodes created afterwards inherit it.
func (t *Tape) SetLogger(l *slog.Logger) {
	t.logger = l
}

// Apply creates a node for kind, runs its forward pass and records it.
func (t *Tape) Apply(kind kernel.Kind, attrs kernel.Attrs, inputs ...*tensor.RawTensor) (*tensor.RawTensor, error) {
	node, err := NewNode(kind, WithBackend(t.backend), WithAttrs(attrs), WithLogger(t.logger))
	if err != nil {
		return nil, err
	}

	out, err := node.Apply(inputs...)
	if err != nil {
		return nil, err
	}

	t.records = append(t.records, record{
		node:   node,
		inputs: append([]*tensor.RawTensor(nil), inputs...),
		output: out,
	})
	return out, nil
}

// Backward propagates outputGrad from output back through every recorded
// node and returns the accumulated gradient of each tensor that received one.
//
// Algorithm:
//  1. Seed the gradient of output with outputGrad
//  2. Walk the records in reverse order
//  3. For each node with a gradient, run its backward pass
//  4. Accumulate when the same tensor feeds several nodes
//
// Node contexts are single-use, so the tape is cleared afterwards.
func (t *Tape) Backward(output, outputGrad *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	defer t.Clear()

	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: outputGrad}

	for i := len(t.records) - 1; i >= 0; i-- {
		rec := t.records[i]
		grad, ok := grads[rec.output]
		if !ok {
			continue
		}

		inputGrads, err := rec.node.Gradient(grad)
		if err != nil {
			return nil, fmt.Errorf("backward through node %d: %w", i, err)
		}

		for _, ig := range inputGrads {
			input := rec.inputs[ig.Index]
			if existing, ok := grads[input]; ok {
				grads[input] = t.backend.Add(existing, ig.Grad)
			} else {
				grads[input] = ig.Grad
			}
		}
	}

	return grads, nil
}

// Clear drops every record, discarding unconsumed contexts.
func (t *Tape) Clear() {
	t.records = t.records[:0]
}

// NumOps returns the number of recorded nodes.
func (t *Tape) NumOps() int {
	return len(t.records)
}
