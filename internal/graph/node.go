// Package graph adapts kernels to a reverse-mode autodiff graph.
//
// A Node wraps one kernel and owns a single context slot: Apply runs the
// forward pass and stashes the context, Gradient consumes it exactly once.
// Tape is a minimal host graph that records nodes in execution order and
// walks them in reverse to propagate and accumulate gradients.
package graph

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// InputGrad is the gradient for one differentiable forward input.
type InputGrad struct {
	Index int    // position of the input in the Apply call
	Name  string // descriptor name of the input
	Grad  *tensor.RawTensor
}

// Node is one kernel instance in a computation graph.
//
// A Node is owned by one goroutine at a time. Overlapping Apply/Gradient
// calls on the same node fail with kernel.ErrState; distinct nodes share
// nothing and may run concurrently.
type Node struct {
	id      uuid.UUID
	kernel  *kernel.Kernel
	backend kernel.Backend
	attrs   kernel.Attrs
	logger  *slog.Logger

	busy       atomic.Bool
	pending    kernel.Context // context of the last forward, nil once consumed
	hasPending atomic.Bool    // mirrors pending != nil for readers outside acquire
}

// Option configures a Node.
type Option func(*Node)

// WithBackend sets the numeric backend. Defaults to the CPU backend.
func WithBackend(b kernel.Backend) Option {
	return func(n *Node) {
		n.backend = b
	}
}

// WithAttrs sets the per-call kernel attributes.
func WithAttrs(attrs kernel.Attrs) Option {
	return func(n *Node) {
		n.attrs = attrs
	}
}

// WithBuckets sets the bucket count used by SumAggr.
func WithBuckets(buckets int) Option {
	return func(n *Node) {
		n.attrs.Buckets = buckets
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(n *Node) {
		n.logger = l
	}
}

// NewNode creates a node for the given kernel kind.
func NewNode(kind kernel.Kind, opts ...Option) (*Node, error) {
	k, err := kernel.Lookup(kind)
	if err != nil {
		return nil, err
	}

	n := &Node{
		id:     uuid.New(),
		kernel: k,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.backend == nil {
		n.backend = cpu.New()
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	n.logger = n.logger.With("node", n.id.String(), "kernel", kind.String())
	return n, nil
}

// ID returns the node's unique identity.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Kind returns the kernel kind.
func (n *Node) Kind() kernel.Kind {
	return n.kernel.Kind
}

// Descriptor returns the kernel descriptor.
func (n *Node) Descriptor() kernel.Descriptor {
	return n.kernel.Descriptor
}

// Pending reports whether a forward context is waiting for Gradient.
// It is safe to call while another goroutine holds the node.
func (n *Node) Pending() bool {
	return n.hasPending.Load()
}

// Apply runs the kernel's forward pass and stashes its context, replacing
// any context left by a previous Apply.
func (n *Node) Apply(inputs ...*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := n.acquire(); err != nil {
		return nil, err
	}
	defer n.release()

	out, ctx, err := n.kernel.Forward(n.backend, n.attrs, inputs...)
	if err != nil {
		n.logger.Debug("forward failed", "error", err)
		return nil, err
	}

	if n.pending != nil {
		n.logger.Debug("discarding unconsumed context")
	}
	n.pending = ctx
	n.hasPending.Store(true)
	n.logger.Debug("forward", "output", out.Shape())
	return out, nil
}

// Gradient runs the kernel's backward pass with the stashed context and
// returns the gradients of the differentiable inputs in input order.
//
// The context is consumed on success: a second call without an intervening
// Apply fails with kernel.ErrState. A failed backward leaves the context in
// place.
func (n *Node) Gradient(grad *tensor.RawTensor) ([]InputGrad, error) {
	if err := n.acquire(); err != nil {
		return nil, err
	}
	defer n.release()

	if n.pending == nil {
		return nil, fmt.Errorf("%s: gradient requested without a pending forward: %w", n.kernel.Kind, kernel.ErrState)
	}

	grads, err := n.kernel.Backward(n.backend, grad, n.pending)
	if err != nil {
		n.logger.Debug("backward failed", "error", err)
		return nil, err
	}
	n.pending = nil
	n.hasPending.Store(false)

	positions := n.kernel.DifferentiableInputs()
	out := make([]InputGrad, len(grads))
	for i, g := range grads {
		out[i] = InputGrad{Index: positions[i], Name: n.kernel.InputNames[positions[i]], Grad: g}
	}
	n.logger.Debug("backward", "gradients", len(out))
	return out, nil
}

func (n *Node) acquire() error {
	if !n.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: node %s is already running: %w", n.kernel.Kind, n.id, kernel.ErrState)
	}
	return nil
}

func (n *Node) release() {
	n.busy.Store(false)
}
