// Package kernel implements the differentiable operator adapter protocol.
//
// Each kernel pairs a forward function, which returns its output together
// with a typed Context, and a backward function, which consumes exactly that
// Context and returns one gradient per differentiable input, already reduced
// to the input's original shape.
//
// Supported kernels:
//   - Add, Sub, Mul, Div: element-wise, equal shapes
//   - AddBroadcast, MulBroadcast: element-wise with broadcasting
//   - Sqrt, ReLU, SiLU, Sigmoid: element-wise unary
//   - Sum: row sum over axis 0 keeping the leading dimension
//   - SumAggr: segment sum of rows into buckets by index
//   - Linear: x @ Wᵀ + b
//   - MSELoss, MAELoss: mean squared / absolute error
//
// Usage:
//
//	k, _ := kernel.Lookup(kernel.Mul)
//	out, ctx, err := k.Forward(backend, kernel.Attrs{}, x, y)
//	grads, err := k.Backward(backend, gradOut, ctx) // [dx, dy]
package kernel

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// Descriptor is the identity of a kernel.
type Descriptor struct {
	Kind      Kind
	Name      string
	Arity     int
	Broadcast bool // inputs may have different, broadcast-compatible shapes

	// Differentiable marks, per input position, whether backward produces a
	// gradient for that input. Inputs such as a segment index never do.
	Differentiable []bool
	InputNames     []string
}

// NumDifferentiable returns how many gradients backward produces.
func (d Descriptor) NumDifferentiable() int {
	n := 0
	for _, ok := range d.Differentiable {
		if ok {
			n++
		}
	}
	return n
}

// DifferentiableInputs returns the positions of inputs that receive a gradient.
func (d Descriptor) DifferentiableInputs() []int {
	positions := make([]int, 0, len(d.Differentiable))
	for i, ok := range d.Differentiable {
		if ok {
			positions = append(positions, i)
		}
	}
	return positions
}

// Attrs carries per-call, non-tensor arguments.
type Attrs struct {
	// Buckets is the number of output rows produced by SumAggr.
	Buckets int
}

type forwardFunc func(b Backend, attrs Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error)

type backwardFunc func(b Backend, grad *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error)

// Kernel is a registered operator: its descriptor plus the forward/backward pair.
type Kernel struct {
	Descriptor
	forward  forwardFunc
	backward backwardFunc
}

func binary(kind Kind, name string, broadcast bool) Descriptor {
	return Descriptor{
		Kind: kind, Name: name, Arity: 2, Broadcast: broadcast,
		Differentiable: []bool{true, true},
		InputNames:     []string{"x", "y"},
	}
}

func unary(kind Kind, name string) Descriptor {
	return Descriptor{
		Kind: kind, Name: name, Arity: 1,
		Differentiable: []bool{true},
		InputNames:     []string{"x"},
	}
}

var descriptors = [numKinds]Descriptor{
	Add:          binary(Add, "add", false),
	Sub:          binary(Sub, "sub", false),
	Mul:          binary(Mul, "mul", false),
	Div:          binary(Div, "div", false),
	AddBroadcast: binary(AddBroadcast, "add_broadcast", true),
	MulBroadcast: binary(MulBroadcast, "mul_broadcast", true),
	Sqrt:         unary(Sqrt, "sqrt"),
	Sum:          unary(Sum, "sum"),
	SumAggr: {
		Kind: SumAggr, Name: "sum_aggr", Arity: 2,
		Differentiable: []bool{true, false},
		InputNames:     []string{"x", "index"},
	},
	ReLU:    unary(ReLU, "relu"),
	SiLU:    unary(SiLU, "silu"),
	Sigmoid: unary(Sigmoid, "sigmoid"),
	Linear: {
		Kind: Linear, Name: "linear", Arity: 3,
		Differentiable: []bool{true, true, true},
		InputNames:     []string{"x", "weight", "bias"},
	},
	MSELoss: binary(MSELoss, "mse_loss", false),
	MAELoss: binary(MAELoss, "mae_loss", false),
}

var registry = [numKinds]Kernel{
	Add:          {descriptors[Add], addForward, addBackward},
	Sub:          {descriptors[Sub], subForward, subBackward},
	Mul:          {descriptors[Mul], mulForward, mulBackward},
	Div:          {descriptors[Div], divForward, divBackward},
	AddBroadcast: {descriptors[AddBroadcast], addBroadcastForward, addBroadcastBackward},
	MulBroadcast: {descriptors[MulBroadcast], mulBroadcastForward, mulBroadcastBackward},
	Sqrt:         {descriptors[Sqrt], sqrtForward, sqrtBackward},
	Sum:          {descriptors[Sum], sumForward, sumBackward},
	SumAggr:      {descriptors[SumAggr], sumAggrForward, sumAggrBackward},
	ReLU:         {descriptors[ReLU], reluForward, reluBackward},
	SiLU:         {descriptors[SiLU], siluForward, siluBackward},
	Sigmoid:      {descriptors[Sigmoid], sigmoidForward, sigmoidBackward},
	Linear:       {descriptors[Linear], linearForward, linearBackward},
	MSELoss:      {descriptors[MSELoss], mseForward, mseBackward},
	MAELoss:      {descriptors[MAELoss], maeForward, maeBackward},
}

// Lookup returns the kernel registered for kind.
func Lookup(kind Kind) (*Kernel, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kernel kind %d", int(kind))
	}
	return &registry[kind], nil
}

// Describe returns the descriptor of kind.
func Describe(kind Kind) (Descriptor, error) {
	k, err := Lookup(kind)
	if err != nil {
		return Descriptor{}, err
	}
	return k.Descriptor, nil
}

// Forward validates the inputs against the descriptor and runs the kernel's
// forward pass. The returned Context must be passed unchanged to Backward.
func (k *Kernel) Forward(b Backend, attrs Attrs, inputs ...*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	if len(inputs) != k.Arity {
		return nil, nil, errorf(k.Kind, ErrShape, "want %d inputs, got %d", k.Arity, len(inputs))
	}

	var dtype tensor.DataType
	first := true
	for i, in := range inputs {
		if in == nil {
			return nil, nil, errorf(k.Kind, ErrShape, "input %s is nil", k.InputNames[i])
		}
		if !k.Differentiable[i] {
			continue
		}
		if !in.DType().IsFloat() {
			return nil, nil, errorf(k.Kind, ErrDType, "input %s must be float32 or float64, got %s", k.InputNames[i], in.DType())
		}
		if first {
			dtype, first = in.DType(), false
		} else if in.DType() != dtype {
			return nil, nil, errorf(k.Kind, ErrDType, "input %s has dtype %s, want %s", k.InputNames[i], in.DType(), dtype)
		}
	}

	return k.forward(b, attrs, inputs)
}

// Backward runs the kernel's backward pass with the context produced by the
// paired Forward call. It returns one gradient per differentiable input, in
// input order, each shaped like that input.
func (k *Kernel) Backward(b Backend, grad *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	if ctx == nil {
		return nil, errorf(k.Kind, ErrContext, "nil context")
	}
	if ctx.Kind() != k.Kind {
		return nil, errorf(k.Kind, ErrContext, "context was produced by %s", ctx.Kind())
	}
	if err := ctx.validate(); err != nil {
		return nil, err
	}
	if grad == nil {
		return nil, errorf(k.Kind, ErrShape, "output gradient is nil")
	}
	if !grad.Shape().Equal(ctx.OutputShape()) {
		return nil, errorf(k.Kind, ErrShape, "output gradient shape %v, want %v", grad.Shape(), ctx.OutputShape())
	}
	if grad.DType() != ctx.OutputDType() {
		return nil, errorf(k.Kind, ErrDType, "output gradient dtype %s, want %s", grad.DType(), ctx.OutputDType())
	}

	grads, err := k.backward(b, grad, ctx)
	if err != nil {
		return nil, err
	}

	// Every gradient must match its input's original shape.
	positions := k.DifferentiableInputs()
	if len(grads) != len(positions) {
		return nil, errorf(k.Kind, ErrShape, "backward produced %d gradients, want %d", len(grads), len(positions))
	}
	inShapes := ctx.InputShapes()
	for i, pos := range positions {
		if !grads[i].Shape().Equal(inShapes[pos]) {
			return nil, errorf(k.Kind, ErrShape, "gradient for %s has shape %v, want %v",
				k.InputNames[pos], grads[i].Shape(), inShapes[pos])
		}
	}

	return grads, nil
}
