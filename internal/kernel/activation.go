package kernel

import "github.com/born-ml/kernelgrad/internal/tensor"

// sqrtForward: out = sqrt(x). The output is saved for backward.
func sqrtForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	out := b.Sqrt(in[0])
	return out, &SqrtContext{shapes: newShapes(out, in), out: out}, nil
}

// sqrtBackward: dx = g / (2 * sqrt(x)).
func sqrtBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*SqrtContext)
	return []*tensor.RawTensor{b.Div(g, b.MulScalar(c.out, 2))}, nil
}

// reluForward: out = max(x, 0).
func reluForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x := in[0]
	out := b.ClampMin(x, 0)
	return out, &ReLUContext{shapes: newShapes(out, in), x: x}, nil
}

// reluBackward: dx = g * (x > 0).
func reluBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*ReLUContext)
	return []*tensor.RawTensor{b.Mul(g, b.Step(c.x))}, nil
}

// siluForward: out = x * sigmoid(x).
func siluForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x := in[0]
	out := b.Mul(x, b.Sigmoid(x))
	return out, &SiLUContext{shapes: newShapes(out, in), x: x}, nil
}

// siluBackward: dx = g * sigmoid(x) * (1 + x * (1 - sigmoid(x))).
func siluBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*SiLUContext)
	s := b.Sigmoid(c.x)
	oneMinusS := b.AddScalar(b.Neg(s), 1)
	derivative := b.Mul(s, b.AddScalar(b.Mul(c.x, oneMinusS), 1))
	return []*tensor.RawTensor{b.Mul(g, derivative)}, nil
}

// sigmoidForward: out = 1 / (1 + exp(-x)). The output is saved for backward.
func sigmoidForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	out := b.Sigmoid(in[0])
	return out, &SigmoidContext{shapes: newShapes(out, in), out: out}, nil
}

// sigmoidBackward: dx = g * s * (1 - s).
func sigmoidBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	s := ctx.(*SigmoidContext).out
	return []*tensor.RawTensor{b.Mul(g, b.Mul(s, b.AddScalar(b.Neg(s), 1)))}, nil
}
