package kernel

import "github.com/born-ml/kernelgrad/internal/tensor"

// equalShapes rejects element-wise inputs whose shapes differ.
func equalShapes(kind Kind, x, y *tensor.RawTensor) error {
	if !x.Shape().Equal(y.Shape()) {
		return errorf(kind, ErrShape, "x and y must have equal shapes, got %v and %v", x.Shape(), y.Shape())
	}
	return nil
}

// broadcastable rejects inputs that cannot be broadcast together.
func broadcastable(kind Kind, x, y *tensor.RawTensor) error {
	if _, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape()); err != nil {
		return errorf(kind, ErrShape, "%v", err)
	}
	return nil
}

// addForward: out = x + y.
func addForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := equalShapes(Add, x, y); err != nil {
		return nil, nil, err
	}
	out := b.Add(x, y)
	return out, &AddContext{shapes: newShapes(out, in)}, nil
}

// addBackward: dx = g, dy = g.
func addBackward(_ Backend, g *tensor.RawTensor, _ Context) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{g.Clone(), g.Clone()}, nil
}

// subForward: out = x - y.
func subForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := equalShapes(Sub, x, y); err != nil {
		return nil, nil, err
	}
	out := b.Sub(x, y)
	return out, &SubContext{shapes: newShapes(out, in)}, nil
}

// subBackward: dx = g, dy = -g.
func subBackward(b Backend, g *tensor.RawTensor, _ Context) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{g.Clone(), b.Neg(g)}, nil
}

// mulForward: out = x * y.
func mulForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := equalShapes(Mul, x, y); err != nil {
		return nil, nil, err
	}
	out := b.Mul(x, y)
	return out, &MulContext{shapes: newShapes(out, in), x: x, y: y}, nil
}

// mulBackward: dx = g * y, dy = g * x.
func mulBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*MulContext)
	return []*tensor.RawTensor{b.Mul(g, c.y), b.Mul(g, c.x)}, nil
}

// divForward: out = x / y. Zero denominators propagate Inf/NaN.
func divForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := equalShapes(Div, x, y); err != nil {
		return nil, nil, err
	}
	out := b.Div(x, y)
	return out, &DivContext{shapes: newShapes(out, in), x: x, y: y}, nil
}

// divBackward: dx = g / y, dy = -g * x / y².
func divBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*DivContext)
	dx := b.Div(g, c.y)
	dy := b.Neg(b.Div(b.Mul(g, c.x), b.Mul(c.y, c.y)))
	return []*tensor.RawTensor{dx, dy}, nil
}

// addBroadcastForward: out = x + y with broadcasting.
func addBroadcastForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := broadcastable(AddBroadcast, x, y); err != nil {
		return nil, nil, err
	}
	out := b.Add(x, y)
	return out, &AddBroadcastContext{shapes: newShapes(out, in)}, nil
}

// addBroadcastBackward: dx, dy = g summed over each input's broadcast axes.
func addBroadcastBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	in := ctx.InputShapes()
	return reduceEach(b, []*tensor.RawTensor{g, g}, in)
}

// mulBroadcastForward: out = x * y with broadcasting.
func mulBroadcastForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := broadcastable(MulBroadcast, x, y); err != nil {
		return nil, nil, err
	}
	out := b.Mul(x, y)
	return out, &MulBroadcastContext{shapes: newShapes(out, in), x: x, y: y}, nil
}

// mulBroadcastBackward: dx = reduce(g * y), dy = reduce(g * x).
func mulBroadcastBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*MulBroadcastContext)
	return reduceEach(b, []*tensor.RawTensor{b.Mul(g, c.y), b.Mul(g, c.x)}, c.in)
}

// reduceEach reduces grads[i] to shapes[i].
func reduceEach(b Backend, grads []*tensor.RawTensor, shapes []tensor.Shape) ([]*tensor.RawTensor, error) {
	out := make([]*tensor.RawTensor, len(grads))
	for i, g := range grads {
		r, err := ReduceBroadcast(b, g, shapes[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
