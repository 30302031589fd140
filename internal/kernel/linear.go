package kernel

import "github.com/born-ml/kernelgrad/internal/tensor"

// linearForward: out = x @ Wᵀ + b.
//
//	x: [N, in], weight: [out, in], bias: [out] -> [N, out]
func linearForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, weight, bias := in[0], in[1], in[2]
	xs, ws, bs := x.Shape(), weight.Shape(), bias.Shape()

	if len(xs) != 2 || len(ws) != 2 || len(bs) != 1 {
		return nil, nil, errorf(Linear, ErrShape, "want x [N, in], weight [out, in], bias [out], got %v, %v, %v", xs, ws, bs)
	}
	if xs[1] != ws[1] {
		return nil, nil, errorf(Linear, ErrShape, "input features %d do not match weight %v", xs[1], ws)
	}
	if bs[0] != ws[0] {
		return nil, nil, errorf(Linear, ErrShape, "bias %v does not match weight %v", bs, ws)
	}

	out := b.Add(b.MatMul(x, weight, false, true), bias)
	return out, &LinearContext{shapes: newShapes(out, in), x: x, weight: weight}, nil
}

// linearBackward: dx = g @ W, dW = gᵀ @ x, db = colsum(g).
func linearBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*LinearContext)
	dx := b.MatMul(g, c.weight, false, false)
	dw := b.MatMul(g, c.x, true, false)
	db := b.SumDim(g, 0, false)
	return []*tensor.RawTensor{dx, dw, db}, nil
}
