package kernel

import "github.com/born-ml/kernelgrad/internal/tensor"

// mseForward: out = mean((x - y)²) as a scalar.
func mseForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := equalShapes(MSELoss, x, y); err != nil {
		return nil, nil, err
	}
	diff := b.Sub(x, y)
	out := b.MulScalar(b.Sum(b.Mul(diff, diff)), 1/float64(diff.NumElements()))
	return out, &MSELossContext{shapes: newShapes(out, in), diff: diff}, nil
}

// mseBackward: dx = 2 * (x - y) / numel * g, dy = -dx.
func mseBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	diff := ctx.(*MSELossContext).diff
	dx := b.Mul(b.MulScalar(diff, 2/float64(diff.NumElements())), g)
	return []*tensor.RawTensor{dx, b.Neg(dx)}, nil
}

// maeForward: out = mean(|x - y|) as a scalar.
func maeForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, y := in[0], in[1]
	if err := equalShapes(MAELoss, x, y); err != nil {
		return nil, nil, err
	}
	diff := b.Sub(x, y)
	out := b.MulScalar(b.Sum(b.Abs(diff)), 1/float64(diff.NumElements()))
	return out, &MAELossContext{shapes: newShapes(out, in), sign: b.Sign(diff)}, nil
}

// maeBackward: dx = sign(x - y) / numel * g, dy = -dx.
func maeBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	sign := ctx.(*MAELossContext).sign
	dx := b.Mul(b.MulScalar(sign, 1/float64(sign.NumElements())), g)
	return []*tensor.RawTensor{dx, b.Neg(dx)}, nil
}
