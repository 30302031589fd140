package kernel

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// sumForward: out = sum(x, dim=0, keepdim=True) for a 2-D x.
func sumForward(b Backend, _ Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x := in[0]
	if len(x.Shape()) != 2 {
		return nil, nil, errorf(Sum, ErrShape, "input must be 2-D, got %v", x.Shape())
	}
	out := b.SumDim(x, 0, true)
	return out, &SumContext{shapes: newShapes(out, in)}, nil
}

// sumBackward replicates g along axis 0 back to the input shape.
func sumBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{b.Expand(g, ctx.InputShapes()[0])}, nil
}

// sumAggrForward: out[k] = Σ x[r] over rows r with index[r] == k, for
// k in [0, attrs.Buckets).
func sumAggrForward(b Backend, attrs Attrs, in []*tensor.RawTensor) (*tensor.RawTensor, Context, error) {
	x, index := in[0], in[1]
	out, err := SegmentSum(b, x, index, attrs.Buckets)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", SumAggr, err)
	}
	return out, &SumAggrContext{shapes: newShapes(out, in), index: index}, nil
}

// sumAggrBackward: dx[r] = g[index[r]]. The index receives no gradient.
func sumAggrBackward(b Backend, g *tensor.RawTensor, ctx Context) ([]*tensor.RawTensor, error) {
	c := ctx.(*SumAggrContext)
	dx, err := GatherSegments(b, g, c.index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SumAggr, err)
	}
	return []*tensor.RawTensor{dx}, nil
}
