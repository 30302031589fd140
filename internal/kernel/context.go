package kernel

import "github.com/born-ml/kernelgrad/internal/tensor"

// Context is the state a kernel's forward saves for its backward.
//
// Every kernel has its own concrete context type and the interface is sealed,
// so a context can only come from the forward call of the same kind.
// Contexts are read-only once returned. Saved tensors are shared with the
// forward inputs, which callers must not modify before Backward.
type Context interface {
	// Kind returns the kernel that produced the context.
	Kind() Kind
	// OutputShape returns the shape of the forward output.
	OutputShape() tensor.Shape
	// InputShapes returns the original shapes of all forward inputs.
	InputShapes() []tensor.Shape
	// OutputDType returns the data type of the forward output.
	OutputDType() tensor.DataType

	validate() error
}

// shapes records the forward output shape and the original input shapes.
type shapes struct {
	out   tensor.Shape
	in    []tensor.Shape
	dtype tensor.DataType
}

func newShapes(out *tensor.RawTensor, inputs []*tensor.RawTensor) shapes {
	in := make([]tensor.Shape, len(inputs))
	for i, t := range inputs {
		in[i] = t.Shape().Clone()
	}
	return shapes{out: out.Shape().Clone(), in: in, dtype: out.DType()}
}

func (s shapes) OutputShape() tensor.Shape    { return s.out }
func (s shapes) InputShapes() []tensor.Shape  { return s.in }
func (s shapes) OutputDType() tensor.DataType { return s.dtype }

func (s shapes) check(kind Kind, saved ...*tensor.RawTensor) error {
	if s.out == nil || len(s.in) != descriptors[kind].Arity {
		return errorf(kind, ErrContext, "context was not produced by forward")
	}
	for i, t := range saved {
		if t == nil {
			return errorf(kind, ErrContext, "saved tensor %d is missing", i)
		}
	}
	return nil
}

// AddContext is saved by Add. Gradients need no input values.
type AddContext struct{ shapes }

// SubContext is saved by Sub.
type SubContext struct{ shapes }

// MulContext is saved by Mul: (x, y).
type MulContext struct {
	shapes
	x, y *tensor.RawTensor
}

// DivContext is saved by Div: (x, y).
type DivContext struct {
	shapes
	x, y *tensor.RawTensor
}

// AddBroadcastContext is saved by AddBroadcast. Only the original shapes
// are needed to reduce the gradient.
type AddBroadcastContext struct{ shapes }

// MulBroadcastContext is saved by MulBroadcast: (x, y).
type MulBroadcastContext struct {
	shapes
	x, y *tensor.RawTensor
}

// SqrtContext is saved by Sqrt: (sqrt(x)).
type SqrtContext struct {
	shapes
	out *tensor.RawTensor
}

// SumContext is saved by Sum. The input shape is enough to replicate the
// gradient.
type SumContext struct{ shapes }

// SumAggrContext is saved by SumAggr: (index, rows).
type SumAggrContext struct {
	shapes
	index *tensor.RawTensor
}

// Rows returns the number of input rows aggregated by the forward call.
func (c *SumAggrContext) Rows() int {
	if len(c.in) == 0 || len(c.in[0]) == 0 {
		return 0
	}
	return c.in[0][0]
}

// ReLUContext is saved by ReLU: (x).
type ReLUContext struct {
	shapes
	x *tensor.RawTensor
}

// SiLUContext is saved by SiLU: (x).
type SiLUContext struct {
	shapes
	x *tensor.RawTensor
}

// SigmoidContext is saved by Sigmoid: (sigmoid(x)).
type SigmoidContext struct {
	shapes
	out *tensor.RawTensor
}

// LinearContext is saved by Linear: (x, weight).
type LinearContext struct {
	shapes
	x, weight *tensor.RawTensor
}

// MSELossContext is saved by MSELoss: (x - y).
type MSELossContext struct {
	shapes
	diff *tensor.RawTensor
}

// MAELossContext is saved by MAELoss: (sign(x - y)).
type MAELossContext struct {
	shapes
	sign *tensor.RawTensor
}

func (*AddContext) Kind() Kind          { return Add }
func (*SubContext) Kind() Kind          { return Sub }
func (*MulContext) Kind() Kind          { return Mul }
func (*DivContext) Kind() Kind          { return Div }
func (*AddBroadcastContext) Kind() Kind { return AddBroadcast }
func (*MulBroadcastContext) Kind() Kind { return MulBroadcast }
func (*SqrtContext) Kind() Kind         { return Sqrt }
func (*SumContext) Kind() Kind          { return Sum }
func (*SumAggrContext) Kind() Kind      { return SumAggr }
func (*ReLUContext) Kind() Kind         { return ReLU }
func (*SiLUContext) Kind() Kind         { return SiLU }
func (*SigmoidContext) Kind() Kind      { return Sigmoid }
func (*LinearContext) Kind() Kind       { return Linear }
func (*MSELossContext) Kind() Kind      { return MSELoss }
func (*MAELossContext) Kind() Kind      { return MAELoss }

func (c *AddContext) validate() error          { return c.check(Add) }
func (c *SubContext) validate() error          { return c.check(Sub) }
func (c *MulContext) validate() error          { return c.check(Mul, c.x, c.y) }
func (c *DivContext) validate() error          { return c.check(Div, c.x, c.y) }
func (c *AddBroadcastContext) validate() error { return c.check(AddBroadcast) }
func (c *MulBroadcastContext) validate() error { return c.check(MulBroadcast, c.x, c.y) }
func (c *SqrtContext) validate() error         { return c.check(Sqrt, c.out) }
func (c *SumContext) validate() error          { return c.check(Sum) }
func (c *SumAggrContext) validate() error      { return c.check(SumAggr, c.index) }
func (c *ReLUContext) validate() error         { return c.check(ReLU, c.x) }
func (c *SiLUContext) validate() error         { return c.check(SiLU, c.x) }
func (c *SigmoidContext) validate() error      { return c.check(Sigmoid, c.out) }
func (c *LinearContext) validate() error       { return c.check(Linear, c.x, c.weight) }
func (c *MSELossContext) validate() error      { return c.check(MSELoss, c.diff) }
func (c *MAELossContext) validate() error      { return c.check(MAELoss, c.sign) }
