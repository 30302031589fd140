package conformance

import (
	"math/rand/v2"

	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/reference"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// Case describes how to exercise one kernel: how to draw inputs that satisfy
// its shape contract and how to express the same computation on the
// reference engine.
type Case struct {
	Kind    kernel.Kind
	Buckets int // SumAggr only

	// Inputs draws the kernel inputs in descriptor order.
	Inputs func(rng *rand.Rand, dtype tensor.DataType) ([]*tensor.RawTensor, error)

	// Reference builds the equivalent reference computation. ref holds leaf
	// tensors for differentiable inputs (zero Tensor elsewhere); raw holds
	// the kernel inputs, for non-differentiable ones such as an index.
	Reference func(ref []reference.Tensor, raw []*tensor.RawTensor) (reference.Tensor, error)
}

// segments is the bucket count of the SumAggr case.
const segments = 4

// Cases returns one case per kernel kind, in kind order.
func Cases() []Case {
	return []Case{
		binaryCase(kernel.Add, shape(4, 10), shape(4, 10), unitRange, (*reference.Value).Add),
		binaryCase(kernel.Sub, shape(4, 10), shape(4, 10), unitRange, (*reference.Value).Sub),
		binaryCase(kernel.Mul, shape(4, 10), shape(4, 10), unitRange, (*reference.Value).Mul),
		binaryCase(kernel.Div, shape(4, 10), shape(4, 10), denominatorRange, (*reference.Value).Div),
		binaryCase(kernel.AddBroadcast, shape(10, 4), shape(1, 4), unitRange, (*reference.Value).Add),
		binaryCase(kernel.MulBroadcast, shape(10, 4), shape(1, 4), unitRange, (*reference.Value).Mul),
		unaryCase(kernel.Sqrt, unitRange, (*reference.Value).Sqrt),
		{
			Kind:   kernel.Sum,
			Inputs: randInputs(rangeOf(shape(4, 10), unitRange)),
			Reference: func(ref []reference.Tensor, _ []*tensor.RawTensor) (reference.Tensor, error) {
				return reference.SumRows(ref[0])
			},
		},
		{
			Kind:    kernel.SumAggr,
			Buckets: segments,
			Inputs: func(rng *rand.Rand, dtype tensor.DataType) ([]*tensor.RawTensor, error) {
				x, err := tensor.Rand(rng, shape(10, 4), dtype, 0, 1)
				if err != nil {
					return nil, err
				}
				index, err := tensor.RandIndex(rng, 10, segments, true)
				if err != nil {
					return nil, err
				}
				return []*tensor.RawTensor{x, index}, nil
			},
			Reference: func(ref []reference.Tensor, raw []*tensor.RawTensor) (reference.Tensor, error) {
				return reference.SegmentSum(ref[0], raw[1].Ints(), segments)
			},
		},
		unaryCase(kernel.ReLU, signedRange, (*reference.Value).ReLU),
		unaryCase(kernel.SiLU, signedRange, (*reference.Value).SiLU),
		unaryCase(kernel.Sigmoid, signedRange, (*reference.Value).Sigmoid),
		{
			Kind: kernel.Linear,
			Inputs: randInputs(
				rangeOf(shape(4, 10), unitRange),
				rangeOf(shape(5, 10), unitRange),
				rangeOf(shape(5), unitRange),
			),
			Reference: func(ref []reference.Tensor, _ []*tensor.RawTensor) (reference.Tensor, error) {
				return reference.Linear(ref[0], ref[1], ref[2])
			},
		},
		lossCase(kernel.MSELoss, func(v *reference.Value) *reference.Value { return v.Mul(v) }),
		lossCase(kernel.MAELoss, (*reference.Value).Abs),
	}
}

// interval is a half-open range [low, high) for uniform inputs.
type interval struct{ low, high float64 }

var (
	unitRange   = interval{0, 1}
	signedRange = interval{-1, 1}
	// denominatorRange keeps divisors away from zero so gradients stay finite.
	denominatorRange = interval{0.5, 1.5}
)

type inputSpec struct {
	shape tensor.Shape
	r     interval
}

func shape(dims ...int) tensor.Shape { return tensor.Shape(dims) }

func rangeOf(s tensor.Shape, r interval) inputSpec { return inputSpec{shape: s, r: r} }

func randInputs(specs ...inputSpec) func(*rand.Rand, tensor.DataType) ([]*tensor.RawTensor, error) {
	return func(rng *rand.Rand, dtype tensor.DataType) ([]*tensor.RawTensor, error) {
		inputs := make([]*tensor.RawTensor, len(specs))
		for i, s := range specs {
			t, err := tensor.Rand(rng, s.shape, dtype, s.r.low, s.r.high)
			if err != nil {
				return nil, err
			}
			inputs[i] = t
		}
		return inputs, nil
	}
}

// binaryCase draws x from [0, 1) and y from yRange.
func binaryCase(kind kernel.Kind, xs, ys tensor.Shape, yRange interval, f func(x, y *reference.Value) *reference.Value) Case {
	return Case{
		Kind:   kind,
		Inputs: randInputs(rangeOf(xs, unitRange), rangeOf(ys, yRange)),
		Reference: func(ref []reference.Tensor, _ []*tensor.RawTensor) (reference.Tensor, error) {
			return reference.Binary(ref[0], ref[1], f)
		},
	}
}

func unaryCase(kind kernel.Kind, r interval, f func(*reference.Value) *reference.Value) Case {
	return Case{
		Kind:   kind,
		Inputs: randInputs(rangeOf(shape(4, 10), r)),
		Reference: func(ref []reference.Tensor, _ []*tensor.RawTensor) (reference.Tensor, error) {
			return reference.Map(ref[0], f), nil
		},
	}
}

// lossCase builds mean(f(x - y)).
func lossCase(kind kernel.Kind, f func(*reference.Value) *reference.Value) Case {
	return Case{
		Kind:   kind,
		Inputs: randInputs(rangeOf(shape(4, 10), unitRange), rangeOf(shape(4, 10), unitRange)),
		Reference: func(ref []reference.Tensor, _ []*tensor.RawTensor) (reference.Tensor, error) {
			diff, err := reference.Binary(ref[0], ref[1], (*reference.Value).Sub)
			if err != nil {
				return reference.Tensor{}, err
			}
			return reference.Mean(reference.Map(diff, f)), nil
		},
	}
}
