package reference

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// Tensor is a row-major array of reference Values.
type Tensor struct {
	Shape tensor.Shape
	Data  []*Value
}

// FromRaw creates a tensor of fresh leaf Values from a float tensor.
func FromRaw(raw *tensor.RawTensor) Tensor {
	vals := raw.Float64s()
	data := make([]*Value, len(vals))
	for i, v := range vals {
		data[i] = NewValue(v)
	}
	return Tensor{Shape: raw.Shape().Clone(), Data: data}
}

// Values returns the forward values.
func (t Tensor) Values() []float64 {
	out := make([]float64, len(t.Data))
	for i, v := range t.Data {
		out[i] = v.Data
	}
	return out
}

// Grads returns the accumulated gradients.
func (t Tensor) Grads() []float64 {
	out := make([]float64, len(t.Data))
	for i, v := range t.Data {
		out[i] = v.Grad
	}
	return out
}

// Backward propagates seed, shaped like t, through the graph that produced t.
func (t Tensor) Backward(seed []float64) error {
	if len(seed) != len(t.Data) {
		return fmt.Errorf("seed has %d elements, tensor %v has %d", len(seed), t.Shape, len(t.Data))
	}
	Backward(t.Data, seed)
	return nil
}

// Map applies f element-wise.
func Map(a Tensor, f func(*Value) *Value) Tensor {
	data := make([]*Value, len(a.Data))
	for i, v := range a.Data {
		data[i] = f(v)
	}
	return Tensor{Shape: a.Shape.Clone(), Data: data}
}

// Binary applies f element-wise with NumPy-style broadcasting.
func Binary(a, b Tensor, f func(x, y *Value) *Value) (Tensor, error) {
	out, _, err := tensor.BroadcastShapes(a.Shape, b.Shape)
	if err != nil {
		return Tensor{}, err
	}
	outStrides := out.ComputeStrides()
	aStrides := a.Shape.ComputeStrides()
	bStrides := b.Shape.ComputeStrides()

	data := make([]*Value, out.NumElements())
	for i := range data {
		x := a.Data[tensor.BroadcastIndex(i, out, a.Shape, outStrides, aStrides)]
		y := b.Data[tensor.BroadcastIndex(i, out, b.Shape, outStrides, bStrides)]
		data[i] = f(x, y)
	}
	return Tensor{Shape: out, Data: data}, nil
}

// SumRows sums a 2-D tensor over axis 0, keeping it: [R, C] -> [1, C].
func SumRows(a Tensor) (Tensor, error) {
	if len(a.Shape) != 2 {
		return Tensor{}, fmt.Errorf("sum rows: want 2-D tensor, got %v", a.Shape)
	}
	rows, cols := a.Shape[0], a.Shape[1]
	data := make([]*Value, cols)
	for c := 0; c < cols; c++ {
		acc := a.Data[c]
		for r := 1; r < rows; r++ {
			acc = acc.Add(a.Data[r*cols+c])
		}
		data[c] = acc
	}
	return Tensor{Shape: tensor.Shape{1, cols}, Data: data}, nil
}

// SegmentSum sums the rows of a [R, C] tensor into buckets by index.
// Buckets with no rows hold constant zeros.
func SegmentSum(a Tensor, index []int, buckets int) (Tensor, error) {
	if len(a.Shape) != 2 || len(index) != a.Shape[0] {
		return Tensor{}, fmt.Errorf("segment sum: want [R, C] tensor and R indices, got %v and %d", a.Shape, len(index))
	}
	cols := a.Shape[1]
	data := make([]*Value, buckets*cols)
	for r, b := range index {
		if b < 0 || b >= buckets {
			return Tensor{}, fmt.Errorf("segment sum: index %d out of range [0, %d)", b, buckets)
		}
		for c := 0; c < cols; c++ {
			v := a.Data[r*cols+c]
			if acc := data[b*cols+c]; acc != nil {
				data[b*cols+c] = acc.Add(v)
			} else {
				data[b*cols+c] = v.Scale(1)
			}
		}
	}
	for i, v := range data {
		if v == nil {
			data[i] = NewValue(0)
		}
	}
	return Tensor{Shape: tensor.Shape{buckets, cols}, Data: data}, nil
}

// Linear computes x @ Wᵀ + b for x [N, in], W [out, in], b [out].
func Linear(x, w, b Tensor) (Tensor, error) {
	if len(x.Shape) != 2 || len(w.Shape) != 2 || len(b.Shape) != 1 ||
		x.Shape[1] != w.Shape[1] || b.Shape[0] != w.Shape[0] {
		return Tensor{}, fmt.Errorf("linear: incompatible shapes %v, %v, %v", x.Shape, w.Shape, b.Shape)
	}
	n, in, out := x.Shape[0], x.Shape[1], w.Shape[0]
	data := make([]*Value, n*out)
	for i := 0; i < n; i++ {
		for o := 0; o < out; o++ {
			acc := b.Data[o]
			for k := 0; k < in; k++ {
				acc = acc.Add(x.Data[i*in+k].Mul(w.Data[o*in+k]))
			}
			data[i*out+o] = acc
		}
	}
	return Tensor{Shape: tensor.Shape{n, out}, Data: data}, nil
}

// Mean reduces every element to their mean, a scalar tensor.
func Mean(a Tensor) Tensor {
	acc := a.Data[0]
	for _, v := range a.Data[1:] {
		acc = acc.Add(v)
	}
	return Tensor{Shape: tensor.Shape{}, Data: []*Value{acc.Scale(1 / float64(len(a.Data)))}}
}
