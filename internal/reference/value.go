// Package reference is the trusted autodiff engine kernels are checked
// against. It differentiates scalar float64 Values with the chain rule and
// shares no code with the kernels or their numeric backends.
package reference

import "math"

// Value is a scalar node in the reference computation graph.
type Value struct {
	Data       float64 // the actual scalar value
	Grad       float64 // gradient accumulated during backward pass
	children   []*Value
	localGrads []float64 // ∂self/∂child for each child
}

// NewValue creates a leaf Value.
func NewValue(data float64) *Value {
	return &Value{Data: data}
}

func newNode(data float64, children []*Value, localGrads []float64) *Value {
	return &Value{Data: data, children: children, localGrads: localGrads}
}

// Add returns v + o. Local gradients: 1, 1.
func (v *Value) Add(o *Value) *Value {
	return newNode(v.Data+o.Data, []*Value{v, o}, []float64{1, 1})
}

// Sub returns v - o. Local gradients: 1, -1.
func (v *Value) Sub(o *Value) *Value {
	return newNode(v.Data-o.Data, []*Value{v, o}, []float64{1, -1})
}

// Mul returns v * o. Local gradients: o, v.
func (v *Value) Mul(o *Value) *Value {
	return newNode(v.Data*o.Data, []*Value{v, o}, []float64{o.Data, v.Data})
}

// Div returns v / o. Local gradients: 1/o, -v/o².
func (v *Value) Div(o *Value) *Value {
	return newNode(v.Data/o.Data, []*Value{v, o}, []float64{1 / o.Data, -v.Data / (o.Data * o.Data)})
}

// Scale returns v * c for a constant c.
func (v *Value) Scale(c float64) *Value {
	return newNode(v.Data*c, []*Value{v}, []float64{c})
}

// Sqrt returns √v. Local gradient: 1 / (2√v).
func (v *Value) Sqrt() *Value {
	s := math.Sqrt(v.Data)
	return newNode(s, []*Value{v}, []float64{1 / (2 * s)})
}

// Exp returns e^v. Local gradient: e^v.
func (v *Value) Exp() *Value {
	e := math.Exp(v.Data)
	return newNode(e, []*Value{v}, []float64{e})
}

// Abs returns |v|. Local gradient: sign(v), 0 at 0.
func (v *Value) Abs() *Value {
	var g float64
	switch {
	case v.Data > 0:
		g = 1
	case v.Data < 0:
		g = -1
	}
	return newNode(math.Abs(v.Data), []*Value{v}, []float64{g})
}

// ReLU returns max(0, v). Local gradient: 1 if v > 0, else 0.
func (v *Value) ReLU() *Value {
	if v.Data > 0 {
		return newNode(v.Data, []*Value{v}, []float64{1})
	}
	return newNode(0, []*Value{v}, []float64{0})
}

// Sigmoid returns 1 / (1 + e^-v), built from primitive nodes.
func (v *Value) Sigmoid() *Value {
	one := NewValue(1)
	return one.Div(one.Add(v.Scale(-1).Exp()))
}

// SiLU returns v * sigmoid(v), built from primitive nodes.
func (v *Value) SiLU() *Value {
	return v.Mul(v.Sigmoid())
}

// Backward seeds every root with its gradient and propagates to all
// reachable Values. Gradients accumulate, so leaves should be fresh.
func Backward(roots []*Value, seeds []float64) {
	topo := topoOrder(roots)
	for i, r := range roots {
		r.Grad += seeds[i]
	}
	for _, node := range topo {
		for i, child := range node.children {
			child.Grad += node.Grad * node.localGrads[i]
		}
	}
}

// topoOrder returns every Value reachable from roots, each one before all
// of its children.
func topoOrder(roots []*Value) []*Value {
	type item struct {
		node *Value
		done bool
	}

	var topo []*Value
	visited := make(map[*Value]bool)
	stack := make([]item, 0, len(roots))
	for _, r := range roots {
		stack = append(stack, item{node: r})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.done {
			topo = append(topo, it.node)
			continue
		}
		if visited[it.node] {
			continue
		}
		visited[it.node] = true

		stack = append(stack, item{node: it.node, done: true})
		for _, child := range it.node.children {
			if !visited[child] {
				stack = append(stack, item{node: child})
			}
		}
	}

	// Post-order lists children first; reverse it.
	for i, j := 0, len(topo)-1; i < j; i, j = i+1, j-1 {
		topo[i], topo[j] = topo[j], topo[i]
	}
	return topo
}
