package kernel

import "fmt"

// Kind identifies one operator kernel. The set is closed: every Kind has
// exactly one registry entry and switches over Kind are exhaustive.
type Kind int

// Supported kernels.
const (
	Add Kind = iota
	Sub
	Mul
	Div
	AddBroadcast
	MulBroadcast
	Sqrt
	Sum
	SumAggr
	ReLU
	SiLU
	Sigmoid
	Linear
	MSELoss
	MAELoss

	numKinds
)

var kindNames = [numKinds]string{
	Add:          "add",
	Sub:          "sub",
	Mul:          "mul",
	Div:          "div",
	AddBroadcast: "add_broadcast",
	MulBroadcast: "mul_broadcast",
	Sqrt:         "sqrt",
	Sum:          "sum",
	SumAggr:      "sum_aggr",
	ReLU:         "relu",
	SiLU:         "silu",
	Sigmoid:      "sigmoid",
	Linear:       "linear",
	MSELoss:      "mse_loss",
	MAELoss:      "mae_loss",
}

// Valid reports whether k names a registered kernel.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// String returns the kernel name.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every kernel kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind maps a kernel name back to its Kind. Only user-facing surfaces
// (flags, reports) go through names; dispatch always uses the Kind itself.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown kernel %q", name)
}
