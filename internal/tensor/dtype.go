// Package tensor provides the dense tensor representation shared by kernels,
// backends and the reference engine.
package tensor

// Numeric is a constraint for element types that can back a RawTensor.
type Numeric interface {
	float32 | float64 | int32 | int64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the data type holds floating-point values.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// IsInteger reports whether the data type holds integer values.
func (dt DataType) IsInteger() bool {
	return dt == Int32 || dt == Int64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T Numeric]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	default:
		panic("unsupported type")
	}
}
