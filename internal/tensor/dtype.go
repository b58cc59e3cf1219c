// Package tensor provides the dense tensor type and the operations the
// loss functions are built from.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types.
//
// Float32 carries feature maps, score maps and masks; Int64 carries label
// point coordinates; Bool carries comparison results.
const (
	Float32 DataType = iota
	Int64
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Int64:
		return 8
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}
