// Package tensor provides the public API for dense tensors.
//
// Tensors are row-major, CPU-resident, and typed (Float32, Int64, Bool).
// Shape violations panic; construction from untrusted sizes goes through
// New, which returns an error instead.
//
// Example:
//
//	pred := tensor.Zeros(tensor.Shape{2, 1, 4, 4})
//	gt := tensor.Full(tensor.Shape{2, 1, 4, 4}, 1.0)
//	diff := tensor.Sub(pred, gt)
package tensor

import (
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// DataType identifies the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int64   DataType = tensor.Int64
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense row-major tensor.
type Tensor = tensor.Tensor

// Box is an inclusive 2D crop region over the last two dimensions of a
// feature map.
type Box = tensor.Box

// New allocates a zeroed tensor, returning an error for invalid shapes.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.New(shape, dtype)
}

// MustNew allocates a zeroed tensor and panics on invalid shapes.
func MustNew(shape Shape, dtype DataType) *Tensor {
	return tensor.MustNew(shape, dtype)
}

// Zeros allocates a Float32 tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full allocates a Float32 tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Scalar wraps a single float32 in a shape-{1} tensor.
func Scalar(value float32) *Tensor {
	return tensor.Scalar(value)
}

// FromFloat32 builds a Float32 tensor from data; len(data) must equal the
// shape's element count.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromInt64 builds an Int64 tensor from data.
func FromInt64(data []int64, shape Shape) (*Tensor, error) {
	return tensor.FromInt64(data, shape)
}

// Element-wise operations. All of these allocate a new result tensor and
// panic when operand shapes or dtypes disagree.

// Add returns a + b element-wise.
func Add(a, b *Tensor) *Tensor { return a.Add(b) }

// Sub returns a - b element-wise.
func Sub(a, b *Tensor) *Tensor { return a.Sub(b) }

// Mul returns a * b element-wise.
func Mul(a, b *Tensor) *Tensor { return a.Mul(b) }

// Div returns a / b element-wise.
func Div(a, b *Tensor) *Tensor { return a.Div(b) }

// Sigmoid returns 1/(1+exp(-x)) element-wise.
func Sigmoid(x *Tensor) *Tensor { return x.Sigmoid() }

// GatherPoints indexes a (B, C, H, W) feature map at per-batch point
// coordinates, producing (B, P, C).
func GatherPoints(feature, ys, xs *Tensor) *Tensor {
	return tensor.GatherPoints(feature, ys, xs)
}
