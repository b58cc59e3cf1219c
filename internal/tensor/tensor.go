package tensor

import (
	"fmt"
	"unsafe"
)

// Tensor is a dense row-major tensor.
//
// Tensors are created per training step and consumed transiently inside a
// loss computation; operations never mutate their receiver and always
// allocate fresh result tensors.
type Tensor struct {
	shape  Shape
	stride []int
	dtype  DataType
	data   []byte
}

// New creates a zero-initialized tensor with the given shape and type.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &Tensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		data:   make([]byte, shape.NumElements()*dtype.Size()),
	}, nil
}

// MustNew is New, panicking on an invalid shape.
// Internal call sites that have already validated shapes use this form.
func MustNew(shape Shape, dtype DataType) *Tensor {
	t, err := New(shape, dtype)
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros creates a Float32 tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return MustNew(shape, Float32)
}

// Full creates a Float32 tensor filled with a specific value.
func Full(shape Shape, value float32) *Tensor {
	t := MustNew(shape, Float32)
	data := t.AsFloat32()
	for i := range data {
		data[i] = value
	}
	return t
}

// Scalar creates a Float32 tensor of shape {1} holding a single value.
// Loss functions return their result in this form.
func Scalar(value float32) *Tensor {
	t := MustNew(Shape{1}, Float32)
	t.AsFloat32()[0] = value
	return t
}

// FromFloat32 creates a Float32 tensor from a Go slice.
// The slice is copied; the tensor does not alias the caller's memory.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	t := MustNew(shape, Float32)
	copy(t.AsFloat32(), data)
	return t, nil
}

// FromInt64 creates an Int64 tensor from a Go slice.
func FromInt64(data []int64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	t := MustNew(shape, Int64)
	copy(t.AsInt64(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return t.stride
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", t.dtype))
	}
	//nolint:gosec // zero-copy reinterpretation, bounds given by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (t *Tensor) AsInt64() []int64 {
	if t.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", t.dtype))
	}
	//nolint:gosec // zero-copy reinterpretation, bounds given by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (t *Tensor) AsBool() []bool {
	if t.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", t.dtype))
	}
	//nolint:gosec // zero-copy reinterpretation, bounds given by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// Item returns the single element of a one-element Float32 tensor.
func (t *Tensor) Item() float32 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item: tensor has %d elements, want 1", t.NumElements()))
	}
	return t.AsFloat32()[0]
}

// At returns the Float32 element at the given indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.AsFloat32()[t.flatIndex(indices)]
}

// Set stores a Float32 value at the given indices.
func (t *Tensor) Set(value float32, indices ...int) {
	t.AsFloat32()[t.flatIndex(indices)] = value
}

func (t *Tensor) flatIndex(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("got %d indices for %d-dimensional tensor", len(indices), len(t.shape)))
	}
	flat := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		flat += idx * t.stride[i]
	}
	return flat
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := MustNew(t.shape, t.dtype)
	copy(out.data, t.data)
	return out
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, dtype=%s)", t.shape, t.dtype)
}
