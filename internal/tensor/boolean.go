package tensor

import "fmt"

// GtScalar returns a Bool tensor marking elements strictly greater than v.
func (t *Tensor) GtScalar(v float32) *Tensor {
	out := MustNew(t.shape, Bool)
	src, dst := t.AsFloat32(), out.AsBool()
	for i := range dst {
		dst[i] = src[i] > v
	}
	return out
}

// And returns the elementwise conjunction of two Bool tensors.
func (t *Tensor) And(other *Tensor) *Tensor {
	if t.dtype != Bool || other.dtype != Bool {
		panic(fmt.Sprintf("And: operands must be bool, got %s and %s", t.dtype, other.dtype))
	}
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("And: shape mismatch %v vs %v", t.shape, other.shape))
	}
	out := MustNew(t.shape, Bool)
	a, b, dst := t.AsBool(), other.AsBool(), out.AsBool()
	for i := range dst {
		dst[i] = a[i] && b[i]
	}
	return out
}

// Not returns the elementwise negation of a Bool tensor.
func (t *Tensor) Not() *Tensor {
	if t.dtype != Bool {
		panic(fmt.Sprintf("Not: operand must be bool, got %s", t.dtype))
	}
	out := MustNew(t.shape, Bool)
	src, dst := t.AsBool(), out.AsBool()
	for i := range dst {
		dst[i] = !src[i]
	}
	return out
}

// Float32 converts a Bool tensor to a Float32 tensor of 0s and 1s.
func (t *Tensor) Float32() *Tensor {
	if t.dtype == Float32 {
		return t.Clone()
	}
	if t.dtype != Bool {
		panic(fmt.Sprintf("Float32: cannot convert %s", t.dtype))
	}
	out := MustNew(t.shape, Float32)
	src, dst := t.AsBool(), out.AsFloat32()
	for i := range dst {
		if src[i] {
			dst[i] = 1.0
		}
	}
	return out
}
