package tensor

import (
	"fmt"

	"github.com/chewxy/math32"
)

// checkBinary panics unless both operands are Float32 tensors of equal shape.
// The loss functions operate on exactly matched shapes; silent broadcasting
// would hide upstream contract breakage, so there is none.
func checkBinary(op string, a, b *Tensor) {
	if a.dtype != Float32 || b.dtype != Float32 {
		panic(fmt.Sprintf("%s: operands must be float32, got %s and %s", op, a.dtype, b.dtype))
	}
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.shape, b.shape))
	}
}

// Add returns the elementwise sum of two tensors.
func (t *Tensor) Add(other *Tensor) *Tensor {
	checkBinary("Add", t, other)
	out := MustNew(t.shape, Float32)
	a, b, dst := t.AsFloat32(), other.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
	return out
}

// Sub returns the elementwise difference of two tensors.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	checkBinary("Sub", t, other)
	out := MustNew(t.shape, Float32)
	a, b, dst := t.AsFloat32(), other.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
	return out
}

// Mul returns the elementwise product of two tensors.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	checkBinary("Mul", t, other)
	out := MustNew(t.shape, Float32)
	a, b, dst := t.AsFloat32(), other.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
	return out
}

// Div returns the elementwise quotient of two tensors.
func (t *Tensor) Div(other *Tensor) *Tensor {
	checkBinary("Div", t, other)
	out := MustNew(t.shape, Float32)
	a, b, dst := t.AsFloat32(), other.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = a[i] / b[i]
	}
	return out
}

// AddScalar returns t + scalar elementwise.
func (t *Tensor) AddScalar(scalar float32) *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = src[i] + scalar
	}
	return out
}

// SubScalar returns t - scalar elementwise.
func (t *Tensor) SubScalar(scalar float32) *Tensor {
	return t.AddScalar(-scalar)
}

// MulScalar returns t * scalar elementwise.
func (t *Tensor) MulScalar(scalar float32) *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = src[i] * scalar
	}
	return out
}

// Sigmoid returns 1 / (1 + exp(-t)) elementwise.
func (t *Tensor) Sigmoid() *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = 1.0 / (1.0 + math32.Exp(-src[i]))
	}
	return out
}

// Log returns the natural logarithm elementwise.
// Callers clamp away non-positive values first (see ClampMin).
func (t *Tensor) Log() *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = math32.Log(src[i])
	}
	return out
}

// Exp returns e**t elementwise.
func (t *Tensor) Exp() *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = math32.Exp(src[i])
	}
	return out
}

// Abs returns the absolute value elementwise.
func (t *Tensor) Abs() *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = math32.Abs(src[i])
	}
	return out
}

// Square returns t*t elementwise.
func (t *Tensor) Square() *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		dst[i] = src[i] * src[i]
	}
	return out
}

// ClampMin returns max(t, min) elementwise.
func (t *Tensor) ClampMin(min float32) *Tensor {
	out := MustNew(t.shape, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := range dst {
		if src[i] < min {
			dst[i] = min
		} else {
			dst[i] = src[i]
		}
	}
	return out
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float32 {
	var sum float32
	for _, v := range t.AsFloat32() {
		sum += v
	}
	return sum
}

// Mean returns the mean of all elements.
func (t *Tensor) Mean() float32 {
	return t.Sum() / float32(t.NumElements())
}
