package tensor

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Squeeze removes a dimension of size 1.
func (t *Tensor) Squeeze(dim int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("Squeeze: dimension %d out of range for shape %v", dim, t.shape))
	}
	if t.shape[dim] != 1 {
		panic(fmt.Sprintf("Squeeze: dimension %d has size %d, want 1", dim, t.shape[dim]))
	}

	newShape := make(Shape, 0, len(t.shape)-1)
	for i, d := range t.shape {
		if i != dim {
			newShape = append(newShape, d)
		}
	}

	out := MustNew(newShape, t.dtype)
	copy(out.data, t.data)
	return out
}

// Crop2D crops a (B, H, W) tensor to the box's inclusive row/column range,
// producing (B, box.Height(), box.Width()).
//
// The closed-interval convention matters: Down and Right rows/columns are
// part of the result.
func (t *Tensor) Crop2D(box Box) *Tensor {
	if len(t.shape) != 3 {
		panic(fmt.Sprintf("Crop2D: want 3-dimensional (B, H, W) tensor, got shape %v", t.shape))
	}
	batch, height, width := t.shape[0], t.shape[1], t.shape[2]
	if err := box.Check(height, width); err != nil {
		panic(fmt.Sprintf("Crop2D: %v", err))
	}

	out := MustNew(Shape{batch, box.Height(), box.Width()}, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	di := 0
	for b := 0; b < batch; b++ {
		for y := box.Up; y <= box.Down; y++ {
			rowStart := (b*height + y) * width
			copy(dst[di:di+box.Width()], src[rowStart+box.Left:rowStart+box.Right+1])
			di += box.Width()
		}
	}
	return out
}

// Narrow returns a copy of the tensor restricted to [start, start+length)
// along the given dimension.
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("Narrow: dimension %d out of range for shape %v", dim, t.shape))
	}
	if start < 0 || length <= 0 || start+length > t.shape[dim] {
		panic(fmt.Sprintf("Narrow: range [%d, %d) invalid for dimension of size %d",
			start, start+length, t.shape[dim]))
	}

	newShape := t.shape.Clone()
	newShape[dim] = length
	out := MustNew(newShape, t.dtype)

	esize := t.dtype.Size()
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= t.shape[i]
	}
	inner := t.stride[dim] // elements per step along dim

	srcBlock := t.shape[dim] * inner * esize
	dstBlock := length * inner * esize
	for o := 0; o < outer; o++ {
		srcOff := o*srcBlock + start*inner*esize
		copy(out.data[o*dstBlock:(o+1)*dstBlock], t.data[srcOff:srcOff+dstBlock])
	}
	return out
}

// Transpose12 swaps dimensions 1 and 2 of a 3-dimensional tensor.
// The corner-angle loss uses it to move the class dimension second, the
// layout classification losses expect.
func (t *Tensor) Transpose12() *Tensor {
	if len(t.shape) != 3 {
		panic(fmt.Sprintf("Transpose12: want 3-dimensional tensor, got shape %v", t.shape))
	}
	if t.dtype != Float32 {
		panic(fmt.Sprintf("Transpose12: want float32 tensor, got %s", t.dtype))
	}
	b, m, n := t.shape[0], t.shape[1], t.shape[2]

	out := MustNew(Shape{b, n, m}, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := 0; i < b; i++ {
		for j := 0; j < m; j++ {
			for k := 0; k < n; k++ {
				dst[(i*n+k)*m+j] = src[(i*m+j)*n+k]
			}
		}
	}
	return out
}

// NormLastDim computes the L2 norm along the last dimension of a
// 3-dimensional tensor, reducing (B, P, C) to (B, P).
func (t *Tensor) NormLastDim() *Tensor {
	if len(t.shape) != 3 {
		panic(fmt.Sprintf("NormLastDim: want 3-dimensional tensor, got shape %v", t.shape))
	}
	b, p, c := t.shape[0], t.shape[1], t.shape[2]

	out := MustNew(Shape{b, p}, Float32)
	src, dst := t.AsFloat32(), out.AsFloat32()
	for i := 0; i < b*p; i++ {
		var sum float32
		for j := 0; j < c; j++ {
			v := src[i*c+j]
			sum += v * v
		}
		dst[i] = math32.Sqrt(sum)
	}
	return out
}
