package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqueeze(t *testing.T) {
	x, err := FromFloat32([]float32{1, 2, 3, 4}, Shape{1, 2, 2})
	require.NoError(t, err)

	y := x.Squeeze(0)
	assert.True(t, y.Shape().Equal(Shape{2, 2}))
	assert.Equal(t, []float32{1, 2, 3, 4}, y.AsFloat32())

	assert.Panics(t, func() { x.Squeeze(1) }) // size 2, not 1
	assert.Panics(t, func() { x.Squeeze(5) })
}

func TestCrop2DInclusive(t *testing.T) {
	// 1 batch, 3x4 map with row-major values 0..11.
	data := make([]float32, 12)
	for i := range data {
		data[i] = float32(i)
	}
	x, err := FromFloat32(data, Shape{1, 3, 4})
	require.NoError(t, err)

	// Bounds are inclusive: rows 1..2 and cols 1..3 make a 2x3 crop.
	crop := x.Crop2D(Box{Up: 1, Down: 2, Left: 1, Right: 3})
	assert.True(t, crop.Shape().Equal(Shape{1, 2, 3}))
	assert.Equal(t, []float32{5, 6, 7, 9, 10, 11}, crop.AsFloat32())
}

func TestCrop2DSingleElement(t *testing.T) {
	data := []float32{0, 1, 2, 3}
	x, err := FromFloat32(data, Shape{1, 2, 2})
	require.NoError(t, err)

	crop := x.Crop2D(Box{Up: 1, Down: 1, Left: 1, Right: 1})
	assert.True(t, crop.Shape().Equal(Shape{1, 1, 1}))
	assert.Equal(t, float32(3), crop.Item())
}

func TestCrop2DOutOfBoundsPanics(t *testing.T) {
	x := Zeros(Shape{1, 2, 2})
	assert.Panics(t, func() { x.Crop2D(Box{Up: 0, Down: 2, Left: 0, Right: 1}) })
	assert.Panics(t, func() { x.Crop2D(Box{Up: 1, Down: 0, Left: 0, Right: 1}) })
	assert.Panics(t, func() { Zeros(Shape{2, 2}).Crop2D(Box{Up: 0, Down: 1, Left: 0, Right: 1}) })
}

func TestBoxDimensions(t *testing.T) {
	b := Box{Up: 2, Down: 5, Left: 1, Right: 1}
	assert.Equal(t, 4, b.Height())
	assert.Equal(t, 1, b.Width())
	assert.NoError(t, b.Check(6, 2))
	assert.Error(t, b.Check(5, 2))
}

func TestNarrowSplitAndReconstruct(t *testing.T) {
	// (1, 2, 4): two points with 4 channels each.
	x, err := FromFloat32([]float32{
		10, 11, 12, 13,
		20, 21, 22, 23,
	}, Shape{1, 2, 4})
	require.NoError(t, err)

	head := x.Narrow(2, 0, 1)
	tail := x.Narrow(2, 1, 3)
	assert.True(t, head.Shape().Equal(Shape{1, 2, 1}))
	assert.True(t, tail.Shape().Equal(Shape{1, 2, 3}))
	assert.Equal(t, []float32{10, 20}, head.AsFloat32())
	assert.Equal(t, []float32{11, 12, 13, 21, 22, 23}, tail.AsFloat32())

	assert.Panics(t, func() { x.Narrow(2, 2, 3) })
	assert.Panics(t, func() { x.Narrow(3, 0, 1) })
}

func TestNarrowMiddleDim(t *testing.T) {
	x, err := FromFloat32([]float32{
		1, 2,
		3, 4,
		5, 6,
	}, Shape{1, 3, 2})
	require.NoError(t, err)

	mid := x.Narrow(1, 1, 1)
	assert.True(t, mid.Shape().Equal(Shape{1, 1, 2}))
	assert.Equal(t, []float32{3, 4}, mid.AsFloat32())
}

func TestTranspose12(t *testing.T) {
	// (1, 2, 3) -> (1, 3, 2)
	x, err := FromFloat32([]float32{
		1, 2, 3,
		4, 5, 6,
	}, Shape{1, 2, 3})
	require.NoError(t, err)

	y := x.Transpose12()
	assert.True(t, y.Shape().Equal(Shape{1, 3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, y.AsFloat32())

	// Transposing twice restores the original.
	assert.Equal(t, x.AsFloat32(), y.Transpose12().AsFloat32())
}

func TestNormLastDim(t *testing.T) {
	x, err := FromFloat32([]float32{
		3, 4,
		0, 0,
	}, Shape{1, 2, 2})
	require.NoError(t, err)

	n := x.NormLastDim()
	assert.True(t, n.Shape().Equal(Shape{1, 2}))
	assert.InDelta(t, 5.0, n.At(0, 0), 1e-6)
	assert.InDelta(t, 0.0, n.At(0, 1), 1e-6)
}
