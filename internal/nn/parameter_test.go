package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

func TestNewParameter(t *testing.T) {
	p := NewParameter("stem.weight", tensor.Zeros(tensor.Shape{2, 2}))
	assert.Equal(t, "stem.weight", p.Name())
	assert.True(t, p.Tensor().Shape().Equal(tensor.Shape{2, 2}))
	assert.Nil(t, p.Grad())

	assert.Panics(t, func() { NewParameter("nil", nil) })

	ints, err := tensor.FromInt64([]int64{1}, tensor.Shape{1})
	require.NoError(t, err)
	assert.Panics(t, func() { NewParameter("ints", ints) })
}

func TestParameterGrad(t *testing.T) {
	p := NewParameter("w", tensor.Zeros(tensor.Shape{3}))

	grad := tensor.Full(tensor.Shape{3}, 0.5)
	p.SetGrad(grad)
	assert.Equal(t, grad, p.Grad())

	assert.Panics(t, func() { p.SetGrad(tensor.Zeros(tensor.Shape{4})) })

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}
