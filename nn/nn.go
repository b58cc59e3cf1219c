// Package nn provides the public API for neural network building blocks.
package nn

import (
	"github.com/vkit-x/vkit-open-model/internal/nn"
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// Parameter represents a trainable parameter: a Float32 tensor plus its
// gradient slot.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}
