// Package nn holds the trainable-parameter type shared by models and
// optimizers. The detector network itself lives outside this module and is
// consumed through the training.Model interface.
package nn

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// Parameter is a trainable tensor with an associated gradient.
//
// The gradient is nil until the model's backward pass populates it; the
// optimizer reads it during Step and the caller clears it with ZeroGrad
// before the next iteration.
type Parameter struct {
	name   string
	tensor *tensor.Tensor
	grad   *tensor.Tensor
}

// NewParameter creates a trainable parameter around an initialized tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	if t == nil {
		panic("NewParameter: nil tensor")
	}
	if t.DType() != tensor.Float32 {
		panic(fmt.Sprintf("NewParameter: parameter %q must be float32, got %s", name, t.DType()))
	}
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name (e.g. "backbone.stem.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad stores the gradient tensor. It must match the parameter's shape.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	if grad != nil && !grad.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Sprintf("SetGrad: gradient shape %v != parameter %q shape %v",
			grad.Shape(), p.name, p.tensor.Shape()))
	}
	p.grad = grad
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
