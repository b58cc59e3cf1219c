// Package optim provides the public API for optimizers and gradient
// utilities.
package optim

import (
	"github.com/vkit-x/vkit-open-model/internal/nn"
	"github.com/vkit-x/vkit-open-model/internal/optim"
)

// Optimizer is the base interface for optimization algorithms.
type Optimizer = optim.Optimizer

// State is the serializable optimizer state.
type State = optim.State

// MomentTensor is one named optimizer state tensor.
type MomentTensor = optim.MomentTensor

// AdamW implements Adam with decoupled weight decay.
type AdamW = optim.AdamW

// AdamWConfig holds AdamW hyperparameters.
type AdamWConfig = optim.AdamWConfig

// DefaultAdamWConfig returns the training defaults (lr 1e-3, betas
// 0.9/0.999, eps 1e-8, weight decay 0.01).
func DefaultAdamWConfig() AdamWConfig {
	return optim.DefaultAdamWConfig()
}

// NewAdamW creates an AdamW optimizer over the given parameters.
func NewAdamW(params []*nn.Parameter, config AdamWConfig) *AdamW {
	return optim.NewAdamW(params, config)
}

// ClipGradNorm rescales all gradients in place so their combined L2 norm
// does not exceed maxNorm. Returns the pre-clip norm.
func ClipGradNorm(params []*nn.Parameter, maxNorm float64) float64 {
	return optim.ClipGradNorm(params, maxNorm)
}
