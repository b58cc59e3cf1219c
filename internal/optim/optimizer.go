// Package optim implements the parameter-update side of training: the
// Optimizer interface, AdamW, and gradient clipping.
package optim

// Optimizer is the base interface for optimization algorithms.
//
// Optimizers read each parameter's gradient (populated by the model's
// backward pass) and update the parameter tensor in place.
type Optimizer interface {
	// Step applies one gradient update to every parameter that has a
	// gradient. Parameters with a nil gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients. Call it after Step so
	// gradients do not accumulate across iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate; the LR scheduler calls this every
	// batch.
	SetLR(lr float64)

	// State exports the optimizer's internal state for checkpointing.
	State() *State

	// LoadState restores internal state from a checkpoint.
	LoadState(state *State) error
}

// State is the serializable optimizer state.
type State struct {
	Type     string            `json:"type"`
	Timestep int               `json:"timestep"`
	Moments  []MomentTensor    `json:"moments,omitempty"`
	Scalars  map[string]float64 `json:"scalars,omitempty"`
}

// MomentTensor is one named optimizer state tensor (first or second moment).
type MomentTensor struct {
	Param string    `json:"param"`
	Kind  string    `json:"kind"` // "m" or "v"
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}
