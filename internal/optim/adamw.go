package optim

import (
	"fmt"
	"math"

	"github.com/vkit-x/vkit-open-model/internal/nn"
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// AdamW implements Adam with decoupled weight decay.
//
// Update rule per element:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * g
//	v_t = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param -= lr * (m_hat / (sqrt(v_hat) + eps) + weight_decay * param)
//
// Unlike classic Adam+L2, the decay is applied directly to the parameter,
// not folded into the gradient.
//
// Reference: "Decoupled Weight Decay Regularization" (Loshchilov & Hutter, 2019)
type AdamW struct {
	params      []*nn.Parameter
	lr          float64
	beta1       float64
	beta2       float64
	eps         float64
	weightDecay float64
	t           int // Timestep for bias correction
	m           map[*nn.Parameter]*tensor.Tensor
	v           map[*nn.Parameter]*tensor.Tensor
}

// AdamWConfig holds AdamW hyperparameters. Zero values take the defaults
// documented on each field.
type AdamWConfig struct {
	LR          float64    `json:"adamw_lr"`           // default 1e-3
	Betas       [2]float64 `json:"adamw_betas"`        // default [0.9, 0.999]
	Eps         float64    `json:"adamw_eps"`          // default 1e-8
	WeightDecay float64    `json:"adamw_weight_decay"` // default 0.01
}

// DefaultAdamWConfig returns the training defaults.
func DefaultAdamWConfig() AdamWConfig {
	return AdamWConfig{
		LR:          1e-3,
		Betas:       [2]float64{0.9, 0.999},
		Eps:         1e-8,
		WeightDecay: 0.01,
	}
}

// NewAdamW creates an AdamW optimizer over the given parameters.
func NewAdamW(params []*nn.Parameter, config AdamWConfig) *AdamW {
	if config.LR == 0 {
		config.LR = 1e-3
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &AdamW{
		params:      params,
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		m:           make(map[*nn.Parameter]*tensor.Tensor),
		v:           make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single AdamW update over all parameters with gradients.
func (a *AdamW) Step() {
	a.t++
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			// Parameter did not participate in the forward pass.
			continue
		}

		m, ok := a.m[param]
		if !ok {
			m = tensor.Zeros(param.Tensor().Shape())
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = tensor.Zeros(param.Tensor().Shape())
			a.v[param] = v
		}

		gradData := grad.AsFloat32()
		mData := m.AsFloat32()
		vData := v.AsFloat32()
		paramData := param.Tensor().AsFloat32()

		for i := range paramData {
			g := float64(gradData[i])

			mi := a.beta1*float64(mData[i]) + (1.0-a.beta1)*g
			vi := a.beta2*float64(vData[i]) + (1.0-a.beta2)*g*g
			mData[i] = float32(mi)
			vData[i] = float32(vi)

			mHat := mi / biasCorrection1
			vHat := vi / biasCorrection2

			update := mHat/(math.Sqrt(vHat)+a.eps) + a.weightDecay*float64(paramData[i])
			paramData[i] -= float32(a.lr * update)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *AdamW) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *AdamW) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *AdamW) SetLR(lr float64) {
	a.lr = lr
}

// State exports timestep and moment estimates for checkpointing.
func (a *AdamW) State() *State {
	state := &State{
		Type:     "AdamW",
		Timestep: a.t,
		Scalars: map[string]float64{
			"lr":           a.lr,
			"beta1":        a.beta1,
			"beta2":        a.beta2,
			"eps":          a.eps,
			"weight_decay": a.weightDecay,
		},
	}
	for _, param := range a.params {
		if m, ok := a.m[param]; ok {
			state.Moments = append(state.Moments, MomentTensor{
				Param: param.Name(), Kind: "m", Shape: m.Shape(), Data: m.AsFloat32(),
			})
		}
		if v, ok := a.v[param]; ok {
			state.Moments = append(state.Moments, MomentTensor{
				Param: param.Name(), Kind: "v", Shape: v.Shape(), Data: v.AsFloat32(),
			})
		}
	}
	return state
}

// LoadState restores timestep and moment estimates from a checkpoint.
func (a *AdamW) LoadState(state *State) error {
	if state.Type != "AdamW" {
		return fmt.Errorf("optimizer state type %q, want AdamW", state.Type)
	}
	a.t = state.Timestep
	if lr, ok := state.Scalars["lr"]; ok {
		a.lr = lr
	}

	byName := make(map[string]*nn.Parameter, len(a.params))
	for _, param := range a.params {
		byName[param.Name()] = param
	}

	for _, moment := range state.Moments {
		param, ok := byName[moment.Param]
		if !ok {
			return fmt.Errorf("optimizer state references unknown parameter %q", moment.Param)
		}
		t, err := tensor.FromFloat32(moment.Data, tensor.Shape(moment.Shape))
		if err != nil {
			return fmt.Errorf("optimizer state for %q: %w", moment.Param, err)
		}
		if !t.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("optimizer state for %q has shape %v, parameter has %v",
				moment.Param, t.Shape(), param.Tensor().Shape())
		}
		switch moment.Kind {
		case "m":
			a.m[param] = t
		case "v":
			a.v[param] = t
		default:
			return fmt.Errorf("optimizer state for %q has unknown moment kind %q", moment.Param, moment.Kind)
		}
	}
	return nil
}
