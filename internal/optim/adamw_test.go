package optim

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkit-x/vkit-open-model/internal/nn"
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

func TestAdamWConvergesOnQuadratic(t *testing.T) {
	// Minimize 0.5*||x||^2; the gradient is x itself.
	x, err := tensor.FromFloat32([]float32{5, -3}, tensor.Shape{2})
	require.NoError(t, err)
	param := nn.NewParameter("x", x)

	opt := NewAdamW([]*nn.Parameter{param}, AdamWConfig{LR: 0.05})
	for i := 0; i < 2000; i++ {
		param.SetGrad(param.Tensor().Clone())
		opt.Step()
		opt.ZeroGrad()
	}

	// Adam hovers near the optimum within a band on the order of the
	// learning rate.
	for _, v := range param.Tensor().AsFloat32() {
		assert.Less(t, math32.Abs(v), float32(0.1))
	}
}

func TestAdamWFirstStep(t *testing.T) {
	// With bias correction, the first update moves by exactly
	// lr * g/(|g| + eps') regardless of gradient magnitude; for g=1 and
	// weight decay 0 that is ~lr.
	x, err := tensor.FromFloat32([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)
	param := nn.NewParameter("x", x)

	opt := NewAdamW([]*nn.Parameter{param}, AdamWConfig{LR: 0.1})
	param.SetGrad(tensor.Full(tensor.Shape{1}, 1))
	opt.Step()

	assert.InDelta(t, 0.9, param.Tensor().Item(), 1e-4)
}

func TestAdamWDecoupledWeightDecay(t *testing.T) {
	// Zero gradient, nonzero weight decay: the parameter still shrinks.
	x, err := tensor.FromFloat32([]float32{2}, tensor.Shape{1})
	require.NoError(t, err)
	param := nn.NewParameter("x", x)

	opt := NewAdamW([]*nn.Parameter{param}, AdamWConfig{LR: 0.1, WeightDecay: 0.5})
	param.SetGrad(tensor.Zeros(tensor.Shape{1}))
	opt.Step()

	// param -= lr * wd * param = 2 - 0.1*0.5*2
	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-5)
}

func TestAdamWSkipsParametersWithoutGrad(t *testing.T) {
	a := nn.NewParameter("a", tensor.Full(tensor.Shape{1}, 1))
	b := nn.NewParameter("b", tensor.Full(tensor.Shape{1}, 1))

	opt := NewAdamW([]*nn.Parameter{a, b}, AdamWConfig{LR: 0.1})
	a.SetGrad(tensor.Full(tensor.Shape{1}, 1))
	opt.Step()

	assert.Less(t, a.Tensor().Item(), float32(1))
	assert.Equal(t, float32(1), b.Tensor().Item())
}

func TestAdamWStateRoundtrip(t *testing.T) {
	build := func() (*nn.Parameter, *AdamW) {
		x, err := tensor.FromFloat32([]float32{5, -3}, tensor.Shape{2})
		require.NoError(t, err)
		param := nn.NewParameter("x", x)
		return param, NewAdamW([]*nn.Parameter{param}, AdamWConfig{LR: 0.05})
	}

	// Run one optimizer for 20 steps.
	param1, opt1 := build()
	step := func(p *nn.Parameter, o *AdamW, n int) {
		for i := 0; i < n; i++ {
			p.SetGrad(p.Tensor().Clone())
			o.Step()
			o.ZeroGrad()
		}
	}
	step(param1, opt1, 20)
	state := opt1.State()
	assert.Equal(t, "AdamW", state.Type)
	assert.Equal(t, 20, state.Timestep)
	assert.Len(t, state.Moments, 2) // m and v for one parameter

	// A second optimizer restored from that state must continue
	// identically.
	param2, opt2 := build()
	copy(param2.Tensor().AsFloat32(), param1.Tensor().AsFloat32())
	require.NoError(t, opt2.LoadState(state))

	step(param1, opt1, 10)
	step(param2, opt2, 10)
	assert.InDeltaSlice(t,
		toFloat64(param1.Tensor().AsFloat32()),
		toFloat64(param2.Tensor().AsFloat32()), 1e-6)
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func TestAdamWLoadStateValidation(t *testing.T) {
	param := nn.NewParameter("x", tensor.Zeros(tensor.Shape{2}))
	opt := NewAdamW([]*nn.Parameter{param}, DefaultAdamWConfig())

	require.Error(t, opt.LoadState(&State{Type: "SGD"}))
	require.Error(t, opt.LoadState(&State{Type: "AdamW", Moments: []MomentTensor{
		{Param: "unknown", Kind: "m", Shape: []int{2}, Data: []float32{0, 0}},
	}}))
	require.Error(t, opt.LoadState(&State{Type: "AdamW", Moments: []MomentTensor{
		{Param: "x", Kind: "m", Shape: []int{3}, Data: []float32{0, 0, 0}},
	}}))
}

func TestClipGradNorm(t *testing.T) {
	a := nn.NewParameter("a", tensor.Zeros(tensor.Shape{1}))
	b := nn.NewParameter("b", tensor.Zeros(tensor.Shape{1}))
	a.SetGrad(tensor.Full(tensor.Shape{1}, 3))
	b.SetGrad(tensor.Full(tensor.Shape{1}, 4))

	// Norm 5 exceeds the cap: gradients rescale to norm 1.
	norm := ClipGradNorm([]*nn.Parameter{a, b}, 1.0)
	assert.InDelta(t, 5.0, norm, 1e-5)
	assert.InDelta(t, 0.6, a.Grad().Item(), 1e-4)
	assert.InDelta(t, 0.8, b.Grad().Item(), 1e-4)

	// Under the cap: untouched.
	a.SetGrad(tensor.Full(tensor.Shape{1}, 3))
	b.SetGrad(tensor.Full(tensor.Shape{1}, 4))
	norm = ClipGradNorm([]*nn.Parameter{a, b}, 10.0)
	assert.InDelta(t, 5.0, norm, 1e-5)
	assert.InDelta(t, 3.0, a.Grad().Item(), 1e-5)
	assert.InDelta(t, 4.0, b.Grad().Item(), 1e-5)
}

func TestClipGradNormSkipsNilGrads(t *testing.T) {
	a := nn.NewParameter("a", tensor.Zeros(tensor.Shape{1}))
	b := nn.NewParameter("b", tensor.Zeros(tensor.Shape{1}))
	a.SetGrad(tensor.Full(tensor.Shape{1}, 2))

	norm := ClipGradNorm([]*nn.Parameter{a, b}, 10.0)
	assert.InDelta(t, 2.0, norm, 1e-5)
	assert.Nil(t, b.Grad())
}
