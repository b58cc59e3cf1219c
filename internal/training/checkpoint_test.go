package training

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkit-x/vkit-open-model/internal/optim"
)

func TestCheckpointRoundtrip(t *testing.T) {
	model := newStubModel(3.5)
	optimizer := optim.NewAdamW(model.Parameters(), optim.AdamWConfig{LR: 0.01})

	// One step so the optimizer has moments worth saving.
	model.Backward(nil)
	optimizer.Step()
	optimizer.ZeroGrad()

	state := TrainingState{EpochIdx: 7, BestDevLoss: 0.42, LR: 0.005}
	ckpt := Snapshot(model, optimizer, state)
	assert.Len(t, ckpt.Weights, 1)
	assert.Equal(t, "stub.weight", ckpt.Weights[0].Name)
	assert.NotNil(t, ckpt.OptimizerState)
	assert.Equal(t, "vkit-open-model", ckpt.Metadata.Framework)

	path := filepath.Join(t.TempDir(), "state_dict_7.json")
	require.NoError(t, SaveCheckpoint(ckpt, path))

	loaded, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.TrainingState.EpochIdx)
	assert.InDelta(t, 0.42, loaded.TrainingState.BestDevLoss, 1e-9)

	// Restore into a fresh model/optimizer pair.
	fresh := newStubModel(0)
	freshOpt := optim.NewAdamW(fresh.Parameters(), optim.AdamWConfig{LR: 0.01})
	require.NoError(t, loaded.Restore(fresh, freshOpt))

	assert.InDelta(t, float64(model.param.Tensor().Item()),
		float64(fresh.param.Tensor().Item()), 1e-6)
	assert.Equal(t, 1, freshOpt.State().Timestep)
}

func TestCheckpointSnapshotCopiesWeights(t *testing.T) {
	model := newStubModel(1.0)
	ckpt := Snapshot(model, nil, TrainingState{})

	// Mutating the live parameter after the snapshot must not change the
	// captured weights.
	model.param.Tensor().Set(99, 0)
	assert.Equal(t, float32(1.0), ckpt.Weights[0].Data[0])
}

func TestCheckpointRestoreValidation(t *testing.T) {
	model := newStubModel(1.0)

	unknown := &Checkpoint{Weights: []WeightTensor{
		{Name: "nope", Shape: []int{1}, Data: []float32{0}},
	}}
	require.Error(t, unknown.Restore(model, nil))

	misshapen := &Checkpoint{Weights: []WeightTensor{
		{Name: "stub.weight", Shape: []int{2}, Data: []float32{0, 0}},
	}}
	require.Error(t, misshapen.Restore(model, nil))
}

func TestLoadCheckpointErrors(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
