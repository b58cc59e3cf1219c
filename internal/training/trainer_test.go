package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkit-x/vkit-open-model/internal/loss"
	"github.com/vkit-x/vkit-open-model/internal/nn"
	"github.com/vkit-x/vkit-open-model/internal/optim"
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// stubModel has one scalar parameter and treats |param| as its "loss
// surface": Backward writes the parameter's sign as the gradient, so each
// optimizer step moves the parameter toward zero.
type stubModel struct {
	param *nn.Parameter
}

func newStubModel(initial float32) *stubModel {
	return &stubModel{
		param: nn.NewParameter("stub.weight", tensor.Full(tensor.Shape{1}, initial)),
	}
}

func (m *stubModel) Forward(image *tensor.Tensor, train bool) *loss.Predictions {
	return &loss.Predictions{}
}

func (m *stubModel) Backward(scalarLoss *tensor.Tensor) {
	v := m.param.Tensor().Item()
	var sign float32
	switch {
	case v > 0:
		sign = 1
	case v < 0:
		sign = -1
	}
	m.param.SetGrad(tensor.Full(tensor.Shape{1}, sign))
}

func (m *stubModel) Parameters() []*nn.Parameter {
	return []*nn.Parameter{m.param}
}

// stubCriterion reports the model's |param| as the loss.
type stubCriterion struct {
	model *stubModel
}

func (c *stubCriterion) Forward(pred *loss.Predictions, gt *loss.Targets) *tensor.Tensor {
	return tensor.Scalar(math32.Abs(c.model.param.Tensor().Item()))
}

// stubLoader hands out the same empty batch forever.
type stubLoader struct {
	batches int
}

func (l *stubLoader) NextBatch(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.batches++
	return &Batch{Image: tensor.Zeros(tensor.Shape{1, 3, 4, 4}), Targets: &loss.Targets{}}, nil
}

// failingLoader errors on the nth call.
type failingLoader struct {
	calls  int
	failAt int
}

func (l *failingLoader) NextBatch(ctx context.Context) (*Batch, error) {
	l.calls++
	if l.calls >= l.failAt {
		return nil, fmt.Errorf("stream closed")
	}
	return &Batch{Image: tensor.Zeros(tensor.Shape{1}), Targets: &loss.Targets{}}, nil
}

func testEpochConfig() EpochConfig {
	return EpochConfig{
		NumEpochs:        2,
		TrainNumBatches:  4,
		TrainBatchSize:   1,
		DevNumBatches:    2,
		DevBatchSize:     1,
		AvgNumBatches:    3,
		LogEveryNBatches: 2,
	}
}

func newTestTrainer(t *testing.T, model *stubModel, outputDir string) *Trainer {
	t.Helper()
	trainer, err := NewTrainer(TrainerOptions{
		Model:     model,
		Criterion: &stubCriterion{model: model},
		Optimizer: optim.NewAdamW(model.Parameters(), optim.AdamWConfig{LR: 0.01}),
		Logger:    logs.NewTestingLog(t),
		Epoch:     testEpochConfig(),
		OutputDir: outputDir,
	})
	require.NoError(t, err)
	return trainer
}

func TestNewTrainerValidation(t *testing.T) {
	model := newStubModel(1)
	opts := TrainerOptions{
		Model:     model,
		Criterion: &stubCriterion{model: model},
		Optimizer: optim.NewAdamW(model.Parameters(), optim.DefaultAdamWConfig()),
		Logger:    logs.NewTestingLog(t),
		Epoch:     testEpochConfig(),
	}

	missing := opts
	missing.Model = nil
	_, err := NewTrainer(missing)
	require.Error(t, err)

	missing = opts
	missing.Logger = nil
	_, err = NewTrainer(missing)
	require.Error(t, err)

	bad := opts
	bad.Epoch.NumEpochs = 0
	_, err = NewTrainer(bad)
	require.Error(t, err)

	bad = opts
	bad.ClipGradNormMaxNorm = -1
	_, err = NewTrainer(bad)
	require.Error(t, err)
}

func TestTrainerRunsAndCheckpointsOnImprovement(t *testing.T) {
	dir := t.TempDir()
	model := newStubModel(1.0)
	trainer := newTestTrainer(t, model, dir)

	trainLoader := &stubLoader{}
	require.NoError(t, trainer.Train(context.Background(), trainLoader, &stubLoader{}))

	assert.Equal(t, 2, trainer.EpochIdx())
	assert.Equal(t, 8, trainLoader.batches) // 2 epochs x 4 batches

	// The parameter decays toward zero, so the dev loss improves every
	// epoch and both epochs checkpoint.
	assert.Less(t, model.param.Tensor().Item(), float32(1.0))
	for epoch := 0; epoch < 2; epoch++ {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("state_dict_%d.json", epoch)))
		assert.NoError(t, err, "epoch %d checkpoint", epoch)
	}
	assert.Greater(t, trainer.BestDevLoss(), 0.0)
}

func TestTrainerStopsOnLoaderError(t *testing.T) {
	model := newStubModel(1.0)
	trainer := newTestTrainer(t, model, "")

	err := trainer.Train(context.Background(), &failingLoader{failAt: 3}, &stubLoader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream closed")
}

func TestTrainerHonorsContextCancellation(t *testing.T) {
	model := newStubModel(1.0)
	trainer := newTestTrainer(t, model, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := trainer.Train(ctx, &stubLoader{}, &stubLoader{})
	require.Error(t, err)
}

func TestTrainerRestoreFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	model := newStubModel(1.0)
	trainer := newTestTrainer(t, model, dir)
	require.NoError(t, trainer.Train(context.Background(), &stubLoader{}, &stubLoader{}))

	// Fresh model and trainer: restoring the last checkpoint brings back
	// the trained weight and positions the trainer after that epoch.
	restoredModel := newStubModel(42.0)
	restored := newTestTrainer(t, restoredModel, dir)
	require.NoError(t, restored.RestoreFromCheckpoint(filepath.Join(dir, "state_dict_1.json")))

	assert.Equal(t, 2, restored.EpochIdx())
	assert.InDelta(t, float64(model.param.Tensor().Item()),
		float64(restoredModel.param.Tensor().Item()), 1e-6)
	assert.InDelta(t, trainer.BestDevLoss(), restored.BestDevLoss(), 1e-9)
}

func TestTrainerAppliesScheduler(t *testing.T) {
	model := newStubModel(1.0)
	optimizer := optim.NewAdamW(model.Parameters(), optim.AdamWConfig{LR: 0.01})
	trainer, err := NewTrainer(TrainerOptions{
		Model:     model,
		Criterion: &stubCriterion{model: model},
		Optimizer: optimizer,
		Scheduler: NewCosineAnnealingWarmRestarts(14, 2, 1e-5),
		Logger:    logs.NewTestingLog(t),
		Epoch:     testEpochConfig(),
	})
	require.NoError(t, err)

	require.NoError(t, trainer.Train(context.Background(), &stubLoader{}, &stubLoader{}))

	// After 2 of 14 epochs the cosine schedule has pulled the LR below the
	// base rate.
	assert.Less(t, optimizer.LR(), 0.01)
	assert.Greater(t, optimizer.LR(), 1e-5)
}

func TestTrainerGradientClipping(t *testing.T) {
	model := newStubModel(1.0)
	trainer, err := NewTrainer(TrainerOptions{
		Model:               model,
		Criterion:           &stubCriterion{model: model},
		Optimizer:           optim.NewAdamW(model.Parameters(), optim.AdamWConfig{LR: 0.01}),
		Logger:              logs.NewTestingLog(t),
		Epoch:               testEpochConfig(),
		ClipGradNormMaxNorm: 0.5,
	})
	require.NoError(t, err)

	// Clipping only bounds the update; training still runs to completion.
	require.NoError(t, trainer.Train(context.Background(), &stubLoader{}, &stubLoader{}))
	assert.Less(t, model.param.Tensor().Item(), float32(1.0))
}
