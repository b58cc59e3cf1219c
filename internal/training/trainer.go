package training

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cyclopcam/logs"

	"github.com/vkit-x/vkit-open-model/internal/optim"
)

// TrainerOptions wires together everything a Trainer needs.
type TrainerOptions struct {
	Model     Model
	Criterion Criterion
	Optimizer optim.Optimizer
	Scheduler LRScheduler // nil means constant LR
	Logger    logs.Log
	Epoch     EpochConfig

	// ClipGradNormMaxNorm caps the global gradient norm before each
	// optimizer step. Zero disables clipping.
	ClipGradNormMaxNorm float64

	// OutputDir receives state_dict_<epoch>.json checkpoints. Empty
	// disables checkpointing.
	OutputDir string
}

// Trainer runs the epoch loop: train batches with backward and optimizer
// steps, then dev batches without, and a checkpoint whenever the mean dev
// loss improves.
type Trainer struct {
	model     Model
	criterion Criterion
	optimizer optim.Optimizer
	scheduler LRScheduler
	log       logs.Log
	config    EpochConfig
	clipNorm  float64
	outputDir string

	baseLR      float64
	epochIdx    int
	bestDevLoss float64
}

// NewTrainer validates the options and builds a trainer positioned at
// epoch 0.
func NewTrainer(opts TrainerOptions) (*Trainer, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("trainer requires a model")
	}
	if opts.Criterion == nil {
		return nil, fmt.Errorf("trainer requires a criterion")
	}
	if opts.Optimizer == nil {
		return nil, fmt.Errorf("trainer requires an optimizer")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("trainer requires a logger")
	}
	if err := opts.Epoch.Validate(); err != nil {
		return nil, err
	}
	if opts.ClipGradNormMaxNorm < 0 {
		return nil, fmt.Errorf("clip_grad_norm_max_norm must be non-negative, got %g", opts.ClipGradNormMaxNorm)
	}

	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = &ConstantLR{}
	}

	return &Trainer{
		model:       opts.Model,
		criterion:   opts.Criterion,
		optimizer:   opts.Optimizer,
		scheduler:   scheduler,
		log:         opts.Logger,
		config:      opts.Epoch,
		clipNorm:    opts.ClipGradNormMaxNorm,
		outputDir:   opts.OutputDir,
		baseLR:      opts.Optimizer.LR(),
		bestDevLoss: 0,
	}, nil
}

// EpochIdx returns the index of the next epoch to run.
func (t *Trainer) EpochIdx() int {
	return t.epochIdx
}

// BestDevLoss returns the best mean dev loss seen so far, or 0 before the
// first evaluation.
func (t *Trainer) BestDevLoss() float64 {
	return t.bestDevLoss
}

// RestoreFromCheckpoint loads a checkpoint and positions the trainer at
// the epoch after the one the checkpoint was saved in.
func (t *Trainer) RestoreFromCheckpoint(path string) error {
	ckpt, err := LoadCheckpoint(path)
	if err != nil {
		return err
	}
	if err := ckpt.Restore(t.model, t.optimizer); err != nil {
		return err
	}
	t.epochIdx = ckpt.TrainingState.EpochIdx + 1
	t.bestDevLoss = ckpt.TrainingState.BestDevLoss
	if ckpt.TrainingState.LR > 0 {
		t.optimizer.SetLR(ckpt.TrainingState.LR)
	}
	t.log.Infof("Restored checkpoint %s, resuming at epoch %d (best dev loss %.5f)",
		path, t.epochIdx, t.bestDevLoss)
	return nil
}

// Train runs the remaining epochs. It stops early with ctx.Err() when the
// context is canceled.
func (t *Trainer) Train(ctx context.Context, trainLoader, devLoader DataLoader) error {
	metrics := NewMetrics(t.config.AvgNumBatches)

	t.log.Infof("Training with scheduler=%s, base LR=%g, clip=%g",
		t.scheduler.Name(), t.baseLR, t.clipNorm)

	for ; t.epochIdx < t.config.NumEpochs; t.epochIdx++ {
		if err := t.trainEpoch(ctx, trainLoader, metrics); err != nil {
			return err
		}

		devLoss, err := t.evalEpoch(ctx, devLoader, metrics)
		if err != nil {
			return err
		}

		if t.bestDevLoss == 0 || devLoss < t.bestDevLoss {
			t.bestDevLoss = devLoss
			if err := t.saveCheckpoint(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Trainer) trainEpoch(ctx context.Context, loader DataLoader, metrics *Metrics) error {
	for batchIdx := 0; batchIdx < t.config.TrainNumBatches; batchIdx++ {
		batch, err := loader.NextBatch(ctx)
		if err != nil {
			return fmt.Errorf("train batch %d of epoch %d: %w", batchIdx, t.epochIdx, err)
		}

		pred := t.model.Forward(batch.Image, true)
		batchLoss := t.criterion.Forward(pred, batch.Targets)
		avgLoss := metrics.Update(TagTrainLoss, float64(batchLoss.Item()))

		t.model.Backward(batchLoss)
		if t.clipNorm > 0 {
			optim.ClipGradNorm(t.model.Parameters(), t.clipNorm)
		}
		t.optimizer.Step()
		t.optimizer.ZeroGrad()

		// Advance the schedule by fractional epoch so the LR moves within
		// an epoch, not only at epoch boundaries.
		progress := float64(t.epochIdx) + float64(batchIdx+1)/float64(t.config.TrainNumBatches)
		t.optimizer.SetLR(t.scheduler.LR(progress, t.baseLR))

		if (batchIdx+1)%t.config.LogEveryNBatches == 0 || batchIdx+1 == t.config.TrainNumBatches {
			t.log.Infof("E=%d, B=%d/%d, L=%.5f, LR=%.6f",
				t.epochIdx, batchIdx+1, t.config.TrainNumBatches, avgLoss, t.optimizer.LR())
		}
	}
	return nil
}

func (t *Trainer) evalEpoch(ctx context.Context, loader DataLoader, metrics *Metrics) (float64, error) {
	metrics.Reset(TagDevLoss)

	var sum float64
	for batchIdx := 0; batchIdx < t.config.DevNumBatches; batchIdx++ {
		batch, err := loader.NextBatch(ctx)
		if err != nil {
			return 0, fmt.Errorf("dev batch %d of epoch %d: %w", batchIdx, t.epochIdx, err)
		}

		pred := t.model.Forward(batch.Image, false)
		batchLoss := t.criterion.Forward(pred, batch.Targets)
		value := float64(batchLoss.Item())
		sum += value
		metrics.Update(TagDevLoss, value)
	}

	mean := sum / float64(t.config.DevNumBatches)
	t.log.Infof("E=%d, dev loss=%.5f (best %.5f)", t.epochIdx, mean, t.bestDevLoss)
	return mean, nil
}

func (t *Trainer) saveCheckpoint() error {
	if t.outputDir == "" {
		return nil
	}
	path := filepath.Join(t.outputDir, fmt.Sprintf("state_dict_%d.json", t.epochIdx))
	ckpt := Snapshot(t.model, t.optimizer, TrainingState{
		EpochIdx:    t.epochIdx,
		BestDevLoss: t.bestDevLoss,
		LR:          t.optimizer.LR(),
	})
	if err := SaveCheckpoint(ckpt, path); err != nil {
		return err
	}
	t.log.Infof("E=%d, saved checkpoint %s", t.epochIdx, path)
	return nil
}
