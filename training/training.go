// Package training provides the public API for the training loop:
// trainer, LR schedulers, metrics, configuration, and checkpoints.
package training

import (
	"github.com/vkit-x/vkit-open-model/internal/training"
)

// Batch is one training/evaluation batch.
type Batch = training.Batch

// DataLoader supplies batches.
type DataLoader = training.DataLoader

// Model is the detector network boundary.
type Model = training.Model

// Criterion reduces predictions and targets to one scalar loss.
type Criterion = training.Criterion

// LRScheduler maps training progress to a learning rate.
type LRScheduler = training.LRScheduler

// ConstantLR keeps the base learning rate.
type ConstantLR = training.ConstantLR

// CosineAnnealingWarmRestarts anneals the learning rate along a cosine
// with periodic restarts.
type CosineAnnealingWarmRestarts = training.CosineAnnealingWarmRestarts

// NewCosineAnnealingWarmRestarts creates the scheduler.
func NewCosineAnnealingWarmRestarts(t0, tMult int, etaMin float64) *CosineAnnealingWarmRestarts {
	return training.NewCosineAnnealingWarmRestarts(t0, tMult, etaMin)
}

// Metrics keeps windowed moving averages of logged values.
type Metrics = training.Metrics

// NewMetrics creates a metric tracker averaging over the last window
// values.
func NewMetrics(window int) *Metrics {
	return training.NewMetrics(window)
}

// EpochConfig controls the shape of a training run.
type EpochConfig = training.EpochConfig

// DefaultEpochConfig returns the reference training schedule.
func DefaultEpochConfig() EpochConfig {
	return training.DefaultEpochConfig()
}

// LoadEpochConfig reads an EpochConfig from a JSON file on top of the
// defaults.
func LoadEpochConfig(path string) (EpochConfig, error) {
	return training.LoadEpochConfig(path)
}

// OptimizerConfig bundles AdamW hyperparameters, LR schedule, and gradient
// clipping.
type OptimizerConfig = training.OptimizerConfig

// DefaultOptimizerConfig returns the reference optimizer setup.
func DefaultOptimizerConfig() OptimizerConfig {
	return training.DefaultOptimizerConfig()
}

// LoadOptimizerConfig reads an OptimizerConfig from a JSON file on top of
// the defaults.
func LoadOptimizerConfig(path string) (OptimizerConfig, error) {
	return training.LoadOptimizerConfig(path)
}

// Checkpoint is the full serializable training snapshot.
type Checkpoint = training.Checkpoint

// TrainingState captures the trainer position.
type TrainingState = training.TrainingState

// SaveCheckpoint writes a checkpoint as JSON.
func SaveCheckpoint(ckpt *Checkpoint, path string) error {
	return training.SaveCheckpoint(ckpt, path)
}

// LoadCheckpoint reads a JSON checkpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	return training.LoadCheckpoint(path)
}

// Trainer runs the epoch loop.
type Trainer = training.Trainer

// TrainerOptions wires together everything a Trainer needs.
type TrainerOptions = training.TrainerOptions

// NewTrainer validates the options and builds a trainer positioned at
// epoch 0.
func NewTrainer(opts TrainerOptions) (*Trainer, error) {
	return training.NewTrainer(opts)
}
