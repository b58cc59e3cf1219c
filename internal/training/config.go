package training

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vkit-x/vkit-open-model/internal/optim"
)

// EpochConfig controls the shape of a training run: how many epochs, how
// many batches per split, and logging cadence.
type EpochConfig struct {
	NumEpochs       int `json:"num_epochs"`
	TrainNumBatches int `json:"train_num_batches"`
	TrainBatchSize  int `json:"train_batch_size"`
	DevNumBatches   int `json:"dev_num_batches"`
	DevBatchSize    int `json:"dev_batch_size"`

	// AvgNumBatches is the moving-average window for logged loss values.
	AvgNumBatches int `json:"avg_num_batches"`

	// LogEveryNBatches is the train-loop logging interval; the last batch
	// of an epoch is always logged.
	LogEveryNBatches int `json:"log_every_n_batches"`
}

// DefaultEpochConfig returns the reference training schedule.
func DefaultEpochConfig() EpochConfig {
	return EpochConfig{
		NumEpochs:        98,
		TrainNumBatches:  672,
		TrainBatchSize:   7,
		DevNumBatches:    68,
		DevBatchSize:     32,
		AvgNumBatches:    50,
		LogEveryNBatches: 4,
	}
}

// Validate reports the first invalid field, if any.
func (c *EpochConfig) Validate() error {
	switch {
	case c.NumEpochs <= 0:
		return fmt.Errorf("num_epochs must be positive, got %d", c.NumEpochs)
	case c.TrainNumBatches <= 0:
		return fmt.Errorf("train_num_batches must be positive, got %d", c.TrainNumBatches)
	case c.DevNumBatches <= 0:
		return fmt.Errorf("dev_num_batches must be positive, got %d", c.DevNumBatches)
	case c.AvgNumBatches <= 0:
		return fmt.Errorf("avg_num_batches must be positive, got %d", c.AvgNumBatches)
	case c.LogEveryNBatches <= 0:
		return fmt.Errorf("log_every_n_batches must be positive, got %d", c.LogEveryNBatches)
	}
	return nil
}

// OptimizerConfig bundles the AdamW hyperparameters, the LR schedule, and
// gradient clipping.
type OptimizerConfig struct {
	AdamW optim.AdamWConfig `json:"adamw"`

	// Cosine-annealing-with-warm-restarts schedule. EnableScheduler off
	// means a constant learning rate.
	EnableScheduler bool    `json:"enable_scheduler"`
	SchedulerT0     int     `json:"scheduler_t_0"`
	SchedulerTMult  int     `json:"scheduler_t_mult"`
	SchedulerEtaMin float64 `json:"scheduler_eta_min"`

	// ClipGradNormMaxNorm caps the global gradient L2 norm before each
	// optimizer step. Zero disables clipping.
	ClipGradNormMaxNorm float64 `json:"clip_grad_norm_max_norm"`
}

// DefaultOptimizerConfig returns the reference optimizer setup.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		AdamW:           optim.DefaultAdamWConfig(),
		EnableScheduler: true,
		SchedulerT0:     14,
		SchedulerTMult:  2,
		SchedulerEtaMin: 1e-5,
	}
}

// Scheduler builds the LR scheduler described by the config.
func (c *OptimizerConfig) Scheduler() LRScheduler {
	if !c.EnableScheduler {
		return &ConstantLR{}
	}
	return NewCosineAnnealingWarmRestarts(c.SchedulerT0, c.SchedulerTMult, c.SchedulerEtaMin)
}

// LoadEpochConfig reads an EpochConfig from a JSON file, starting from the
// defaults so the file only needs to name the fields it overrides.
func LoadEpochConfig(path string) (EpochConfig, error) {
	config := DefaultEpochConfig()
	if err := loadJSON(path, &config); err != nil {
		return config, err
	}
	return config, config.Validate()
}

// LoadOptimizerConfig reads an OptimizerConfig from a JSON file on top of
// the defaults.
func LoadOptimizerConfig(path string) (OptimizerConfig, error) {
	config := DefaultOptimizerConfig()
	if err := loadJSON(path, &config); err != nil {
		return config, err
	}
	return config, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
