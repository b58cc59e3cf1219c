package training

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEpochConfigOverridesDefaults(t *testing.T) {
	path := writeTempJSON(t, `{"num_epochs": 10, "train_batch_size": 2}`)

	config, err := LoadEpochConfig(path)
	require.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, 10, config.NumEpochs)
	assert.Equal(t, 2, config.TrainBatchSize)
	// Untouched fields keep the defaults.
	assert.Equal(t, 672, config.TrainNumBatches)
	assert.Equal(t, 50, config.AvgNumBatches)
}

func TestLoadEpochConfigRejectsInvalid(t *testing.T) {
	path := writeTempJSON(t, `{"num_epochs": -1}`)
	_, err := LoadEpochConfig(path)
	require.Error(t, err)

	path = writeTempJSON(t, `{not json`)
	_, err = LoadEpochConfig(path)
	require.Error(t, err)

	_, err = LoadEpochConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestDefaultEpochConfigValid(t *testing.T) {
	config := DefaultEpochConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, 98, config.NumEpochs)
	assert.Equal(t, 7, config.TrainBatchSize)
	assert.Equal(t, 32, config.DevBatchSize)
}

func TestLoadOptimizerConfig(t *testing.T) {
	path := writeTempJSON(t, `{
		"adamw": {"adamw_lr": 0.01},
		"enable_scheduler": false,
		"clip_grad_norm_max_norm": 5.0
	}`)

	config, err := LoadOptimizerConfig(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, config.AdamW.LR, 1e-12)
	assert.False(t, config.EnableScheduler)
	assert.InDelta(t, 5.0, config.ClipGradNormMaxNorm, 1e-12)

	// The rest of the AdamW block keeps its defaults.
	assert.InDelta(t, 0.01, config.AdamW.WeightDecay, 1e-12)
}

func TestOptimizerConfigScheduler(t *testing.T) {
	config := DefaultOptimizerConfig()
	assert.Equal(t, "CosineAnnealingWarmRestarts", config.Scheduler().Name())

	config.EnableScheduler = false
	assert.Equal(t, "ConstantLR", config.Scheduler().Name())
}
