// Command adascale is the operational entry point for the AdaptiveScaling
// training stack: it validates loss/training configuration files and
// inspects checkpoint files.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"

	"github.com/vkit-x/vkit-open-model/loss"
	"github.com/vkit-x/vkit-open-model/training"
)

func main() {
	logger, err := logs.NewLog()
	check(err)

	parser := argparse.NewParser("adascale", "AdaptiveScaling text detector training utilities")

	validateCmd := parser.NewCommand("validate", "Validate loss and training configuration files")
	lossConfigPath := validateCmd.String("l", "loss-config", &argparse.Options{Help: "Loss config JSON file (omit for defaults)"})
	epochConfigPath := validateCmd.String("e", "epoch-config", &argparse.Options{Help: "Epoch config JSON file (omit for defaults)"})
	optimizerConfigPath := validateCmd.String("o", "optimizer-config", &argparse.Options{Help: "Optimizer config JSON file (omit for defaults)"})

	inspectCmd := parser.NewCommand("inspect", "Summarize a checkpoint file")
	checkpointPath := inspectCmd.String("c", "checkpoint", &argparse.Options{Help: "Checkpoint JSON file", Required: true})

	if err := parser.Parse(os.Args); err != nil {
		logger.Errorf(parser.Usage(err))
		os.Exit(1)
	}

	switch {
	case validateCmd.Happened():
		err = validate(logger, *lossConfigPath, *epochConfigPath, *optimizerConfigPath)
	case inspectCmd.Happened():
		err = inspect(logger, *checkpointPath)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

// validate loads the configs, constructs both loss heads, and reports the
// active loss terms. Construction fails fast on invalid factor sets, so a
// clean run means the config will train.
func validate(logger logs.Log, lossConfigPath, epochConfigPath, optimizerConfigPath string) error {
	lossConfig := loss.DefaultAdaptiveScalingLossConfig()
	if lossConfigPath != "" {
		data, err := os.ReadFile(lossConfigPath)
		if err != nil {
			return fmt.Errorf("read loss config: %w", err)
		}
		if err := json.Unmarshal(data, &lossConfig); err != nil {
			return fmt.Errorf("parse loss config %s: %w", lossConfigPath, err)
		}
	}

	criterion, err := loss.NewAdaptiveScalingLoss(lossConfig)
	if err != nil {
		return fmt.Errorf("loss config invalid: %w", err)
	}
	logger.Infof("Rough loss terms: %s", strings.Join(criterion.Rough().ActiveTerms(), ", "))
	logger.Infof("Precise loss terms: %s", strings.Join(criterion.Precise().ActiveTerms(), ", "))

	epochConfig := training.DefaultEpochConfig()
	if epochConfigPath != "" {
		epochConfig, err = training.LoadEpochConfig(epochConfigPath)
		if err != nil {
			return err
		}
	}
	logger.Infof("Epochs: %d, train %d batches x %d, dev %d batches x %d",
		epochConfig.NumEpochs,
		epochConfig.TrainNumBatches, epochConfig.TrainBatchSize,
		epochConfig.DevNumBatches, epochConfig.DevBatchSize)

	optimizerConfig := training.DefaultOptimizerConfig()
	if optimizerConfigPath != "" {
		optimizerConfig, err = training.LoadOptimizerConfig(optimizerConfigPath)
		if err != nil {
			return err
		}
	}
	scheduler := optimizerConfig.Scheduler()
	logger.Infof("AdamW lr=%g wd=%g, scheduler=%s, clip=%g",
		optimizerConfig.AdamW.LR, optimizerConfig.AdamW.WeightDecay,
		scheduler.Name(), optimizerConfig.ClipGradNormMaxNorm)

	logger.Infof("Configuration OK")
	return nil
}

func inspect(logger logs.Log, checkpointPath string) error {
	ckpt, err := training.LoadCheckpoint(checkpointPath)
	if err != nil {
		return err
	}

	var numWeights int
	for _, w := range ckpt.Weights {
		numWeights += len(w.Data)
	}
	logger.Infof("Checkpoint %s", checkpointPath)
	logger.Infof("  framework=%s version=%s created=%s",
		ckpt.Metadata.Framework, ckpt.Metadata.Version, ckpt.Metadata.CreatedAt.Format("2006-01-02 15:04:05"))
	logger.Infof("  epoch=%d best_dev_loss=%.5f lr=%.6f",
		ckpt.TrainingState.EpochIdx, ckpt.TrainingState.BestDevLoss, ckpt.TrainingState.LR)
	logger.Infof("  %d parameter tensors, %d weights total", len(ckpt.Weights), numWeights)
	if ckpt.OptimizerState != nil {
		logger.Infof("  optimizer=%s timestep=%d moments=%d",
			ckpt.OptimizerState.Type, ckpt.OptimizerState.Timestep, len(ckpt.OptimizerState.Moments))
	}
	return nil
}
