// Package loss provides the public API for AdaptiveScaling text-detection
// losses: elementary loss primitives, the rough and precise head losses,
// and the combined criterion.
package loss

import (
	"github.com/vkit-x/vkit-open-model/internal/loss"
)

// Elementary losses.

// WeightedBCEWithLogitsLoss is binary cross-entropy with hard negative
// mining: only the hardest negatives, capped at negativeRatio times the
// positive count, contribute.
type WeightedBCEWithLogitsLoss = loss.WeightedBCEWithLogitsLoss

// NewWeightedBCEWithLogitsLoss creates the loss with the given negative
// ratio.
func NewWeightedBCEWithLogitsLoss(negativeRatio float32) *WeightedBCEWithLogitsLoss {
	return loss.NewWeightedBCEWithLogitsLoss(negativeRatio)
}

// FocalWithLogitsLoss is focal loss over logits (alpha=0.25, gamma=2).
type FocalWithLogitsLoss = loss.FocalWithLogitsLoss

// NewFocalWithLogitsLoss creates a focal loss.
func NewFocalWithLogitsLoss() *FocalWithLogitsLoss {
	return loss.NewFocalWithLogitsLoss()
}

// DiceLoss is the soft Dice overlap loss.
type DiceLoss = loss.DiceLoss

// NewDiceLoss creates a Dice loss.
func NewDiceLoss() *DiceLoss {
	return loss.NewDiceLoss()
}

// L1Loss is mean absolute error, optionally smoothed (Huber-style) via
// WithSmooth.
type L1Loss = loss.L1Loss

// L1Option configures an L1Loss.
type L1Option = loss.L1Option

// WithSmooth switches the loss to smooth L1 with the given beta.
func WithSmooth(beta float32) L1Option {
	return loss.WithSmooth(beta)
}

// NewL1Loss creates an L1 loss.
func NewL1Loss(opts ...L1Option) *L1Loss {
	return loss.NewL1Loss(opts...)
}

// L2Loss is mean squared error.
type L2Loss = loss.L2Loss

// NewL2Loss creates an L2 loss.
func NewL2Loss() *L2Loss {
	return loss.NewL2Loss()
}

// CrossEntropyWithLogitsLoss is soft-target cross-entropy over the class
// dimension of a (B, C, P) tensor.
type CrossEntropyWithLogitsLoss = loss.CrossEntropyWithLogitsLoss

// NewCrossEntropyWithLogitsLoss creates the loss.
func NewCrossEntropyWithLogitsLoss() *CrossEntropyWithLogitsLoss {
	return loss.NewCrossEntropyWithLogitsLoss()
}

// WeightAdaptiveHeatmapRegressionLoss is squared error with per-element
// weights that ramp up toward heatmap peaks.
type WeightAdaptiveHeatmapRegressionLoss = loss.WeightAdaptiveHeatmapRegressionLoss

// NewWeightAdaptiveHeatmapRegressionLoss creates the loss.
func NewWeightAdaptiveHeatmapRegressionLoss() *WeightAdaptiveHeatmapRegressionLoss {
	return loss.NewWeightAdaptiveHeatmapRegressionLoss()
}

// Rough head.

// Rough loss term names, in evaluation order.
const (
	RoughTermBCE   = loss.RoughTermBCE
	RoughTermFocal = loss.RoughTermFocal
	RoughTermDice  = loss.RoughTermDice
	RoughTermL1    = loss.RoughTermL1
)

// RoughLossConfig configures the rough head loss.
type RoughLossConfig = loss.RoughLossConfig

// DefaultRoughLossConfig returns the reference rough head configuration.
func DefaultRoughLossConfig() RoughLossConfig {
	return loss.DefaultRoughLossConfig()
}

// RoughLossFunction scores the rough head: mask classification plus
// log-space character height regression.
type RoughLossFunction = loss.RoughLossFunction

// NewRoughLossFunction builds the rough loss from its config.
func NewRoughLossFunction(config RoughLossConfig) (*RoughLossFunction, error) {
	return loss.NewRoughLossFunction(config)
}

// Precise head.

// Precise loss term names, in evaluation order.
const (
	PreciseTermMaskFocal            = loss.PreciseTermMaskFocal
	PreciseTermProbL1               = loss.PreciseTermProbL1
	PreciseTermProbPosL2            = loss.PreciseTermProbPosL2
	PreciseTermProbNegL2            = loss.PreciseTermProbNegL2
	PreciseTermProbWAHR             = loss.PreciseTermProbWAHR
	PreciseTermUpLeftOffsetL1       = loss.PreciseTermUpLeftOffsetL1
	PreciseTermDistanceRegulationL1 = loss.PreciseTermDistanceRegulationL1
	PreciseTermCornerAngleCE        = loss.PreciseTermCornerAngleCE
	PreciseTermCornerDistanceL1     = loss.PreciseTermCornerDistanceL1
)

// PreciseLossConfig configures the precise head loss.
type PreciseLossConfig = loss.PreciseLossConfig

// DefaultPreciseLossConfig returns the reference precise head configuration.
func DefaultPreciseLossConfig() PreciseLossConfig {
	return loss.DefaultPreciseLossConfig()
}

// PreciseInputs bundles the precise head's predictions and targets.
type PreciseInputs = loss.PreciseInputs

// PreciseLossFunction scores the precise head: probability maps plus
// point-wise geometry regression.
type PreciseLossFunction = loss.PreciseLossFunction

// NewPreciseLossFunction builds the precise loss from its config.
func NewPreciseLossFunction(config PreciseLossConfig) (*PreciseLossFunction, error) {
	return loss.NewPreciseLossFunction(config)
}

// Combined criterion.

// Predictions holds all head outputs of the detector network.
type Predictions = loss.Predictions

// Targets holds all ground-truth maps and label points for one batch.
type Targets = loss.Targets

// AdaptiveScalingLossConfig configures both heads.
type AdaptiveScalingLossConfig = loss.AdaptiveScalingLossConfig

// DefaultAdaptiveScalingLossConfig returns the reference configuration.
func DefaultAdaptiveScalingLossConfig() AdaptiveScalingLossConfig {
	return loss.DefaultAdaptiveScalingLossConfig()
}

// AdaptiveScalingLoss is the combined rough + precise criterion.
type AdaptiveScalingLoss = loss.AdaptiveScalingLoss

// NewAdaptiveScalingLoss builds the combined criterion.
func NewAdaptiveScalingLoss(config AdaptiveScalingLossConfig) (*AdaptiveScalingLoss, error) {
	return loss.NewAdaptiveScalingLoss(config)
}
