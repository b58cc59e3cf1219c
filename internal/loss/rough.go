package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// Rough loss term names, in evaluation order.
const (
	RoughTermBCE   = "bce"
	RoughTermFocal = "focal"
	RoughTermDice  = "dice"
	RoughTermL1    = "l1"
)

// RoughLossConfig weights the coarse-head sub-objectives. A factor of
// exactly zero disables its term. The two minimum thresholds guard the
// log-space scale regression against log of non-positive values.
type RoughLossConfig struct {
	BCENegativeRatio       float32 `json:"bce_negative_ratio"`
	BCEFactor              float32 `json:"bce_factor"`
	FocalFactor            float32 `json:"focal_factor"`
	DiceFactor             float32 `json:"dice_factor"`
	L1Factor               float32 `json:"l1_factor"`
	DownsampledScoreMapMin float32 `json:"downsampled_score_map_min"`
	CharHeightFeatureMin   float32 `json:"char_height_feature_min"`
}

// DefaultRoughLossConfig returns the production defaults.
func DefaultRoughLossConfig() RoughLossConfig {
	return RoughLossConfig{
		BCENegativeRatio:       3.0,
		BCEFactor:              0.0,
		FocalFactor:            5.0,
		DiceFactor:             1.0,
		L1Factor:               1.0,
		DownsampledScoreMapMin: 1.1,
		CharHeightFeatureMin:   1.1,
	}
}

// RoughLossFunction combines coarse mask classification (weighted BCE,
// focal, Dice) and coarse scale regression (log-space smooth L1) into one
// scalar.
type RoughLossFunction struct {
	config RoughLossConfig
	terms  []term

	// Mask.
	weightedBCE *WeightedBCEWithLogitsLoss
	focal       *FocalWithLogitsLoss
	dice        *DiceLoss

	// Scale.
	l1 *L1Loss
}

// NewRoughLossFunction builds the loss with a fixed ordered active-term
// list. Configurations where every factor is zero are rejected: such a loss
// would have nothing to return.
func NewRoughLossFunction(config RoughLossConfig) (*RoughLossFunction, error) {
	terms, err := activeTerms([]term{
		{RoughTermBCE, config.BCEFactor},
		{RoughTermFocal, config.FocalFactor},
		{RoughTermDice, config.DiceFactor},
		{RoughTermL1, config.L1Factor},
	})
	if err != nil {
		return nil, fmt.Errorf("rough loss: %w", err)
	}

	return &RoughLossFunction{
		config:      config,
		terms:       terms,
		weightedBCE: NewWeightedBCEWithLogitsLoss(config.BCENegativeRatio),
		focal:       NewFocalWithLogitsLoss(),
		dice:        NewDiceLoss(),
		l1:          NewL1Loss(WithSmooth(1.0)),
	}, nil
}

// ActiveTerms lists the enabled term names in evaluation order.
func (f *RoughLossFunction) ActiveTerms() []string {
	return termNames(f.terms)
}

// Forward computes the rough loss.
//
// roughCharMaskFeature and roughCharHeightFeature are (B, 1, H, W) model
// outputs; downsampledMask and downsampledScoreMap are (B, CH, CW) ground
// truths matching the core box crop. The result is the unweighted sum of
// the active weighted terms; the caller applies any outer scaling.
func (f *RoughLossFunction) Forward(
	roughCharMaskFeature *tensor.Tensor,
	roughCharHeightFeature *tensor.Tensor,
	downsampledMask *tensor.Tensor,
	downsampledScoreMap *tensor.Tensor,
	downsampledShape [2]int,
	downsampledCoreBox tensor.Box,
) *tensor.Tensor {
	if !roughCharMaskFeature.Shape().Equal(roughCharHeightFeature.Shape()) {
		panic(fmt.Sprintf("rough loss: mask feature shape %v != height feature shape %v",
			roughCharMaskFeature.Shape(), roughCharHeightFeature.Shape()))
	}
	assertFeatureShape("rough loss", roughCharMaskFeature, downsampledShape)

	// (B, H, W), then cropped to the core box.
	maskFeature := roughCharMaskFeature.Squeeze(1).Crop2D(downsampledCoreBox)
	heightFeature := roughCharHeightFeature.Squeeze(1).Crop2D(downsampledCoreBox)

	acc := &accumulator{}
	for _, t := range f.terms {
		switch t.name {
		case RoughTermBCE:
			acc.add(t.factor, f.weightedBCE.Forward(maskFeature, downsampledMask))
		case RoughTermFocal:
			acc.add(t.factor, f.focal.Forward(maskFeature, downsampledMask))
		case RoughTermDice:
			acc.add(t.factor, f.dice.Forward(maskFeature.Sigmoid(), downsampledMask, nil))
		case RoughTermL1:
			acc.add(t.factor, f.scaleLoss(heightFeature, downsampledMask, downsampledScoreMap))
		}
	}
	return acc.value()
}

// scaleLoss regresses the predicted character height against the score map
// in log space, so the loss captures relative scale error rather than
// absolute pixel error.
func (f *RoughLossFunction) scaleLoss(heightFeature, downsampledMask, downsampledScoreMap *tensor.Tensor) *tensor.Tensor {
	// The critical mask drops near-zero and undefined scale targets: an
	// element contributes only when prediction and target both clear their
	// minimums AND the ground-truth mask is set. Without it the log-space
	// loss is undefined or unstable at zero.
	criticalMask := heightFeature.GtScalar(f.config.CharHeightFeatureMin).
		And(downsampledScoreMap.GtScalar(f.config.DownsampledScoreMapMin)).
		And(downsampledMask.GtScalar(0)).
		Float32()

	clampedHeight := heightFeature.ClampMin(f.config.CharHeightFeatureMin)
	clampedScoreMap := downsampledScoreMap.ClampMin(f.config.DownsampledScoreMapMin)

	return f.l1.Forward(clampedHeight.Log(), clampedScoreMap.Log(), criticalMask)
}

// assertFeatureShape panics unless feature is (B, 1, H, W) with the given
// downsampled spatial extent.
func assertFeatureShape(who string, feature *tensor.Tensor, downsampledShape [2]int) {
	shape := feature.Shape()
	if len(shape) != 4 || shape[1] != 1 {
		panic(fmt.Sprintf("%s: want (B, 1, H, W) feature, got shape %v", who, shape))
	}
	if shape[2] != downsampledShape[0] || shape[3] != downsampledShape[1] {
		panic(fmt.Sprintf("%s: feature extent %dx%d != downsampled shape %dx%d",
			who, shape[2], shape[3], downsampledShape[0], downsampledShape[1]))
	}
}
