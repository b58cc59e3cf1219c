package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// Predictions is the full set of feature maps the AdaptiveScaling detector
// produces for one batch.
type Predictions struct {
	// Rough head.
	RoughCharMaskFeature   *tensor.Tensor // (B, 1, H, W)
	RoughCharHeightFeature *tensor.Tensor // (B, 1, H, W)

	// Precise head.
	PreciseCharMaskFeature       *tensor.Tensor // (B, 1, H, W), nil when absent
	PreciseCharProbFeature       *tensor.Tensor // (B, 1, H, W)
	PreciseUpLeftOffsetFeature   *tensor.Tensor // (B, 2, H, W)
	PreciseCornerAngleFeature    *tensor.Tensor // (B, 4, H, W)
	PreciseCornerDistanceFeature *tensor.Tensor // (B, 4, H, W)
}

// Targets is the matching set of ground truths for one batch. The rough
// head regresses against the text-region mask and height score map; the
// precise head against the character mask and character probability map.
type Targets struct {
	DownsampledMask             *tensor.Tensor // (B, CH, CW) binary text-region mask
	DownsampledScoreMap         *tensor.Tensor // (B, CH, CW) character height map
	DownsampledCharMask         *tensor.Tensor // (B, CH, CW) binary character mask
	DownsampledCharProbScoreMap *tensor.Tensor // (B, CH, CW) character probability map
	DownsampledShape            [2]int
	DownsampledCoreBox          tensor.Box

	LabelPointY     *tensor.Tensor // (B, P) int64
	LabelPointX     *tensor.Tensor // (B, P) int64
	UpLeftOffsets   *tensor.Tensor // (B, P, 2)
	CornerAngles    *tensor.Tensor // (B, P, 4)
	CornerDistances *tensor.Tensor // (B, P, 3)
}

// AdaptiveScalingLossConfig configures both composite losses.
type AdaptiveScalingLossConfig struct {
	Rough   RoughLossConfig   `json:"rough"`
	Precise PreciseLossConfig `json:"precise"`
}

// DefaultAdaptiveScalingLossConfig returns the production defaults for both
// heads.
func DefaultAdaptiveScalingLossConfig() AdaptiveScalingLossConfig {
	return AdaptiveScalingLossConfig{
		Rough:   DefaultRoughLossConfig(),
		Precise: DefaultPreciseLossConfig(),
	}
}

// AdaptiveScalingLoss sums the rough and precise losses. One combined loss
// is used per training configuration.
type AdaptiveScalingLoss struct {
	rough   *RoughLossFunction
	precise *PreciseLossFunction
}

// NewAdaptiveScalingLoss builds the combined loss.
func NewAdaptiveScalingLoss(config AdaptiveScalingLossConfig) (*AdaptiveScalingLoss, error) {
	rough, err := NewRoughLossFunction(config.Rough)
	if err != nil {
		return nil, fmt.Errorf("adaptive scaling loss: %w", err)
	}
	precise, err := NewPreciseLossFunction(config.Precise)
	if err != nil {
		return nil, fmt.Errorf("adaptive scaling loss: %w", err)
	}
	return &AdaptiveScalingLoss{rough: rough, precise: precise}, nil
}

// Rough exposes the rough component.
func (l *AdaptiveScalingLoss) Rough() *RoughLossFunction {
	return l.rough
}

// Precise exposes the precise component.
func (l *AdaptiveScalingLoss) Precise() *PreciseLossFunction {
	return l.precise
}

// Forward computes rough(pred, gt) + precise(pred, gt) as one scalar.
func (l *AdaptiveScalingLoss) Forward(pred *Predictions, gt *Targets) *tensor.Tensor {
	roughLoss := l.rough.Forward(
		pred.RoughCharMaskFeature,
		pred.RoughCharHeightFeature,
		gt.DownsampledMask,
		gt.DownsampledScoreMap,
		gt.DownsampledShape,
		gt.DownsampledCoreBox,
	)

	preciseLoss := l.precise.Forward(&PreciseInputs{
		CharMaskFeature:             pred.PreciseCharMaskFeature,
		CharProbFeature:             pred.PreciseCharProbFeature,
		UpLeftOffsetFeature:         pred.PreciseUpLeftOffsetFeature,
		CornerAngleFeature:          pred.PreciseCornerAngleFeature,
		CornerDistanceFeature:       pred.PreciseCornerDistanceFeature,
		DownsampledCharProbScoreMap: gt.DownsampledCharProbScoreMap,
		DownsampledCharMask:         gt.DownsampledCharMask,
		DownsampledShape:            gt.DownsampledShape,
		DownsampledCoreBox:          gt.DownsampledCoreBox,
		LabelPointY:                 gt.LabelPointY,
		LabelPointX:                 gt.LabelPointX,
		UpLeftOffsets:               gt.UpLeftOffsets,
		CornerAngles:                gt.CornerAngles,
		CornerDistances:             gt.CornerDistances,
	})

	return roughLoss.Add(preciseLoss)
}
