package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// Precise loss term names, in evaluation order.
const (
	PreciseTermMaskFocal            = "char_mask_focal"
	PreciseTermProbL1               = "char_prob_l1"
	PreciseTermProbPosL2            = "char_prob_pos_l2"
	PreciseTermProbNegL2            = "char_prob_neg_l2"
	PreciseTermProbWAHR             = "char_prob_wahr"
	PreciseTermUpLeftOffsetL1       = "char_up_left_offset_l1"
	PreciseTermDistanceRegulationL1 = "char_up_left_distance_regulation_l1"
	PreciseTermCornerAngleCE        = "char_corner_angle_cross_entropy"
	PreciseTermCornerDistanceL1     = "char_corner_distance_l1"
)

// PreciseLossConfig weights the precise-head sub-objectives. A factor of
// exactly zero disables its term. LossFactor is the outer gradient-balancing
// knob against the rough loss in the multi-task total.
type PreciseLossConfig struct {
	CharMaskFocalFactor                  float32 `json:"char_mask_focal_factor"`
	CharProbL1Factor                     float32 `json:"char_prob_l1_factor"`
	CharProbPosL2Factor                  float32 `json:"char_prob_pos_l2_factor"`
	CharProbNegL2Factor                  float32 `json:"char_prob_neg_l2_factor"`
	CharProbWAHRFactor                   float32 `json:"char_prob_wahr_factor"`
	CharUpLeftOffsetL1Factor             float32 `json:"char_up_left_offset_l1_factor"`
	CharUpLeftDistanceRegulationL1Factor float32 `json:"char_up_left_distance_regulation_l1_factor"`
	CharCornerAngleCrossEntropyFactor    float32 `json:"char_corner_angle_cross_entropy_factor"`
	CharCornerDistanceL1Factor           float32 `json:"char_corner_distance_l1_factor"`
	LossFactor                           float32 `json:"loss_factor"`
}

// DefaultPreciseLossConfig returns the production defaults.
func DefaultPreciseLossConfig() PreciseLossConfig {
	return PreciseLossConfig{
		CharMaskFocalFactor:                  0.0,
		CharProbL1Factor:                     0.0,
		CharProbPosL2Factor:                  2.0,
		CharProbNegL2Factor:                  1.0,
		CharProbWAHRFactor:                   0.0,
		CharUpLeftOffsetL1Factor:             1.0,
		CharUpLeftDistanceRegulationL1Factor: 1.0,
		CharCornerAngleCrossEntropyFactor:    5.0,
		CharCornerDistanceL1Factor:           1.0,
		LossFactor:                           0.15,
	}
}

// PreciseInputs carries one call's predictions and ground truths.
//
// Mask and probability features are cropped to the core box; point-sampled
// features are not — label points are defined in full downsampled
// coordinates.
type PreciseInputs struct {
	// Model predictions.
	CharMaskFeature       *tensor.Tensor // (B, 1, H, W), nil when the head is absent
	CharProbFeature       *tensor.Tensor // (B, 1, H, W)
	UpLeftOffsetFeature   *tensor.Tensor // (B, 2, H, W)
	CornerAngleFeature    *tensor.Tensor // (B, 4, H, W)
	CornerDistanceFeature *tensor.Tensor // (B, 4, H, W)

	// Ground truths.
	DownsampledCharProbScoreMap *tensor.Tensor // (B, CH, CW)
	DownsampledCharMask         *tensor.Tensor // (B, CH, CW)
	DownsampledShape            [2]int
	DownsampledCoreBox          tensor.Box

	// Label points and per-point targets.
	LabelPointY     *tensor.Tensor // (B, P) int64
	LabelPointX     *tensor.Tensor // (B, P) int64
	UpLeftOffsets   *tensor.Tensor // (B, P, 2)
	CornerAngles    *tensor.Tensor // (B, P, 4)
	CornerDistances *tensor.Tensor // (B, P, 3)
}

// PreciseLossFunction combines fine-grained per-pixel probability losses,
// sub-pixel corner offset regression, corner-angle classification, and
// corner-distance regression into one scalar, scaled by LossFactor.
type PreciseLossFunction struct {
	config PreciseLossConfig
	terms  []term

	// Mask.
	charMaskFocal *FocalWithLogitsLoss
	// Prob.
	charProbL1   *L1Loss
	charProbL2   *L2Loss
	charProbWAHR *WeightAdaptiveHeatmapRegressionLoss
	// Up-left corner.
	charUpLeftOffsetL1             *L1Loss
	charUpLeftDistanceRegulationL1 *L1Loss
	// Corner angle.
	charCornerAngleCE *CrossEntropyWithLogitsLoss
	// Corner distance.
	charCornerDistanceL1 *L1Loss
}

// NewPreciseLossFunction builds the loss with a fixed ordered active-term
// list, rejecting all-zero configurations and non-positive LossFactor.
func NewPreciseLossFunction(config PreciseLossConfig) (*PreciseLossFunction, error) {
	if config.LossFactor <= 0 {
		return nil, fmt.Errorf("precise loss: loss factor must be positive, got %v", config.LossFactor)
	}
	terms, err := activeTerms([]term{
		{PreciseTermMaskFocal, config.CharMaskFocalFactor},
		{PreciseTermProbL1, config.CharProbL1Factor},
		{PreciseTermProbPosL2, config.CharProbPosL2Factor},
		{PreciseTermProbNegL2, config.CharProbNegL2Factor},
		{PreciseTermProbWAHR, config.CharProbWAHRFactor},
		{PreciseTermUpLeftOffsetL1, config.CharUpLeftOffsetL1Factor},
		{PreciseTermDistanceRegulationL1, config.CharUpLeftDistanceRegulationL1Factor},
		{PreciseTermCornerAngleCE, config.CharCornerAngleCrossEntropyFactor},
		{PreciseTermCornerDistanceL1, config.CharCornerDistanceL1Factor},
	})
	if err != nil {
		return nil, fmt.Errorf("precise loss: %w", err)
	}

	return &PreciseLossFunction{
		config:                         config,
		terms:                          terms,
		charMaskFocal:                  NewFocalWithLogitsLoss(),
		charProbL1:                     NewL1Loss(WithSmooth(0.25)),
		charProbL2:                     NewL2Loss(),
		charProbWAHR:                   NewWeightAdaptiveHeatmapRegressionLoss(),
		charUpLeftOffsetL1:             NewL1Loss(WithSmooth(2.5)),
		charUpLeftDistanceRegulationL1: NewL1Loss(WithSmooth(2.5)),
		charCornerAngleCE:              NewCrossEntropyWithLogitsLoss(),
		charCornerDistanceL1:           NewL1Loss(WithSmooth(2.5)),
	}, nil
}

// ActiveTerms lists the enabled term names in evaluation order.
func (f *PreciseLossFunction) ActiveTerms() []string {
	return termNames(f.terms)
}

// Forward computes the precise loss and multiplies it by LossFactor.
//
// Enabling the mask focal term without supplying the mask feature is a
// configuration/prediction mismatch and panics.
func (f *PreciseLossFunction) Forward(in *PreciseInputs) *tensor.Tensor {
	if in.CharMaskFeature != nil && !in.CharMaskFeature.Shape().Equal(in.CharProbFeature.Shape()) {
		panic(fmt.Sprintf("precise loss: mask feature shape %v != prob feature shape %v",
			in.CharMaskFeature.Shape(), in.CharProbFeature.Shape()))
	}
	assertFeatureShape("precise loss", in.CharProbFeature, in.DownsampledShape)
	f.checkPointTargets(in)

	// (B, CH, CW)
	probFeature := in.CharProbFeature.Squeeze(1).Crop2D(in.DownsampledCoreBox)
	var maskFeature *tensor.Tensor
	if in.CharMaskFeature != nil {
		maskFeature = in.CharMaskFeature.Squeeze(1).Crop2D(in.DownsampledCoreBox)
	}

	// Up-left corner. (B, P, 2)
	offsetPoints := tensor.GatherPoints(in.UpLeftOffsetFeature, in.LabelPointY, in.LabelPointX)

	// Corner angle. (B, 4, P): classification losses expect the class
	// dimension second.
	anglePoints := tensor.GatherPoints(in.CornerAngleFeature, in.LabelPointY, in.LabelPointX).Transpose12()
	angleTargets := in.CornerAngles.Transpose12()

	// Corner distance. (B, P, 4), split into the up-left channel (trained
	// implicitly through the offset norm) and the three directly regressed
	// corners.
	distancePoints := tensor.GatherPoints(in.CornerDistanceFeature, in.LabelPointY, in.LabelPointX)
	upLeftOnlyDistance := distancePoints.Narrow(2, 0, 1).Squeeze(2) // (B, P)
	trimmedDistance := distancePoints.Narrow(2, 1, 3)               // (B, P, 3)

	// Sigmoid once, shared by every probability term.
	var probSigmoid *tensor.Tensor
	if f.anyProbTermActive() {
		probSigmoid = probFeature.Sigmoid()
	}

	acc := &accumulator{}
	for _, t := range f.terms {
		switch t.name {
		case PreciseTermMaskFocal:
			if maskFeature == nil {
				panic("precise loss: char mask focal term enabled but no mask feature supplied")
			}
			acc.add(t.factor, f.charMaskFocal.Forward(maskFeature, in.DownsampledCharMask))
		case PreciseTermProbL1:
			acc.add(t.factor, f.charProbL1.Forward(probSigmoid, in.DownsampledCharProbScoreMap, in.DownsampledCharMask))
		case PreciseTermProbPosL2:
			acc.add(t.factor, f.charProbL2.Forward(probSigmoid, in.DownsampledCharProbScoreMap, in.DownsampledCharMask))
		case PreciseTermProbNegL2:
			// Inverted mask: suppress confidence on background.
			negMask := in.DownsampledCharMask.MulScalar(-1).AddScalar(1)
			acc.add(t.factor, f.charProbL2.Forward(probSigmoid, in.DownsampledCharProbScoreMap, negMask))
		case PreciseTermProbWAHR:
			acc.add(t.factor, f.charProbWAHR.Forward(probSigmoid, in.DownsampledCharProbScoreMap))
		case PreciseTermUpLeftOffsetL1:
			acc.add(t.factor, f.charUpLeftOffsetL1.Forward(offsetPoints, in.UpLeftOffsets, nil))
		case PreciseTermDistanceRegulationL1:
			// Consistency between the offset vector's magnitude and the
			// predicted up-left distance channel.
			acc.add(t.factor, f.charUpLeftDistanceRegulationL1.Forward(
				offsetPoints.NormLastDim(), upLeftOnlyDistance, nil))
		case PreciseTermCornerAngleCE:
			acc.add(t.factor, f.charCornerAngleCE.Forward(anglePoints, angleTargets))
		case PreciseTermCornerDistanceL1:
			acc.add(t.factor, f.charCornerDistanceL1.Forward(trimmedDistance, in.CornerDistances, nil))
		}
	}

	// Balance gradient against the other loss components.
	return acc.value().MulScalar(f.config.LossFactor)
}

func (f *PreciseLossFunction) anyProbTermActive() bool {
	for _, t := range f.terms {
		switch t.name {
		case PreciseTermProbL1, PreciseTermProbPosL2, PreciseTermProbNegL2, PreciseTermProbWAHR:
			return true
		}
	}
	return false
}

// checkPointTargets validates the per-point tensors: one consistent point
// count P across every per-point input.
func (f *PreciseLossFunction) checkPointTargets(in *PreciseInputs) {
	if len(in.LabelPointY.Shape()) != 2 || !in.LabelPointY.Shape().Equal(in.LabelPointX.Shape()) {
		panic(fmt.Sprintf("precise loss: label point shapes must match as (B, P), got %v and %v",
			in.LabelPointY.Shape(), in.LabelPointX.Shape()))
	}
	batch, points := in.LabelPointY.Shape()[0], in.LabelPointY.Shape()[1]

	check := func(name string, t *tensor.Tensor, channels int) {
		want := tensor.Shape{batch, points, channels}
		if !t.Shape().Equal(want) {
			panic(fmt.Sprintf("precise loss: %s shape %v, want %v", name, t.Shape(), want))
		}
	}
	check("up-left offsets", in.UpLeftOffsets, 2)
	check("corner angles", in.CornerAngles, 4)
	check("corner distances", in.CornerDistances, 3)
}
