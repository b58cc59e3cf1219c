package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// WeightAdaptiveHeatmapRegressionLoss is a squared-error regression loss
// whose per-element weight grows with the ground-truth heatmap intensity,
// emphasizing peak regions over flat background. Weights ramp linearly from
// 1 at gt=0 to peakWeight at gt=1, and the loss is the weighted mean.
type WeightAdaptiveHeatmapRegressionLoss struct {
	peakWeight float32
}

// NewWeightAdaptiveHeatmapRegressionLoss creates the loss with the default
// peak weight of 4.
func NewWeightAdaptiveHeatmapRegressionLoss() *WeightAdaptiveHeatmapRegressionLoss {
	return &WeightAdaptiveHeatmapRegressionLoss{peakWeight: 4.0}
}

// Forward computes sum(w * (pred-gt)^2) / sum(w) with w = 1 + (peakWeight-1)*gt.
// pred must already be sigmoid-activated; gt is a heatmap in [0, 1].
func (l *WeightAdaptiveHeatmapRegressionLoss) Forward(pred, gt *tensor.Tensor) *tensor.Tensor {
	if !pred.Shape().Equal(gt.Shape()) {
		panic(fmt.Sprintf("WeightAdaptiveHeatmapRegressionLoss: shape mismatch %v vs %v",
			pred.Shape(), gt.Shape()))
	}

	p, g := pred.AsFloat32(), gt.AsFloat32()
	var lossSum, weightSum float32
	for i := range p {
		w := 1.0 + (l.peakWeight-1.0)*g[i]
		d := p[i] - g[i]
		lossSum += w * d * d
		weightSum += w
	}
	return tensor.Scalar(lossSum / (weightSum + epsilon))
}
