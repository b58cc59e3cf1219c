package loss

import (
	"fmt"
	"sort"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// WeightedBCEWithLogitsLoss is binary cross-entropy with hard negative
// mining. Text-region masks are overwhelmingly background, so the raw BCE
// mean is dominated by easy negatives; this loss keeps at most
// negativeRatio negatives per positive, picking the hardest (largest-loss)
// ones, then averages over the retained elements.
type WeightedBCEWithLogitsLoss struct {
	negativeRatio float32
}

// NewWeightedBCEWithLogitsLoss creates the loss with the given
// negative-to-positive cap. A ratio of 3.0 keeps at most three negatives
// per positive element.
func NewWeightedBCEWithLogitsLoss(negativeRatio float32) *WeightedBCEWithLogitsLoss {
	if negativeRatio <= 0 {
		panic(fmt.Sprintf("WeightedBCEWithLogitsLoss: negative ratio must be positive, got %v", negativeRatio))
	}
	return &WeightedBCEWithLogitsLoss{negativeRatio: negativeRatio}
}

// Forward computes the balanced BCE between logits and a binary mask.
// pred and gt must share a shape; gt holds 0/1 values.
func (l *WeightedBCEWithLogitsLoss) Forward(pred, gt *tensor.Tensor) *tensor.Tensor {
	elementwise := bceWithLogits(pred, gt)

	lossData := elementwise.AsFloat32()
	gtData := gt.AsFloat32()

	var positiveSum float32
	positiveCount := 0
	negativeLosses := make([]float32, 0, len(lossData))
	for i, g := range gtData {
		if g > 0.5 {
			positiveSum += lossData[i]
			positiveCount++
		} else {
			negativeLosses = append(negativeLosses, lossData[i])
		}
	}

	negativeCount := int(float32(positiveCount) * l.negativeRatio)
	if negativeCount > len(negativeLosses) {
		negativeCount = len(negativeLosses)
	}

	// Hardest negatives first.
	sort.Slice(negativeLosses, func(i, j int) bool { return negativeLosses[i] > negativeLosses[j] })
	var negativeSum float32
	for _, v := range negativeLosses[:negativeCount] {
		negativeSum += v
	}

	balanced := (positiveSum + negativeSum) / (float32(positiveCount+negativeCount) + epsilon)
	return tensor.Scalar(balanced)
}
