package loss

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// CrossEntropyWithLogitsLoss is a multi-class cross-entropy over a
// designated class dimension. Predictions are raw logits of shape
// (B, C, P); targets are class probabilities of the same shape (one-hot
// targets reduce this to index cross-entropy).
//
// Log-probabilities are computed with the log-sum-exp trick, so extreme
// logits neither overflow nor underflow.
type CrossEntropyWithLogitsLoss struct{}

// NewCrossEntropyWithLogitsLoss creates the loss.
func NewCrossEntropyWithLogitsLoss() *CrossEntropyWithLogitsLoss {
	return &CrossEntropyWithLogitsLoss{}
}

// Forward computes the mean over (batch, position) of
// -sum_c gt[b,c,p] * log_softmax(pred)[b,c,p].
func (l *CrossEntropyWithLogitsLoss) Forward(pred, gt *tensor.Tensor) *tensor.Tensor {
	if len(pred.Shape()) != 3 {
		panic(fmt.Sprintf("CrossEntropyWithLogitsLoss: want (B, C, P) logits, got shape %v", pred.Shape()))
	}
	if !pred.Shape().Equal(gt.Shape()) {
		panic(fmt.Sprintf("CrossEntropyWithLogitsLoss: shape mismatch %v vs %v", pred.Shape(), gt.Shape()))
	}

	batch, classes, positions := pred.Shape()[0], pred.Shape()[1], pred.Shape()[2]
	predData, gtData := pred.AsFloat32(), gt.AsFloat32()

	var total float32
	for b := 0; b < batch; b++ {
		for p := 0; p < positions; p++ {
			// Log-sum-exp over the class dimension.
			maxLogit := math32.Inf(-1)
			for c := 0; c < classes; c++ {
				v := predData[(b*classes+c)*positions+p]
				if v > maxLogit {
					maxLogit = v
				}
			}
			var sumExp float32
			for c := 0; c < classes; c++ {
				sumExp += math32.Exp(predData[(b*classes+c)*positions+p] - maxLogit)
			}
			logSumExp := maxLogit + math32.Log(sumExp)

			for c := 0; c < classes; c++ {
				idx := (b*classes+c)*positions + p
				total -= gtData[idx] * (predData[idx] - logSumExp)
			}
		}
	}
	return tensor.Scalar(total / float32(batch*positions))
}
