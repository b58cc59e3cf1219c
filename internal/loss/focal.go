package loss

import (
	"github.com/chewxy/math32"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// FocalWithLogitsLoss down-weights well-classified elements so that training
// focuses on hard examples.
type FocalWithLogitsLoss struct {
	alpha float32
	gamma float32
}

// NewFocalWithLogitsLoss creates a focal loss with the standard
// alpha=0.25, gamma=2.0 parameters.
func NewFocalWithLogitsLoss() *FocalWithLogitsLoss {
	return &FocalWithLogitsLoss{alpha: 0.25, gamma: 2.0}
}

// Forward computes the mean focal loss between logits and a binary mask.
func (l *FocalWithLogitsLoss) Forward(pred, gt *tensor.Tensor) *tensor.Tensor {
	elementwise := bceWithLogits(pred, gt)

	predData := pred.AsFloat32()
	gtData := gt.AsFloat32()
	lossData := elementwise.AsFloat32()

	var sum float32
	for i := range lossData {
		p := 1.0 / (1.0 + math32.Exp(-predData[i]))
		pt := p*gtData[i] + (1.0-p)*(1.0-gtData[i])
		alphaT := l.alpha*gtData[i] + (1.0-l.alpha)*(1.0-gtData[i])
		sum += alphaT * math32.Pow(1.0-pt, l.gamma) * lossData[i]
	}
	return tensor.Scalar(sum / float32(len(lossData)))
}
