package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// DiceLoss is an overlap loss on probabilities, robust to the extreme
// foreground/background imbalance of text masks.
type DiceLoss struct {
	eps float32
}

// NewDiceLoss creates a Dice loss with the default smoothing epsilon.
func NewDiceLoss() *DiceLoss {
	return &DiceLoss{eps: epsilon}
}

// Forward computes 1 - 2*|pred ∩ gt| / (|pred| + |gt|) over probabilities.
// pred must already be sigmoid-activated. mask may be nil; a Float32 mask
// restricts the overlap to selected elements.
func (l *DiceLoss) Forward(pred, gt, mask *tensor.Tensor) *tensor.Tensor {
	if !pred.Shape().Equal(gt.Shape()) {
		panic(fmt.Sprintf("DiceLoss: shape mismatch %v vs %v", pred.Shape(), gt.Shape()))
	}
	if mask != nil {
		pred = pred.Mul(mask)
		gt = gt.Mul(mask)
	}

	intersection := pred.Mul(gt).Sum()
	union := pred.Sum() + gt.Sum()
	return tensor.Scalar(1.0 - 2.0*intersection/(union+l.eps))
}
