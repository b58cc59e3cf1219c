package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// L2Loss is the squared-error loss, reduced to the mean over contributing
// elements.
type L2Loss struct{}

// NewL2Loss creates an L2 loss.
func NewL2Loss() *L2Loss {
	return &L2Loss{}
}

// Forward computes mean((pred - gt)^2), restricted by mask when non-nil.
func (l *L2Loss) Forward(pred, gt, mask *tensor.Tensor) *tensor.Tensor {
	if !pred.Shape().Equal(gt.Shape()) {
		panic(fmt.Sprintf("L2Loss: shape mismatch %v vs %v", pred.Shape(), gt.Shape()))
	}
	elementwise := pred.Sub(gt).Square()
	return tensor.Scalar(maskedMean(elementwise, mask))
}
