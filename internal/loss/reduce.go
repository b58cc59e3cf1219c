package loss

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// epsilon keeps masked-mean denominators away from zero when a mask selects
// no elements.
const epsilon = 1e-6

// maskedMean reduces an elementwise loss tensor to its mean over
// contributing elements. A nil mask means every element contributes; a
// Float32 mask weights elements and normalizes by the mask sum.
func maskedMean(elementwise, mask *tensor.Tensor) float32 {
	if mask == nil {
		return elementwise.Mean()
	}
	if mask.DType() != tensor.Float32 {
		panic(fmt.Sprintf("maskedMean: mask must be float32, got %s", mask.DType()))
	}
	if !mask.Shape().Equal(elementwise.Shape()) {
		panic(fmt.Sprintf("maskedMean: mask shape %v does not match loss shape %v",
			mask.Shape(), elementwise.Shape()))
	}
	return elementwise.Mul(mask).Sum() / (mask.Sum() + epsilon)
}

// bceWithLogits computes elementwise binary cross-entropy on raw logits.
//
// Uses the standard stable form max(x, 0) - x*z + log(1 + exp(-|x|)), which
// never exponentiates a positive argument.
func bceWithLogits(pred, gt *tensor.Tensor) *tensor.Tensor {
	if !pred.Shape().Equal(gt.Shape()) {
		panic(fmt.Sprintf("bceWithLogits: shape mismatch %v vs %v", pred.Shape(), gt.Shape()))
	}
	out := tensor.MustNew(pred.Shape(), tensor.Float32)
	x, z, dst := pred.AsFloat32(), gt.AsFloat32(), out.AsFloat32()
	for i := range dst {
		m := x[i]
		if m < 0 {
			m = 0
		}
		dst[i] = m - x[i]*z[i] + math32.Log(1.0+math32.Exp(-math32.Abs(x[i])))
	}
	return out
}
