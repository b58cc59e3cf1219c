package loss

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// L1Loss is the absolute-error loss, optionally in its smooth variant:
// quadratic within the transition radius beta, linear beyond it. The smooth
// form keeps gradients bounded on outliers while staying well-conditioned
// near zero.
type L1Loss struct {
	smooth bool
	beta   float32
}

// L1Option configures an L1Loss.
type L1Option func(*L1Loss)

// WithSmooth enables the smooth-L1 variant with transition point beta.
func WithSmooth(beta float32) L1Option {
	return func(l *L1Loss) {
		l.smooth = true
		l.beta = beta
	}
}

// NewL1Loss creates a plain L1 loss, or a smooth one via WithSmooth.
func NewL1Loss(opts ...L1Option) *L1Loss {
	l := &L1Loss{smooth: false, beta: 1.0}
	for _, opt := range opts {
		opt(l)
	}
	if l.beta <= 0 {
		panic(fmt.Sprintf("L1Loss: beta must be positive, got %v", l.beta))
	}
	return l
}

// Forward computes the (smooth-)L1 loss between pred and gt, reduced to the
// mean over contributing elements. mask may be nil.
func (l *L1Loss) Forward(pred, gt, mask *tensor.Tensor) *tensor.Tensor {
	if !pred.Shape().Equal(gt.Shape()) {
		panic(fmt.Sprintf("L1Loss: shape mismatch %v vs %v", pred.Shape(), gt.Shape()))
	}

	elementwise := tensor.MustNew(pred.Shape(), tensor.Float32)
	p, g, dst := pred.AsFloat32(), gt.AsFloat32(), elementwise.AsFloat32()
	for i := range dst {
		d := math32.Abs(p[i] - g[i])
		if l.smooth && d < l.beta {
			dst[i] = 0.5 * d * d / l.beta
		} else if l.smooth {
			dst[i] = d - 0.5*l.beta
		} else {
			dst[i] = d
		}
	}
	return tensor.Scalar(maskedMean(elementwise, mask))
}
