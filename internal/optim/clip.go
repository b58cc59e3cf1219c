package optim

import (
	"math"

	"github.com/vkit-x/vkit-open-model/internal/nn"
)

// ClipGradNorm rescales all gradients in place so their combined L2 norm
// does not exceed maxNorm. Parameters without gradients are ignored.
// Returns the pre-clip norm.
func ClipGradNorm(params []*nn.Parameter, maxNorm float64) float64 {
	var sumSquares float64
	for _, param := range params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		for _, g := range grad.AsFloat32() {
			sumSquares += float64(g) * float64(g)
		}
	}
	totalNorm := math.Sqrt(sumSquares)
	if totalNorm <= maxNorm || totalNorm == 0 {
		return totalNorm
	}

	scale := float32(maxNorm / (totalNorm + 1e-6))
	for _, param := range params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		data := grad.AsFloat32()
		for i := range data {
			data[i] *= scale
		}
	}
	return totalNorm
}
