// Package training orchestrates the AdaptiveScaling training loop: batches
// in, forward pass, loss, backward, optimizer step, LR scheduling, periodic
// evaluation, and checkpoint-on-improvement.
//
// The detector network and the dataset pipeline are external collaborators
// consumed through the Model and DataLoader interfaces.
package training

import (
	"context"

	"github.com/vkit-x/vkit-open-model/internal/loss"
	"github.com/vkit-x/vkit-open-model/internal/nn"
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// Batch is one training/evaluation batch as produced by the dataset
// pipeline.
type Batch struct {
	Image   *tensor.Tensor // (B, 3, H*2, W*2), the network downsamples by 2
	Targets *loss.Targets
}

// DataLoader supplies batches. Implementations own any worker/prefetch
// parallelism; NextBatch blocks until a batch is ready or ctx is done.
type DataLoader interface {
	NextBatch(ctx context.Context) (*Batch, error)
}

// Model is the detector network boundary.
//
// Forward runs the network; train toggles training-time behavior
// (dropout-style layers, gradient bookkeeping). Backward propagates from
// the scalar loss and populates each parameter's gradient. The trainer
// never computes gradients itself.
type Model interface {
	Forward(image *tensor.Tensor, train bool) *loss.Predictions
	Backward(scalarLoss *tensor.Tensor)
	Parameters() []*nn.Parameter
}

// Criterion reduces predictions and targets to one scalar loss.
// *loss.AdaptiveScalingLoss is the production implementation.
type Criterion interface {
	Forward(pred *loss.Predictions, gt *loss.Targets) *tensor.Tensor
}
