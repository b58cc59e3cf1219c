package training

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/vkit-x/vkit-open-model/internal/optim"
	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// WeightTensor is one serialized model parameter.
type WeightTensor struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// TrainingState captures the trainer position so a run can resume.
type TrainingState struct {
	EpochIdx    int     `json:"epoch_idx"`
	BestDevLoss float64 `json:"best_dev_loss"`
	LR          float64 `json:"lr"`
}

// CheckpointMetadata describes provenance of a checkpoint file.
type CheckpointMetadata struct {
	Version   string    `json:"version"`
	Framework string    `json:"framework"`
	CreatedAt time.Time `json:"created_at"`
}

// Checkpoint is the full serializable training snapshot: model weights,
// optimizer state, and trainer position.
type Checkpoint struct {
	Weights        []WeightTensor     `json:"weights"`
	OptimizerState *optim.State       `json:"optimizer_state,omitempty"`
	TrainingState  TrainingState      `json:"training_state"`
	Metadata       CheckpointMetadata `json:"metadata"`
}

// Snapshot collects the current weights and optimizer state into a
// checkpoint.
func Snapshot(model Model, optimizer optim.Optimizer, state TrainingState) *Checkpoint {
	ckpt := &Checkpoint{
		TrainingState: state,
		Metadata: CheckpointMetadata{
			Version:   "1.0",
			Framework: "vkit-open-model",
			CreatedAt: time.Now().UTC(),
		},
	}
	for _, param := range model.Parameters() {
		t := param.Tensor()
		data := make([]float32, len(t.AsFloat32()))
		copy(data, t.AsFloat32())
		ckpt.Weights = append(ckpt.Weights, WeightTensor{
			Name:  param.Name(),
			Shape: t.Shape(),
			Data:  data,
		})
	}
	if optimizer != nil {
		ckpt.OptimizerState = optimizer.State()
	}
	return ckpt
}

// Restore copies the checkpoint weights back into the model's parameters
// (matched by name) and reloads the optimizer state. Every checkpoint
// weight must correspond to a model parameter of the same shape.
func (c *Checkpoint) Restore(model Model, optimizer optim.Optimizer) error {
	params := model.Parameters()
	byName := make(map[string]*tensor.Tensor, len(params))
	for _, param := range params {
		byName[param.Name()] = param.Tensor()
	}

	for _, w := range c.Weights {
		target, ok := byName[w.Name]
		if !ok {
			return fmt.Errorf("checkpoint weight %q has no matching parameter", w.Name)
		}
		if !target.Shape().Equal(tensor.Shape(w.Shape)) {
			return fmt.Errorf("checkpoint weight %q has shape %v, parameter has %v",
				w.Name, w.Shape, target.Shape())
		}
		copy(target.AsFloat32(), w.Data)
	}

	if c.OptimizerState != nil && optimizer != nil {
		if err := optimizer.LoadState(c.OptimizerState); err != nil {
			return fmt.Errorf("restore optimizer: %w", err)
		}
	}
	return nil
}

// SaveCheckpoint writes the checkpoint as JSON to path.
func SaveCheckpoint(ckpt *Checkpoint, path string) error {
	data, err := json.Marshal(ckpt)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", path, err)
	}
	return nil
}

// LoadCheckpoint reads a JSON checkpoint from path.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}
	ckpt := &Checkpoint{}
	if err := json.Unmarshal(data, ckpt); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	return ckpt, nil
}
