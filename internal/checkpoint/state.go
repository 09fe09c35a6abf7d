package checkpoint

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/optim"
	"github.com/born-ml/trainkit/internal/serialization"
	"github.com/born-ml/trainkit/internal/tensor"
)

// Tensor name prefixes in the checkpoint file.
const (
	modelPrefix     = "model."
	optimizerPrefix = "optimizer."
)

// TrainingState is the snapshot a training loop saves each epoch: model
// weights, optimizer buffers, progress counters and free-form metadata.
//
// Example:
//
//	state := checkpoint.NewTrainingState(model, optimizer)
//	state.Epoch, state.Loss, state.BestLoss = epoch, lossMeter.Avg, best
//	err := checkpoint.Save(state, isBest, logdir)
type TrainingState struct {
	ID              string
	CreatedAt       time.Time
	Epoch           int
	Step            int64
	Loss            float64
	BestLoss        float64
	Model           map[string]*tensor.Tensor
	Optimizer       map[string]*tensor.Tensor
	OptimizerName   string
	OptimizerConfig map[string]any
	Extra           map[string]any
}

// NewTrainingState captures the current weights and optimizer state.
// optimizer may be nil.
func NewTrainingState(model nn.Module, optimizer optim.Optimizer) *TrainingState {
	s := &TrainingState{Model: nn.StateDict(model)}
	if optimizer != nil {
		s.Optimizer = optimizer.StateDict()
		s.OptimizerName = optimizer.Name()
		s.OptimizerConfig = optimizer.Config()
	}
	return s
}

// WriteTo encodes the state in the checkpoint container format.
func (s *TrainingState) WriteTo(w io.Writer) (int64, error) {
	tensors := make(map[string]*tensor.Tensor, len(s.Model)+len(s.Optimizer))
	for name, t := range s.Model {
		tensors[modelPrefix+name] = t
	}
	for name, t := range s.Optimizer {
		tensors[optimizerPrefix+name] = t
	}

	header := serialization.Header{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		Epoch:           s.Epoch,
		Step:            s.Step,
		Loss:            serialization.Metric(s.Loss),
		BestLoss:        serialization.Metric(s.BestLoss),
		OptimizerName:   s.OptimizerName,
		OptimizerConfig: s.OptimizerConfig,
	}

	bw := bufio.NewWriter(w)
	n, err := serialization.Write(bw, header, tensors, s.Extra)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return n, nil
}

// Restore loads the saved weights and optimizer state into model and
// optimizer. optimizer may be nil.
func (s *TrainingState) Restore(model nn.Module, optimizer optim.Optimizer) error {
	if err := nn.LoadStateDict(model, s.Model); err != nil {
		return fmt.Errorf("failed to restore model: %w", err)
	}
	if optimizer == nil {
		return nil
	}
	if s.OptimizerName != "" && s.OptimizerName != optimizer.Name() {
		return fmt.Errorf("checkpoint optimizer is %s, got %s", s.OptimizerName, optimizer.Name())
	}
	if err := optimizer.LoadStateDict(s.Optimizer); err != nil {
		return fmt.Errorf("failed to restore optimizer: %w", err)
	}
	return nil
}

// ReadTrainingState decodes a state written by WriteTo.
func ReadTrainingState(r io.Reader) (*TrainingState, error) {
	ckpt, err := serialization.Read(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	h := ckpt.Header
	s := &TrainingState{
		ID:              h.ID,
		CreatedAt:       h.CreatedAt,
		Epoch:           h.Epoch,
		Step:            h.Step,
		Loss:            float64(h.Loss),
		BestLoss:        float64(h.BestLoss),
		Model:           make(map[string]*tensor.Tensor),
		Optimizer:       make(map[string]*tensor.Tensor),
		OptimizerName:   h.OptimizerName,
		OptimizerConfig: h.OptimizerConfig,
		Extra:           ckpt.Extra,
	}
	for name, t := range ckpt.Tensors {
		switch {
		case strings.HasPrefix(name, modelPrefix):
			s.Model[strings.TrimPrefix(name, modelPrefix)] = t
		case strings.HasPrefix(name, optimizerPrefix):
			s.Optimizer[strings.TrimPrefix(name, optimizerPrefix)] = t
		default:
			return nil, fmt.Errorf("unexpected tensor %q in checkpoint", name)
		}
	}
	return s, nil
}

// Load reads a TrainingState from path.
func Load(path string) (*TrainingState, error) {
	//nolint:gosec // G304: path comes from the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := ReadTrainingState(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", path, err)
	}
	return s, nil
}
