// Package optim implements the optimizers and learning-rate schedulers
// selectable from an experiment configuration.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - Adam: Adaptive Moment Estimation with L2 weight decay
//   - RMSprop: running average of squared gradients
//   - MultiStepLR: step decay at fixed epoch milestones
//
// Parameters carry their own gradients (nn.Parameter.Grad), so Step takes
// no arguments:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-3})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    // forward, loss.Backward, model.Backward ...
//	    optimizer.Step()
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Parameters without a gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate. Used by schedulers.
	SetLR(lr float32)

	// Name returns the optimizer name ("Adam", "RMSprop").
	Name() string

	// Config returns the hyperparameters for checkpoint metadata.
	Config() map[string]any

	// StateDict returns the optimizer buffers for serialization.
	StateDict() map[string]*tensor.Tensor

	// LoadStateDict restores buffers produced by StateDict.
	LoadStateDict(stateDict map[string]*tensor.Tensor) error
}

// stepKey holds the step counter in state dicts.
const stepKey = "step"

func zeroGrad(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// bufferKey names a per-parameter buffer in a state dict.
func bufferKey(param *nn.Parameter, buffer string) string {
	return param.Name() + "." + buffer
}

// loadBuffer copies a saved buffer for param, allocating dst if needed.
func loadBuffer(stateDict map[string]*tensor.Tensor, param *nn.Parameter, buffer string,
	dst map[*nn.Parameter]*tensor.Tensor,
) error {
	saved, ok := stateDict[bufferKey(param, buffer)]
	if !ok {
		delete(dst, param)
		return nil
	}
	if !saved.Shape().Equal(param.Tensor().Shape()) {
		return fmt.Errorf("%w: %s buffer %v for parameter %v",
			nn.ErrShapeMismatch, bufferKey(param, buffer), saved.Shape(), param.Tensor().Shape())
	}
	dst[param] = saved.Clone()
	return nil
}

// stepTensor stores t as [high, low] 16-bit halves; each half is exact in
// float32, which a single element stops being above 2^24.
func stepTensor(t int) *tensor.Tensor {
	s := tensor.New(tensor.Shape{2})
	s.Data()[0] = float32(t >> 16)
	s.Data()[1] = float32(t & 0xFFFF)
	return s
}

func loadStep(stateDict map[string]*tensor.Tensor) int {
	s, ok := stateDict[stepKey]
	if !ok || s.NumElements() != 2 {
		return 0
	}
	return int(s.Data()[0])<<16 | int(s.Data()[1])
}
