// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// StateDict returns the module's parameter tensors keyed by name.
func StateDict(m Module) map[string]*tensor.Tensor {
	return nn.StateDict(m)
}

// LoadStateDict copies tensors from dict into the module's parameters.
func LoadStateDict(m Module, dict map[string]*tensor.Tensor) error {
	return nn.LoadStateDict(m, dict)
}

// ErrShapeMismatch is returned when tensor shapes disagree.
var ErrShapeMismatch = nn.ErrShapeMismatch

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, nil)
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// Loss functions

// Loss is a loss function over prediction/target tensors of equal shape.
type Loss = nn.Loss

// Reduction selects how per-element losses collapse to a scalar.
type Reduction = nn.Reduction

// Reduction modes.
const (
	ReductionSum  = nn.ReductionSum
	ReductionMean = nn.ReductionMean
)

// MSELoss computes squared error.
type MSELoss = nn.MSELoss

// NewMSELoss creates a new MSE loss function.
func NewMSELoss(reduction Reduction) *MSELoss {
	return nn.NewMSELoss(reduction)
}

// L1Loss computes absolute error.
type L1Loss = nn.L1Loss

// NewL1Loss creates a new L1 loss function.
func NewL1Loss(reduction Reduction) *L1Loss {
	return nn.NewL1Loss(reduction)
}

// BCEWithLogitsLoss combines a sigmoid with binary cross entropy.
type BCEWithLogitsLoss = nn.BCEWithLogitsLoss

// NewBCEWithLogitsLoss creates a new BCE-with-logits loss function.
func NewBCEWithLogitsLoss(reduction Reduction) *BCEWithLogitsLoss {
	return nn.NewBCEWithLogitsLoss(reduction)
}
