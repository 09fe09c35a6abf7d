// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	model := nn.NewLinear(784, 10, nil)
//	optimizer := optim.NewAdam(
//	    model.Parameters(),
//	    optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float32{0.9, 0.999},
//	    },
//	)
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// RMSprop

// RMSprop represents the RMSprop optimizer.
type RMSprop = optim.RMSprop

// RMSpropConfig contains configuration for RMSprop optimizer.
type RMSpropConfig = optim.RMSpropConfig

// NewRMSprop creates a new RMSprop optimizer.
func NewRMSprop(params []*nn.Parameter, config RMSpropConfig) *RMSprop {
	return optim.NewRMSprop(params, config)
}

// Schedulers

// Scheduler adjusts an optimizer's learning rate between epochs.
type Scheduler = optim.Scheduler

// MultiStepLR decays the learning rate by gamma at each milestone epoch.
type MultiStepLR = optim.MultiStepLR

// NewMultiStepLR creates a milestone scheduler bound to optimizer.
//
// Example:
//
//	sched := optim.NewMultiStepLR(optimizer, []int{30, 60}, 0.1)
//	for epoch := range epochs {
//	    train(epoch)
//	    sched.Step()
//	}
func NewMultiStepLR(optimizer Optimizer, milestones []int, gamma float32) *MultiStepLR {
	return optim.NewMultiStepLR(optimizer, milestones, gamma)
}
