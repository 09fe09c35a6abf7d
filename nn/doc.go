// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides trainable parameters, a dense layer and the loss
// functions used by trainkit.
//
// # Overview
//
// This package contains:
//   - Module interface and Parameter
//   - Linear: fully connected layer with explicit Backward
//   - Loss functions: BCEWithLogitsLoss, MSELoss, L1Loss
//
// # Training Step
//
// There is no autograd. A step runs forward, asks the loss for its
// gradient, and backpropagates through the layer by hand:
//
//	out, _ := model.Forward(x)
//	loss, _ := criterion.Forward(out, y)
//	grad, _ := criterion.Backward(out, y)
//	_, _ = model.Backward(x, grad)
//	optimizer.Step()
//
// # Loss Functions
//
// Every loss takes a Reduction:
//
//	bce := nn.NewBCEWithLogitsLoss(nn.ReductionSum)
//	mse := nn.NewMSELoss(nn.ReductionMean)
package nn
