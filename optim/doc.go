// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms and learning-rate
// schedulers for training neural networks.
//
// # Overview
//
// This package contains:
//   - Adam: Adaptive Moment Estimation with bias correction
//   - RMSprop: running RMS of gradients
//   - MultiStepLR: step decay at milestone epochs
//
// # Training Loop Pattern
//
//	for epoch := range numEpochs {
//	    for batch := range batches {
//	        // 1. Zero gradients
//	        optimizer.ZeroGrad()
//
//	        // 2. Forward pass and loss
//	        out, _ := model.Forward(batch.Input)
//	        grad, _ := criterion.Backward(out, batch.Target)
//
//	        // 3. Backward pass
//	        model.Backward(batch.Input, grad)
//
//	        // 4. Update parameters
//	        optimizer.Step()
//	    }
//	    scheduler.Step()
//	}
package optim
