// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint saves training state as checkpoint.pt and best.pt in
// a run directory.
//
// Example:
//
//	state := checkpoint.NewTrainingState(model, optimizer)
//	state.Epoch, state.Loss = epoch, loss
//	if err := checkpoint.Save(state, loss < best, dir); err != nil {
//	    return err
//	}
package checkpoint

import (
	"github.com/born-ml/trainkit/internal/checkpoint"
	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/optim"
)

// File names inside a run directory.
const (
	LatestFile = checkpoint.LatestFile
	BestFile   = checkpoint.BestFile
)

// Snapshot is an opaque, serializable training state.
type Snapshot = checkpoint.Snapshot

// TrainingState holds model weights, optimizer buffers and progress.
type TrainingState = checkpoint.TrainingState

// Store saves snapshots into a fixed run directory.
type Store = checkpoint.Store

// Save writes state to dir/checkpoint.pt and, if isBest, copies it to dir/best.pt.
func Save(state Snapshot, isBest bool, dir string) error {
	return checkpoint.Save(state, isBest, dir)
}

// NewStore returns a Store for dir.
func NewStore(dir string) *Store {
	return checkpoint.NewStore(dir)
}

// NewTrainingState captures the current weights and optimizer state.
func NewTrainingState(model nn.Module, optimizer optim.Optimizer) *TrainingState {
	return checkpoint.NewTrainingState(model, optimizer)
}

// Load reads a TrainingState from path.
func Load(path string) (*TrainingState, error) {
	return checkpoint.Load(path)
}
