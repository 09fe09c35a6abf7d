// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package meter tracks running averages of scalar training metrics.
//
// Example:
//
//	losses := meter.NewAverageMeter()
//	for _, batch := range batches {
//	    loss := step(batch)
//	    losses.Update(loss, float64(batch.Size))
//	}
//	log.Info("epoch", "loss", losses.Avg)
package meter

import "github.com/born-ml/trainkit/internal/meter"

// AverageMeter computes and stores the average and current value.
type AverageMeter = meter.AverageMeter

// NewAverageMeter returns a meter in the reset state.
func NewAverageMeter() *AverageMeter {
	return meter.NewAverageMeter()
}

// Set is a group of named meters kept in insertion order.
type Set = meter.Set

// NewSet creates a set with one meter per name.
func NewSet(names ...string) *Set {
	return meter.NewSet(names...)
}
