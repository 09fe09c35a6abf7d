// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package experiment builds the loss, optimizer, scheduler and run
// directory for a training run from its configuration.
//
// Example:
//
//	cfg, err := experiment.LoadConfig("run.yaml")
//	dir, err := experiment.LogDir(cfg)
//	criterion, err := experiment.NewLoss(cfg)
//	optimizer, err := experiment.NewOptimizer(model, cfg)
//	scheduler, err := experiment.NewScheduler(optimizer, cfg) // nil if cfg.Scheduler == ""
package experiment

import (
	"github.com/born-ml/trainkit/internal/experiment"
	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/optim"
)

// Config is the run configuration read by the factories.
type Config = experiment.Config

// LossSpec is the structured form of a "<name>/<scope>" loss string.
type LossSpec = experiment.LossSpec

// LossName identifies a loss function.
type LossName = experiment.LossName

// ReductionScope is the level a loss is reported at.
type ReductionScope = experiment.ReductionScope

// Known losses and scopes.
const (
	LossBCE = experiment.LossBCE
	LossMSE = experiment.LossMSE
	LossL1  = experiment.LossL1

	ScopeSeq   = experiment.ScopeSeq
	ScopeImage = experiment.ScopeImage
	ScopePixel = experiment.ScopePixel
)

// UnsupportedOptionError reports a configuration value outside its allow-list.
type UnsupportedOptionError = experiment.UnsupportedOptionError

// Sentinel errors, matched with errors.Is.
var (
	ErrUnsupportedLoss      = experiment.ErrUnsupportedLoss
	ErrUnsupportedOptimizer = experiment.ErrUnsupportedOptimizer
	ErrUnsupportedScheduler = experiment.ErrUnsupportedScheduler
)

// DefaultConfig returns the configuration used when a key is absent.
func DefaultConfig() *Config {
	return experiment.DefaultConfig()
}

// LoadConfig reads a YAML file over DefaultConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	return experiment.LoadConfig(path)
}

// ParseLossSpec parses "<name>/<scope>", e.g. "bce/seq".
func ParseLossSpec(s string) (LossSpec, error) {
	return experiment.ParseLossSpec(s)
}

// NewLoss builds the loss named by cfg.Loss.
func NewLoss(cfg *Config) (nn.Loss, error) {
	return experiment.NewLoss(cfg)
}

// NewOptimizer builds the optimizer named by cfg.Optim over the model's parameters.
func NewOptimizer(model nn.Module, cfg *Config) (optim.Optimizer, error) {
	return experiment.NewOptimizer(model, cfg)
}

// NewScheduler builds the scheduler named by cfg.Scheduler, or returns nil.
func NewScheduler(optimizer optim.Optimizer, cfg *Config) (optim.Scheduler, error) {
	return experiment.NewScheduler(optimizer, cfg)
}

// LogDir creates cfg.LogDir/cfg.ExpID, generating ExpID from the clock
// when empty, and returns its path.
func LogDir(cfg *Config) (string, error) {
	return experiment.LogDir(cfg)
}
