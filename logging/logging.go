// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package logging builds a run logger writing Debug and above to a file
// and Info and above to the console.
//
// Example:
//
//	logger, err := logging.New(filepath.Join(dir, "train.log"))
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	logger.Info("epoch done", "epoch", epoch, "loss", loss)
package logging

import "github.com/born-ml/trainkit/internal/logging"

// Logger is a slog.Logger that owns its file sink.
type Logger = logging.Logger

// Option configures New.
type Option = logging.Option

// New opens path for appending and returns a file + console logger.
func New(path string, opts ...Option) (*Logger, error) {
	return logging.New(path, opts...)
}

// Options.
var (
	WithConsole      = logging.WithConsole
	WithFileLevel    = logging.WithFileLevel
	WithConsoleLevel = logging.WithConsoleLevel
)
