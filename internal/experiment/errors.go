package experiment

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration values no factory can build.
var (
	ErrUnsupportedLoss      = errors.New("unsupported loss")
	ErrUnsupportedOptimizer = errors.New("unsupported optimizer")
	ErrUnsupportedScheduler = errors.New("unsupported scheduler")
)

// Option kinds reported by UnsupportedOptionError.
const (
	KindLoss      = "loss"
	KindReduction = "reduction"
	KindOptimizer = "optimizer"
	KindScheduler = "scheduler"
)

// UnsupportedOptionError reports a configuration value outside its
// allow-list. errors.Is matches the sentinel for its kind.
type UnsupportedOptionError struct {
	Kind    string   // One of the Kind* constants
	Value   string   // Value as supplied
	Allowed []string // Accepted values
}

// Error implements the error interface.
func (e *UnsupportedOptionError) Error() string {
	return fmt.Sprintf("unsupported %s %q (allowed: %s)", e.Kind, e.Value, strings.Join(e.Allowed, ", "))
}

// Unwrap returns the sentinel for the option kind.
func (e *UnsupportedOptionError) Unwrap() error {
	switch e.Kind {
	case KindLoss, KindReduction:
		return ErrUnsupportedLoss
	case KindOptimizer:
		return ErrUnsupportedOptimizer
	case KindScheduler:
		return ErrUnsupportedScheduler
	default:
		return nil
	}
}
