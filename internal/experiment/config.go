// Package experiment turns a run configuration into the objects a
// training loop needs: loss, optimizer, scheduler and run directory.
package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the run configuration read by the factories.
//
// YAML keys follow the command-line names of the training script.
type Config struct {
	Loss         LossSpec  `yaml:"loss"`          // e.g. "bce/seq"
	Optim        string    `yaml:"optim"`         // adam | rmsprop
	LR           float32   `yaml:"lr"`            // learning rate
	Betas        []float32 `yaml:"betas"`         // Adam moment coefficients, two values
	WeightDecay  float32   `yaml:"weight_decay"`  // L2 penalty
	RMSpropAlpha float32   `yaml:"rmsprop_alpha"` // RMSprop smoothing constant
	Scheduler    string    `yaml:"scheduler"`     // "" | multisteplr
	Milestones   []int     `yaml:"milestones"`    // MultiStepLR epochs
	Gamma        float32   `yaml:"gamma"`         // MultiStepLR decay factor
	ExpID        string    `yaml:"expid"`         // run id; filled from the clock when empty
	LogDir       string    `yaml:"logdir"`        // parent of every run directory
	Reduction    string    `yaml:"reduction"`     // optional override: sum | mean
}

// DefaultConfig returns the configuration used when a key is absent.
func DefaultConfig() *Config {
	return &Config{
		Loss:         LossSpec{Name: LossBCE, Scope: ScopeSeq},
		Optim:        "adam",
		LR:           1e-3,
		Betas:        []float32{0.9, 0.999},
		WeightDecay:  0,
		RMSpropAlpha: 0.99,
		Scheduler:    "",
		Gamma:        0.1,
		LogDir:       "logs",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every option a factory would reject, so that a bad
// configuration fails before any training starts.
func (c *Config) Validate() error {
	if err := c.Loss.Validate(); err != nil {
		return err
	}
	if _, err := c.reduction(); err != nil {
		return err
	}
	if _, err := parseOptimizer(c.Optim); err != nil {
		return err
	}
	if _, err := c.betas(); err != nil {
		return err
	}
	if _, err := parseScheduler(c.Scheduler); err != nil {
		return err
	}
	return nil
}

// betas converts the YAML list to the optimizer's pair. An empty list
// selects the optimizer defaults.
func (c *Config) betas() ([2]float32, error) {
	switch len(c.Betas) {
	case 0:
		return [2]float32{}, nil
	case 2:
		return [2]float32{c.Betas[0], c.Betas[1]}, nil
	default:
		return [2]float32{}, fmt.Errorf("betas must have 2 values, got %d", len(c.Betas))
	}
}
