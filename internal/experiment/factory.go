package experiment

import (
	"strings"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/optim"
)

type optimizerKind int

const (
	optimAdam optimizerKind = iota
	optimRMSprop
)

type schedulerKind int

const (
	schedNone schedulerKind = iota
	schedMultiStepLR
)

func parseOptimizer(s string) (optimizerKind, error) {
	switch strings.ToLower(s) {
	case "adam":
		return optimAdam, nil
	case "rmsprop":
		return optimRMSprop, nil
	default:
		return 0, &UnsupportedOptionError{Kind: KindOptimizer, Value: s, Allowed: []string{"adam", "rmsprop"}}
	}
}

func parseScheduler(s string) (schedulerKind, error) {
	switch strings.ToLower(s) {
	case "":
		return schedNone, nil
	case "multisteplr":
		return schedMultiStepLR, nil
	default:
		return 0, &UnsupportedOptionError{Kind: KindScheduler, Value: s, Allowed: []string{`""`, "multisteplr"}}
	}
}

// reduction resolves the loss reduction: the explicit Reduction override
// when set, otherwise the loss spec's scope.
func (c *Config) reduction() (nn.Reduction, error) {
	if c.Reduction == "" {
		return c.Loss.Scope.Reduction(), nil
	}
	r, err := nn.ParseReduction(strings.ToLower(c.Reduction))
	if err != nil {
		return 0, &UnsupportedOptionError{Kind: KindReduction, Value: c.Reduction, Allowed: []string{"sum", "mean"}}
	}
	return r, nil
}

// NewLoss builds the loss named by cfg.Loss.
//
//	bce/seq   -> BCEWithLogitsLoss, sum
//	mse/pixel -> MSELoss, mean
//	l1/image  -> L1Loss, sum
func NewLoss(cfg *Config) (nn.Loss, error) {
	if err := cfg.Loss.Validate(); err != nil {
		return nil, err
	}
	r, err := cfg.reduction()
	if err != nil {
		return nil, err
	}

	switch cfg.Loss.Name {
	case LossBCE:
		return nn.NewBCEWithLogitsLoss(r), nil
	case LossMSE:
		return nn.NewMSELoss(r), nil
	default: // LossL1, guaranteed by Validate
		return nn.NewL1Loss(r), nil
	}
}

// NewOptimizer builds the optimizer named by cfg.Optim over the model's
// parameters, using LR and WeightDecay plus Betas (adam) or
// RMSpropAlpha (rmsprop).
func NewOptimizer(model nn.Module, cfg *Config) (optim.Optimizer, error) {
	kind, err := parseOptimizer(cfg.Optim)
	if err != nil {
		return nil, err
	}

	switch kind {
	case optimAdam:
		betas, err := cfg.betas()
		if err != nil {
			return nil, err
		}
		return optim.NewAdam(model.Parameters(), optim.AdamConfig{
			LR:          cfg.LR,
			Betas:       betas,
			WeightDecay: cfg.WeightDecay,
		}), nil
	default: // optimRMSprop
		return optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{
			LR:          cfg.LR,
			Alpha:       cfg.RMSpropAlpha,
			WeightDecay: cfg.WeightDecay,
		}), nil
	}
}

// NewScheduler builds the scheduler named by cfg.Scheduler. An empty name
// returns a nil Scheduler and no error.
func NewScheduler(optimizer optim.Optimizer, cfg *Config) (optim.Scheduler, error) {
	kind, err := parseScheduler(cfg.Scheduler)
	if err != nil {
		return nil, err
	}
	if kind == schedNone {
		return nil, nil
	}
	return optim.NewMultiStepLR(optimizer, cfg.Milestones, cfg.Gamma), nil
}
