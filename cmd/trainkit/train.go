package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/born-ml/trainkit/checkpoint"
	"github.com/born-ml/trainkit/experiment"
	"github.com/born-ml/trainkit/internal/serialization"
	"github.com/born-ml/trainkit/logging"
	"github.com/born-ml/trainkit/meter"
	"github.com/born-ml/trainkit/nn"
	"github.com/born-ml/trainkit/optim"
)

type trainOptions struct {
	config    string
	epochs    int
	batchSize int
	samples   int
	features  int
	seed      uint64
	resume    bool
}

func cmdTrain(args []string) error {
	var opts trainOptions
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.StringVar(&opts.config, "config", "", "YAML run configuration (defaults when empty)")
	fs.IntVar(&opts.epochs, "epochs", 10, "Number of training epochs")
	fs.IntVar(&opts.batchSize, "batch", 32, "Batch size")
	fs.IntVar(&opts.samples, "samples", 1024, "Synthetic samples to generate")
	fs.IntVar(&opts.features, "features", 16, "Input features per sample")
	fs.Uint64Var(&opts.seed, "seed", 42, "Random seed")
	fs.BoolVar(&opts.resume, "resume", false, "Resume from checkpoint.pt in the run directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.batchSize <= 0 || opts.samples <= 0 || opts.features <= 0 {
		return errors.New("batch, samples and features must be positive")
	}

	cfg := experiment.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = experiment.LoadConfig(opts.config); err != nil {
			return err
		}
	}

	dir, err := experiment.LogDir(cfg)
	if err != nil {
		return err
	}
	logger, err := logging.New(filepath.Join(dir, "train.log"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	return train(cfg, dir, opts, logger)
}

//nolint:gocyclo,cyclop // Linear training loop, split would only move code around.
func train(cfg *experiment.Config, dir string, opts trainOptions, logger *logging.Logger) error {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	criterion, err := experiment.NewLoss(cfg)
	if err != nil {
		return err
	}
	model := nn.NewLinear(opts.features, 1, rng)
	optimizer, err := experiment.NewOptimizer(model, cfg)
	if err != nil {
		return err
	}
	scheduler, err := experiment.NewScheduler(optimizer, cfg)
	if err != nil {
		return err
	}

	logger.Info("run started",
		"expid", cfg.ExpID, "dir", dir,
		"loss", cfg.Loss.String(), "criterion", criterion.Name(), "reduction", criterion.Reduction().String(),
		"optimizer", optimizer.Name(), "lr", optimizer.GetLR())
	logger.Debug("config", "betas", cfg.Betas, "weight_decay", cfg.WeightDecay,
		"rmsprop_alpha", cfg.RMSpropAlpha, "scheduler", cfg.Scheduler,
		"milestones", cfg.Milestones, "gamma", cfg.Gamma)

	store := checkpoint.NewStore(dir)
	startEpoch, step, best := 0, int64(0), math.MaxFloat64
	if opts.resume {
		state, err := store.LoadLatest()
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		if err := state.Restore(model, optimizer); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		startEpoch, step, best = state.Epoch+1, state.Step, state.BestLoss
		if multi, ok := scheduler.(*optim.MultiStepLR); ok {
			multi.SetLastEpoch(startEpoch)
		}
		logger.Info("resumed", "epoch", state.Epoch, "best_loss", best, "lr", optimizer.GetLR())
	}

	data := newSyntheticData(opts.samples, opts.features, cfg.Loss.Name, rng)
	meters := meter.NewSet("loss", "lr")

	for epoch := startEpoch; epoch < opts.epochs; epoch++ {
		meters.ResetAll()
		data.Shuffle(rng)

		for start := 0; start < data.NumSamples(); start += opts.batchSize {
			end := min(start+opts.batchSize, data.NumSamples())
			x, y, err := data.Batch(start, end)
			if err != nil {
				return err
			}

			optimizer.ZeroGrad()
			out, err := model.Forward(x)
			if err != nil {
				return err
			}
			loss, err := criterion.Forward(out, y)
			if err != nil {
				return err
			}
			grad, err := criterion.Backward(out, y)
			if err != nil {
				return err
			}
			if _, err := model.Backward(x, grad); err != nil {
				return err
			}
			optimizer.Step()
			step++

			meters.Get("loss").Update(float64(loss), float64(end-start))
			meters.Get("lr").Add(float64(optimizer.GetLR()))
			logger.Debug("batch", "epoch", epoch, "step", step, "loss", loss)
		}

		if scheduler != nil {
			scheduler.Step()
		}

		epochLoss := meters.Get("loss").Avg
		isBest := epochLoss < best
		if isBest {
			best = epochLoss
		}

		state := checkpoint.NewTrainingState(model, optimizer)
		state.Epoch = epoch
		state.Step = step
		state.Loss = epochLoss
		state.BestLoss = best
		state.Extra = map[string]any{
			"expid": cfg.ExpID,
			"loss":  cfg.Loss.String(),
			"seed":  opts.seed,
		}
		if err := store.Save(state, isBest); err != nil {
			return err
		}

		logger.Info(fmt.Sprintf("epoch %d/%d", epoch+1, opts.epochs),
			"loss", epochLoss, "best", best, "is_best", isBest, "lr", optimizer.GetLR())
		logger.Debug("meters", "summary", meters.Summary())
	}

	logger.Info("run finished", "best_loss", best, "checkpoint", store.LatestPath())
	return nil
}

func readCheckpointHeader(path string) (serialization.Header, error) {
	//nolint:gosec // G304: path is a command-line argument
	f, err := os.Open(path)
	if err != nil {
		return serialization.Header{}, err
	}
	defer func() { _ = f.Close() }()
	return serialization.ReadHeader(f)
}
