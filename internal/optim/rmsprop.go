package optim

import (
	"math"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/tensor"
)

// RMSprop divides the gradient by a running root mean square of recent
// gradients.
//
// Update rule:
//
//	g     = gradient + weight_decay * param
//	v_t   = alpha * v_{t-1} + (1-alpha) * g²
//	param = param - lr * g / (sqrt(v_t) + eps)
type RMSprop struct {
	params      []*nn.Parameter
	lr          float32
	alpha       float32
	eps         float32
	weightDecay float32
	t           int
	squareAvg   map[*nn.Parameter]*tensor.Tensor
}

// RMSpropConfig holds configuration for RMSprop optimizer.
type RMSpropConfig struct {
	LR          float32 // Learning rate (default: 0.01)
	Alpha       float32 // Smoothing constant (default: 0.99)
	Eps         float32 // Term for numerical stability (default: 1e-8)
	WeightDecay float32 // L2 penalty (default: 0)
}

// NewRMSprop creates a new RMSprop optimizer.
//
// Zero-valued config fields take the defaults listed on RMSpropConfig.
func NewRMSprop(params []*nn.Parameter, config RMSpropConfig) *RMSprop {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Alpha == 0 {
		config.Alpha = 0.99
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &RMSprop{
		params:      params,
		lr:          config.LR,
		alpha:       config.Alpha,
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		squareAvg:   make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single RMSprop update.
func (r *RMSprop) Step() {
	r.t++

	for _, param := range r.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		sq, ok := r.squareAvg[param]
		if !ok {
			sq = tensor.ZerosLike(param.Tensor())
			r.squareAvg[param] = sq
		}

		gradData := grad.Data()
		sqData := sq.Data()
		paramData := param.Tensor().Data()

		for i := range paramData {
			g := gradData[i] + r.weightDecay*paramData[i]
			sqData[i] = r.alpha*sqData[i] + (1.0-r.alpha)*g*g
			paramData[i] -= r.lr * g / (float32(math.Sqrt(float64(sqData[i]))) + r.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (r *RMSprop) ZeroGrad() {
	zeroGrad(r.params)
}

// GetLR returns the current learning rate.
func (r *RMSprop) GetLR() float32 {
	return r.lr
}

// SetLR updates the learning rate.
func (r *RMSprop) SetLR(lr float32) {
	r.lr = lr
}

// Alpha returns the smoothing constant.
func (r *RMSprop) Alpha() float32 {
	return r.alpha
}

// WeightDecay returns the L2 penalty.
func (r *RMSprop) WeightDecay() float32 {
	return r.weightDecay
}

// Name returns "RMSprop".
func (r *RMSprop) Name() string {
	return "RMSprop"
}

// Config returns the RMSprop hyperparameters.
func (r *RMSprop) Config() map[string]any {
	return map[string]any{
		"lr":           r.lr,
		"alpha":        r.alpha,
		"eps":          r.eps,
		"weight_decay": r.weightDecay,
	}
}

// StateDict returns the step counter and "<param>.square_avg" buffers.
func (r *RMSprop) StateDict() map[string]*tensor.Tensor {
	state := map[string]*tensor.Tensor{stepKey: stepTensor(r.t)}
	for _, p := range r.params {
		if sq, ok := r.squareAvg[p]; ok {
			state[bufferKey(p, "square_avg")] = sq.Clone()
		}
	}
	return state
}

// LoadStateDict restores state produced by StateDict.
func (r *RMSprop) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	for _, p := range r.params {
		if err := loadBuffer(stateDict, p, "square_avg", r.squareAvg); err != nil {
			return err
		}
	}
	r.t = loadStep(stateDict)
	return nil
}
