package optim

import (
	"math"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	g     = gradient + weight_decay * param              // L2 penalty
//	m_t   = beta1 * m_{t-1} + (1-beta1) * g              // First moment
//	v_t   = beta2 * v_{t-1} + (1-beta2) * g²             // Second moment
//	m_hat = m_t / (1 - beta1^t)                          // Bias correction
//	v_hat = v_t / (1 - beta2^t)                          // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params      []*nn.Parameter
	lr          float32
	beta1       float32
	beta2       float32
	eps         float32
	weightDecay float32
	t           int                              // Timestep for bias correction
	m           map[*nn.Parameter]*tensor.Tensor // First moment estimates
	v           map[*nn.Parameter]*tensor.Tensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR          float32    // Learning rate (default: 0.001)
	Betas       [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps         float32    // Term for numerical stability (default: 1e-8)
	WeightDecay float32    // L2 penalty (default: 0)
}

// NewAdam creates a new Adam optimizer.
//
// Zero-valued config fields take the defaults listed on AdamConfig.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params:      params,
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		m:           make(map[*nn.Parameter]*tensor.Tensor),
		v:           make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step using Adam algorithm.
func (a *Adam) Step() {
	a.t++

	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		m, ok := a.m[param]
		if !ok {
			m = tensor.ZerosLike(param.Tensor())
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = tensor.ZerosLike(param.Tensor())
			a.v[param] = v
		}

		gradData := grad.Data()
		mData := m.Data()
		vData := v.Data()
		paramData := param.Tensor().Data()

		for i := range paramData {
			g := gradData[i] + a.weightDecay*paramData[i]

			mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2

			paramData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrad(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// Betas returns the moment coefficients.
func (a *Adam) Betas() [2]float32 {
	return [2]float32{a.beta1, a.beta2}
}

// WeightDecay returns the L2 penalty.
func (a *Adam) WeightDecay() float32 {
	return a.weightDecay
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}

// Name returns "Adam".
func (a *Adam) Name() string {
	return "Adam"
}

// Config returns the Adam hyperparameters.
func (a *Adam) Config() map[string]any {
	return map[string]any{
		"lr":           a.lr,
		"betas":        []float32{a.beta1, a.beta2},
		"eps":          a.eps,
		"weight_decay": a.weightDecay,
	}
}

// StateDict returns the step counter and the moment buffers, keyed
// "<param>.exp_avg" and "<param>.exp_avg_sq".
func (a *Adam) StateDict() map[string]*tensor.Tensor {
	state := map[string]*tensor.Tensor{stepKey: stepTensor(a.t)}
	for _, p := range a.params {
		if m, ok := a.m[p]; ok {
			state[bufferKey(p, "exp_avg")] = m.Clone()
		}
		if v, ok := a.v[p]; ok {
			state[bufferKey(p, "exp_avg_sq")] = v.Clone()
		}
	}
	return state
}

// LoadStateDict restores state produced by StateDict.
func (a *Adam) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	for _, p := range a.params {
		if err := loadBuffer(stateDict, p, "exp_avg", a.m); err != nil {
			return err
		}
		if err := loadBuffer(stateDict, p, "exp_avg_sq", a.v); err != nil {
			return err
		}
	}
	a.t = loadStep(stateDict)
	return nil
}
