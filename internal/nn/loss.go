package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/trainkit/internal/tensor"
)

// Reduction selects how per-element losses collapse to a scalar.
type Reduction int

const (
	// ReductionSum adds all per-element losses.
	ReductionSum Reduction = iota
	// ReductionMean averages all per-element losses.
	ReductionMean
)

// String returns "sum" or "mean".
func (r Reduction) String() string {
	switch r {
	case ReductionSum:
		return "sum"
	case ReductionMean:
		return "mean"
	default:
		return fmt.Sprintf("Reduction(%d)", int(r))
	}
}

// ParseReduction maps "sum" or "mean" to a Reduction.
func ParseReduction(s string) (Reduction, error) {
	switch s {
	case "sum":
		return ReductionSum, nil
	case "mean":
		return ReductionMean, nil
	default:
		return 0, fmt.Errorf("unknown reduction %q", s)
	}
}

// Loss is a loss function over prediction/target tensors of equal shape.
type Loss interface {
	// Forward returns the reduced loss.
	Forward(predictions, targets *tensor.Tensor) (float32, error)

	// Backward returns the gradient of the reduced loss with respect to
	// predictions.
	Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error)

	// Reduction reports how the loss is reduced.
	Reduction() Reduction

	// Name returns the loss name used in logs and checkpoints.
	Name() string
}

// elementwise holds the shared reduction plumbing for element-wise losses.
type elementwise struct {
	reduction Reduction
	value     func(p, t float32) float64
	grad      func(p, t float32) float32
}

func (e *elementwise) forward(name string, predictions, targets *tensor.Tensor) (float32, error) {
	if err := checkShapes(name, predictions, targets); err != nil {
		return 0, err
	}
	p, t := predictions.Data(), targets.Data()
	var sum float64
	for i := range p {
		sum += e.value(p[i], t[i])
	}
	if e.reduction == ReductionMean {
		sum /= float64(len(p))
	}
	return float32(sum), nil
}

func (e *elementwise) backward(name string, predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkShapes(name, predictions, targets); err != nil {
		return nil, err
	}
	out := tensor.ZerosLike(predictions)
	p, t, g := predictions.Data(), targets.Data(), out.Data()
	scale := float32(1)
	if e.reduction == ReductionMean {
		scale = 1 / float32(len(p))
	}
	for i := range p {
		g[i] = e.grad(p[i], t[i]) * scale
	}
	return out, nil
}

func checkShapes(name string, predictions, targets *tensor.Tensor) error {
	if !predictions.Shape().Equal(targets.Shape()) {
		return fmt.Errorf("%w: %s predictions %v, targets %v",
			ErrShapeMismatch, name, predictions.Shape(), targets.Shape())
	}
	return nil
}

// MSELoss computes squared error, (predictions - targets)², reduced by
// sum or mean.
//
// Example:
//
//	mse := nn.NewMSELoss(nn.ReductionMean)
//	loss, err := mse.Forward(predictions, targets)
type MSELoss struct {
	elementwise
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss(reduction Reduction) *MSELoss {
	return &MSELoss{elementwise{
		reduction: reduction,
		value: func(p, t float32) float64 {
			d := float64(p - t)
			return d * d
		},
		grad: func(p, t float32) float32 { return 2 * (p - t) },
	}}
}

// Forward computes the reduced squared error.
func (m *MSELoss) Forward(predictions, targets *tensor.Tensor) (float32, error) {
	return m.forward(m.Name(), predictions, targets)
}

// Backward returns 2(p - t), scaled by 1/N for mean reduction.
func (m *MSELoss) Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	return m.backward(m.Name(), predictions, targets)
}

// Reduction reports the reduction mode.
func (m *MSELoss) Reduction() Reduction { return m.reduction }

// Name returns "MSELoss".
func (m *MSELoss) Name() string { return "MSELoss" }

// L1Loss computes absolute error |predictions - targets|.
type L1Loss struct {
	elementwise
}

// NewL1Loss creates a new L1 loss function.
func NewL1Loss(reduction Reduction) *L1Loss {
	return &L1Loss{elementwise{
		reduction: reduction,
		value: func(p, t float32) float64 {
			return math.Abs(float64(p - t))
		},
		// Subgradient 0 at p == t.
		grad: func(p, t float32) float32 {
			switch {
			case p > t:
				return 1
			case p < t:
				return -1
			default:
				return 0
			}
		},
	}}
}

// Forward computes the reduced absolute error.
func (l *L1Loss) Forward(predictions, targets *tensor.Tensor) (float32, error) {
	return l.forward(l.Name(), predictions, targets)
}

// Backward returns sign(p - t), scaled by 1/N for mean reduction.
func (l *L1Loss) Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	return l.backward(l.Name(), predictions, targets)
}

// Reduction reports the reduction mode.
func (l *L1Loss) Reduction() Reduction { return l.reduction }

// Name returns "L1Loss".
func (l *L1Loss) Name() string { return "L1Loss" }

// BCEWithLogitsLoss combines a sigmoid with binary cross entropy.
//
// Per element, with logit x and target y in [0, 1]:
//
//	loss = max(x, 0) - x*y + log(1 + exp(-|x|))
//
// which is the numerically stable form of
// -[y*log(σ(x)) + (1-y)*log(1-σ(x))].
type BCEWithLogitsLoss struct {
	elementwise
}

// NewBCEWithLogitsLoss creates a new BCE-with-logits loss function.
func NewBCEWithLogitsLoss(reduction Reduction) *BCEWithLogitsLoss {
	return &BCEWithLogitsLoss{elementwise{
		reduction: reduction,
		value: func(p, t float32) float64 {
			x, y := float64(p), float64(t)
			return math.Max(x, 0) - x*y + math.Log1p(math.Exp(-math.Abs(x)))
		},
		grad: func(p, t float32) float32 {
			return float32(sigmoid(float64(p))) - t
		},
	}}
}

// Forward computes the reduced binary cross entropy on logits.
func (b *BCEWithLogitsLoss) Forward(predictions, targets *tensor.Tensor) (float32, error) {
	return b.forward(b.Name(), predictions, targets)
}

// Backward returns σ(x) - y, scaled by 1/N for mean reduction.
func (b *BCEWithLogitsLoss) Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	return b.backward(b.Name(), predictions, targets)
}

// Reduction reports the reduction mode.
func (b *BCEWithLogitsLoss) Reduction() Reduction { return b.reduction }

// Name returns "BCEWithLogitsLoss".
func (b *BCEWithLogitsLoss) Name() string { return "BCEWithLogitsLoss" }

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
