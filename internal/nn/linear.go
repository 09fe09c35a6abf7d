package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/trainkit/internal/parallel"
	"github.com/born-ml/trainkit/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Gradients are computed explicitly by Backward and accumulated on the
// parameters, ready for an optimizer Step.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
	par         parallel.Config
}

// NewLinear creates a new Linear layer with Xavier/Glorot uniform weights
// and zero biases. rng may be nil, in which case a fixed seed is used.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	if rng == nil {
		rng = rand.New(rand.NewPCG(42, 0))
	}

	weight := tensor.New(tensor.Shape{outFeatures, inFeatures})
	limit := math.Sqrt(6.0 / float64(inFeatures+outFeatures))
	for i := range weight.Data() {
		weight.Data()[i] = float32((rng.Float64()*2 - 1) * limit)
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", tensor.New(tensor.Shape{outFeatures})),
		par:         parallel.DefaultConfig(),
	}
}

// SetParallel replaces the worker configuration used by Forward and Backward.
func (l *Linear) SetParallel(cfg parallel.Config) {
	l.par = cfg
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Forward computes x @ W.T + b for x of shape [batch_size, in_features].
func (l *Linear) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	batch, err := l.checkInput(input)
	if err != nil {
		return nil, err
	}

	out := tensor.New(tensor.Shape{batch, l.outFeatures})
	x, w, b, y := input.Data(), l.weight.Tensor().Data(), l.bias.Tensor().Data(), out.Data()
	parallel.For(batch, l.par, func(n int) {
		row := x[n*l.inFeatures : (n+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			sum := b[o]
			wr := w[o*l.inFeatures : (o+1)*l.inFeatures]
			for i, v := range row {
				sum += v * wr[i]
			}
			y[n*l.outFeatures+o] = sum
		}
	})
	return out, nil
}

// Backward accumulates dL/dW and dL/db given the layer input and dL/dy,
// and returns dL/dx.
func (l *Linear) Backward(input, gradOutput *tensor.Tensor) (*tensor.Tensor, error) {
	batch, err := l.checkInput(input)
	if err != nil {
		return nil, err
	}
	if !gradOutput.Shape().Equal(tensor.Shape{batch, l.outFeatures}) {
		return nil, fmt.Errorf("%w: Linear gradient %v, expected [%d %d]",
			ErrShapeMismatch, gradOutput.Shape(), batch, l.outFeatures)
	}

	gradW := tensor.ZerosLike(l.weight.Tensor())
	gradB := tensor.ZerosLike(l.bias.Tensor())
	gradIn := tensor.ZerosLike(input)

	x, w, g := input.Data(), l.weight.Tensor().Data(), gradOutput.Data()
	gw, gb, gx := gradW.Data(), gradB.Data(), gradIn.Data()
	// Weight and bias rows are owned per output unit, input rows per sample,
	// so the two passes never share a write.
	parallel.For(l.outFeatures, l.par, func(o int) {
		for n := 0; n < batch; n++ {
			dy := g[n*l.outFeatures+o]
			gb[o] += dy
			for i := 0; i < l.inFeatures; i++ {
				gw[o*l.inFeatures+i] += dy * x[n*l.inFeatures+i]
			}
		}
	})
	parallel.For(batch, l.par, func(n int) {
		for o := 0; o < l.outFeatures; o++ {
			dy := g[n*l.outFeatures+o]
			for i := 0; i < l.inFeatures; i++ {
				gx[n*l.inFeatures+i] += dy * w[o*l.inFeatures+i]
			}
		}
	})

	if err := l.weight.AccumulateGrad(gradW); err != nil {
		return nil, err
	}
	if err := l.bias.AccumulateGrad(gradB); err != nil {
		return nil, err
	}
	return gradIn, nil
}

func (l *Linear) checkInput(input *tensor.Tensor) (int, error) {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		return 0, fmt.Errorf("%w: Linear expects [batch, %d], got %v", ErrShapeMismatch, l.inFeatures, shape)
	}
	return shape[0], nil
}
