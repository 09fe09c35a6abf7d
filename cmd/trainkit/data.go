package main

import (
	"math/rand/v2"

	"github.com/born-ml/trainkit/experiment"
	"github.com/born-ml/trainkit/tensor"
)

// syntheticData is generated from fixed random linear weights, so the demo
// run has something learnable without external files.
type syntheticData struct {
	Inputs   [][]float32 // [num_samples, features]
	Targets  []float32   // [num_samples]
	features int
}

// newSyntheticData draws n samples. BCE gets {0,1} labels from the sign of
// the linear output; the regression losses get the noisy output itself.
func newSyntheticData(n, features int, loss experiment.LossName, rng *rand.Rand) *syntheticData {
	w := make([]float32, features)
	for i := range w {
		w[i] = float32(rng.NormFloat64())
	}
	const bias = 0.3

	d := &syntheticData{
		Inputs:   make([][]float32, n),
		Targets:  make([]float32, n),
		features: features,
	}
	for i := range n {
		x := make([]float32, features)
		y := float32(bias)
		for j := range x {
			x[j] = float32(rng.NormFloat64())
			y += w[j] * x[j]
		}
		d.Inputs[i] = x

		if loss == experiment.LossBCE {
			if y > 0 {
				d.Targets[i] = 1
			}
			continue
		}
		d.Targets[i] = y + float32(rng.NormFloat64()*0.05)
	}
	return d
}

// NumSamples returns the dataset size.
func (d *syntheticData) NumSamples() int {
	return len(d.Inputs)
}

// Batch returns samples [start, end) as [batch, features] and [batch, 1] tensors.
func (d *syntheticData) Batch(start, end int) (*tensor.Tensor, *tensor.Tensor, error) {
	n := end - start
	xs := make([]float32, 0, n*d.features)
	for _, row := range d.Inputs[start:end] {
		xs = append(xs, row...)
	}
	x, err := tensor.FromSlice(xs, tensor.Shape{n, d.features})
	if err != nil {
		return nil, nil, err
	}
	y, err := tensor.FromSlice(d.Targets[start:end], tensor.Shape{n, 1})
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Shuffle permutes samples in place.
func (d *syntheticData) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Inputs), func(i, j int) {
		d.Inputs[i], d.Inputs[j] = d.Inputs[j], d.Inputs[i]
		d.Targets[i], d.Targets[j] = d.Targets[j], d.Targets[i]
	})
}
