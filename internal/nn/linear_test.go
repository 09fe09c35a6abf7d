package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/parallel"
	"github.com/born-ml/trainkit/internal/tensor"
)

func TestLinear_ForwardBackward(t *testing.T) {
	layer := nn.NewLinear(2, 1, nil)
	copy(layer.Weight().Tensor().Data(), []float32{2, -1})
	copy(layer.Bias().Tensor().Data(), []float32{0.5})

	x := mustTensor(t, []float32{1, 1, 3, 2}, tensor.Shape{2, 2})

	y, err := layer.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 4.5}, y.Data())

	gradOut := mustTensor(t, []float32{1, 1}, tensor.Shape{2, 1})
	gradIn, err := layer.Backward(x, gradOut)
	require.NoError(t, err)

	assert.Equal(t, []float32{4, 3}, layer.Weight().Grad().Data())
	assert.Equal(t, []float32{2}, layer.Bias().Grad().Data())
	assert.Equal(t, []float32{2, -1, 2, -1}, gradIn.Data())

	// Second backward accumulates.
	_, err = layer.Backward(x, gradOut)
	require.NoError(t, err)
	assert.Equal(t, []float32{4}, layer.Bias().Grad().Data())
}

func TestLinear_RejectsBadInput(t *testing.T) {
	layer := nn.NewLinear(3, 2, nil)
	_, err := layer.Forward(tensor.New(tensor.Shape{4, 2}))
	require.ErrorIs(t, err, nn.ErrShapeMismatch)
}

func TestStateDict_RoundTrip(t *testing.T) {
	src := nn.NewLinear(3, 2, nil)
	dst := nn.NewLinear(3, 2, nil)
	dst.Weight().Tensor().Fill(0)

	require.NoError(t, nn.LoadStateDict(dst, nn.StateDict(src)))
	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())

	other := nn.NewLinear(4, 2, nil)
	err := nn.LoadStateDict(other, nn.StateDict(src))
	require.ErrorIs(t, err, nn.ErrShapeMismatch)
}

func TestParameter_ZeroGrad(t *testing.T) {
	p := nn.NewParameter("w", tensor.New(tensor.Shape{2}))
	require.NoError(t, p.AccumulateGrad(mustTensor(t, []float32{1, 2}, tensor.Shape{2})))
	require.NotNil(t, p.Grad())

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestLinear_ParallelMatchesSequential(t *testing.T) {
	const batch, in, out = 64, 5, 3

	xs := make([]float32, batch*in)
	for i := range xs {
		xs[i] = float32(i%7) - 3
	}
	gs := make([]float32, batch*out)
	for i := range gs {
		gs[i] = float32(i%5) * 0.1
	}

	run := func(cfg parallel.Config) (*nn.Linear, []float32, []float32) {
		layer := nn.NewLinear(in, out, nil)
		layer.SetParallel(cfg)
		x := mustTensor(t, append([]float32(nil), xs...), tensor.Shape{batch, in})
		y, err := layer.Forward(x)
		require.NoError(t, err)
		gx, err := layer.Backward(x, mustTensor(t, append([]float32(nil), gs...), tensor.Shape{batch, out}))
		require.NoError(t, err)
		return layer, y.Data(), gx.Data()
	}

	seqLayer, seqY, seqGX := run(parallel.Sequential())
	parLayer, parY, parGX := run(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	assert.Equal(t, seqY, parY)
	assert.Equal(t, seqGX, parGX)
	assert.Equal(t, seqLayer.Weight().Grad().Data(), parLayer.Weight().Grad().Data())
	assert.Equal(t, seqLayer.Bias().Grad().Data(), parLayer.Bias().Grad().Data())
}
