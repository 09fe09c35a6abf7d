package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/tensor"
)

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestMSELoss_Reductions(t *testing.T) {
	pred := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	target := mustTensor(t, []float32{0, 2, 5, 4}, tensor.Shape{2, 2})

	sum, err := nn.NewMSELoss(nn.ReductionSum).Forward(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, sum, 1e-6) // 1 + 0 + 4 + 0

	mean, err := nn.NewMSELoss(nn.ReductionMean).Forward(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, mean, 1e-6)
}

func TestMSELoss_Backward(t *testing.T) {
	pred := mustTensor(t, []float32{1, 3}, tensor.Shape{2})
	target := mustTensor(t, []float32{0, 5}, tensor.Shape{2})

	grad, err := nn.NewMSELoss(nn.ReductionMean).Backward(pred, target)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, -2}, grad.Data(), 1e-6) // 2(p-t)/2
}

func TestL1Loss(t *testing.T) {
	pred := mustTensor(t, []float32{1, -2, 3}, tensor.Shape{3})
	target := mustTensor(t, []float32{0, 0, 3}, tensor.Shape{3})

	l1 := nn.NewL1Loss(nn.ReductionSum)
	loss, err := l1.Forward(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, loss, 1e-6)

	grad, err := l1.Backward(pred, target)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -1, 0}, grad.Data())
	assert.Equal(t, nn.ReductionSum, l1.Reduction())
}

func TestBCEWithLogitsLoss_MatchesNaiveFormula(t *testing.T) {
	logits := []float32{-3, -0.5, 0, 0.7, 4}
	targets := []float32{0, 1, 0.5, 1, 0}

	pred := mustTensor(t, logits, tensor.Shape{5})
	target := mustTensor(t, targets, tensor.Shape{5})

	var want float64
	for i := range logits {
		s := 1 / (1 + math.Exp(-float64(logits[i])))
		y := float64(targets[i])
		want += -(y*math.Log(s) + (1-y)*math.Log(1-s))
	}

	got, err := nn.NewBCEWithLogitsLoss(nn.ReductionSum).Forward(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-5)

	gotMean, err := nn.NewBCEWithLogitsLoss(nn.ReductionMean).Forward(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, want/5, gotMean, 1e-5)
}

func TestBCEWithLogitsLoss_LargeLogitsStayFinite(t *testing.T) {
	pred := mustTensor(t, []float32{1000, -1000}, tensor.Shape{2})
	target := mustTensor(t, []float32{0, 1}, tensor.Shape{2})

	loss, err := nn.NewBCEWithLogitsLoss(nn.ReductionSum).Forward(pred, target)
	require.NoError(t, err)
	assert.False(t, math.IsInf(float64(loss), 0))
	assert.InDelta(t, 2000, loss, 1e-2)
}

func TestLoss_ShapeMismatch(t *testing.T) {
	pred := mustTensor(t, []float32{1, 2}, tensor.Shape{2})
	target := mustTensor(t, []float32{1, 2, 3}, tensor.Shape{3})

	_, err := nn.NewMSELoss(nn.ReductionSum).Forward(pred, target)
	require.ErrorIs(t, err, nn.ErrShapeMismatch)

	_, err = nn.NewL1Loss(nn.ReductionSum).Backward(pred, target)
	require.ErrorIs(t, err, nn.ErrShapeMismatch)
}

func TestParseReduction(t *testing.T) {
	r, err := nn.ParseReduction("mean")
	require.NoError(t, err)
	assert.Equal(t, nn.ReductionMean, r)
	assert.Equal(t, "mean", r.String())

	_, err = nn.ParseReduction("none")
	require.Error(t, err)
}
