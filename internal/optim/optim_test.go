package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainkit/internal/nn"
	"github.com/born-ml/trainkit/internal/optim"
	"github.com/born-ml/trainkit/internal/tensor"
)

// newParam creates a single-element parameter x with gradient g.
func newParam(t *testing.T, x, g float32) *nn.Parameter {
	t.Helper()
	data, err := tensor.FromSlice([]float32{x}, tensor.Shape{1})
	require.NoError(t, err)
	p := nn.NewParameter("x", data)
	if g != 0 {
		grad, err := tensor.FromSlice([]float32{g}, tensor.Shape{1})
		require.NoError(t, err)
		p.SetGrad(grad)
	}
	return p
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	param := newParam(t, 2.0, 1.0)
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})

	adam.Step()

	// Bias-corrected first step: m_hat = g, v_hat = g², update = lr.
	assert.InDelta(t, 1.9, param.Tensor().Data()[0], 1e-6)
	assert.Equal(t, 1, adam.GetTimestep())
}

func TestAdam_Defaults(t *testing.T) {
	adam := optim.NewAdam(nil, optim.AdamConfig{})
	assert.InDelta(t, 0.001, adam.GetLR(), 1e-9)
	assert.Equal(t, [2]float32{0.9, 0.999}, adam.Betas())
	assert.Equal(t, "Adam", adam.Name())
}

func TestAdam_WeightDecayActsAsGradient(t *testing.T) {
	param := newParam(t, 2.0, 0)
	param.SetGrad(tensor.New(tensor.Shape{1}))
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1, WeightDecay: 0.5})

	adam.Step()

	// g = 0 + 0.5*2 = 1, so the first step is again exactly lr.
	assert.InDelta(t, 1.9, param.Tensor().Data()[0], 1e-6)
}

func TestAdam_SkipsParamsWithoutGrad(t *testing.T) {
	param := newParam(t, 2.0, 0)
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})

	adam.Step()
	assert.Equal(t, float32(2.0), param.Tensor().Data()[0])
}

func TestAdam_StateDictRoundTrip(t *testing.T) {
	param := newParam(t, 2.0, 1.0)
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})
	adam.Step()
	adam.Step()

	state := adam.StateDict()
	require.Contains(t, state, "x.exp_avg")
	require.Contains(t, state, "x.exp_avg_sq")

	restored := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})
	require.NoError(t, restored.LoadStateDict(state))
	assert.Equal(t, 2, restored.GetTimestep())
	assert.Equal(t, state["x.exp_avg"].Data(), restored.StateDict()["x.exp_avg"].Data())
}

func TestAdam_StepCounterExactPastFloat32Precision(t *testing.T) {
	param := newParam(t, 2.0, 1.0)
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{})
	adam.Step()

	// 2^25 + 3 is not representable as a single float32.
	const steps = 1<<25 + 3
	state := adam.StateDict()
	require.Equal(t, []float32{0, 1}, state["step"].Data())
	step, err := tensor.FromSlice([]float32{steps >> 16, steps & 0xFFFF}, tensor.Shape{2})
	require.NoError(t, err)
	state["step"] = step

	restored := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{})
	require.NoError(t, restored.LoadStateDict(state))
	assert.Equal(t, steps, restored.GetTimestep())
	assert.Equal(t, state["step"].Data(), restored.StateDict()["step"].Data())
}

func TestRMSprop_FirstStep(t *testing.T) {
	param := newParam(t, 2.0, 1.0)
	rms := optim.NewRMSprop([]*nn.Parameter{param}, optim.RMSpropConfig{LR: 0.01, Alpha: 0.99})

	rms.Step()

	// v = 0.01, sqrt(v) = 0.1, update = 0.01 * 1 / 0.1 = 0.1.
	assert.InDelta(t, 1.9, param.Tensor().Data()[0], 1e-5)
	assert.Equal(t, "RMSprop", rms.Name())
	assert.InDelta(t, 0.99, rms.Alpha(), 1e-9)
}

func TestRMSprop_StateDictRoundTrip(t *testing.T) {
	param := newParam(t, 1.0, 0.5)
	rms := optim.NewRMSprop([]*nn.Parameter{param}, optim.RMSpropConfig{})
	rms.Step()

	restored := optim.NewRMSprop([]*nn.Parameter{param}, optim.RMSpropConfig{})
	require.NoError(t, restored.LoadStateDict(rms.StateDict()))
	assert.Equal(t, rms.StateDict()["x.square_avg"].Data(), restored.StateDict()["x.square_avg"].Data())
}

func TestZeroGrad(t *testing.T) {
	param := newParam(t, 1.0, 5.0)
	opt := optim.NewRMSprop([]*nn.Parameter{param}, optim.RMSpropConfig{})

	opt.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestMultiStepLR_DecaysAtMilestones(t *testing.T) {
	adam := optim.NewAdam(nil, optim.AdamConfig{LR: 0.1})
	sched := optim.NewMultiStepLR(adam, []int{4, 2, 2}, 0.5)

	assert.Equal(t, []int{2, 2, 4}, sched.Milestones())

	want := []float32{0.1, 0.025, 0.025, 0.0125, 0.0125}
	for i, lr := range want {
		sched.Step()
		assert.InDelta(t, lr, sched.GetLR(), 1e-7, "epoch %d", i+1)
	}
	assert.Equal(t, 5, sched.LastEpoch())
}

func TestMultiStepLR_SetLastEpoch(t *testing.T) {
	adam := optim.NewAdam(nil, optim.AdamConfig{LR: 1})
	sched := optim.NewMultiStepLR(adam, []int{3, 6}, 0.1)

	sched.SetLastEpoch(7)
	assert.InDelta(t, 0.01, adam.GetLR(), 1e-7)
	assert.Equal(t, 7, sched.LastEpoch())

	sched.SetLastEpoch(0)
	assert.InDelta(t, 1, adam.GetLR(), 1e-7)
}
