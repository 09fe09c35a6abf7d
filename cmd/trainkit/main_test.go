package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainkit/checkpoint"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "trainkit "+version+"\n", out.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"fit"}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Commands:")
}

func TestTrainThenInspect(t *testing.T) {
	logdir := t.TempDir()
	cfg := writeConfig(t, strings.Join([]string{
		"loss: mse/seq",
		"optim: adam",
		"lr: 0.05",
		"scheduler: multisteplr",
		"milestones: [2]",
		"gamma: 0.5",
		"expid: smoke",
		"logdir: " + logdir,
	}, "\n"))

	require.NoError(t, run([]string{
		"train", "-config", cfg, "-epochs", "3", "-samples", "64", "-features", "4", "-batch", "16",
	}, &bytes.Buffer{}))

	dir := filepath.Join(logdir, "smoke")
	assert.FileExists(t, filepath.Join(dir, "train.log"))
	assert.FileExists(t, filepath.Join(dir, checkpoint.LatestFile))
	assert.FileExists(t, filepath.Join(dir, checkpoint.BestFile))

	log, err := os.ReadFile(filepath.Join(dir, "train.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "epoch 3/3")

	state, err := checkpoint.Load(filepath.Join(dir, checkpoint.LatestFile))
	require.NoError(t, err)
	assert.Equal(t, 2, state.Epoch)
	assert.Equal(t, "Adam", state.OptimizerName)
	assert.Equal(t, "smoke", state.Extra["expid"])
	assert.LessOrEqual(t, state.BestLoss, state.Loss)

	var out bytes.Buffer
	require.NoError(t, run([]string{"inspect", filepath.Join(dir, checkpoint.LatestFile)}, &out))
	var header map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &header))
	assert.NotEmpty(t, header)
}

func TestTrain_Resume(t *testing.T) {
	logdir := t.TempDir()
	cfg := writeConfig(t, "loss: bce/seq\noptim: rmsprop\nlr: 0.01\nexpid: resume\nlogdir: "+logdir+"\n")
	args := []string{"train", "-config", cfg, "-samples", "32", "-features", "3", "-batch", "8"}

	require.NoError(t, run(append(args, "-epochs", "2"), &bytes.Buffer{}))
	require.NoError(t, run(append(args, "-epochs", "4", "-resume"), &bytes.Buffer{}))

	state, err := checkpoint.Load(filepath.Join(logdir, "resume", checkpoint.LatestFile))
	require.NoError(t, err)
	assert.Equal(t, 3, state.Epoch)
	assert.Equal(t, "RMSprop", state.OptimizerName)
}

func TestTrain_ResumeWithoutCheckpoint(t *testing.T) {
	cfg := writeConfig(t, "expid: fresh\nlogdir: "+t.TempDir()+"\n")
	err := run([]string{"train", "-config", cfg, "-epochs", "1", "-resume"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume")
}

func TestInspect_Usage(t *testing.T) {
	require.Error(t, run([]string{"inspect"}, &bytes.Buffer{}))
}
