package serialization_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainkit/internal/serialization"
	"github.com/born-ml/trainkit/internal/tensor"
)

func sampleTensors(t *testing.T) map[string]*tensor.Tensor {
	t.Helper()
	w, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{-0.5, 0.25}, tensor.Shape{2})
	require.NoError(t, err)
	return map[string]*tensor.Tensor{"model.weight": w, "model.bias": b}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	header := serialization.Header{
		Epoch:           7,
		Step:            700,
		Loss:            0.5,
		BestLoss:        0.25,
		OptimizerName:   "Adam",
		OptimizerConfig: map[string]any{"lr": 0.001},
	}
	extra := map[string]any{"expid": "20261018120000", "batch_size": 16, "tags": []any{"a", "b"}}

	n, err := serialization.Write(&buf, header, sampleTensors(t), extra)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	ckpt, err := serialization.Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	h := ckpt.Header
	assert.Equal(t, serialization.FormatVersion, h.FormatVersion)
	assert.Equal(t, 7, h.Epoch)
	assert.Equal(t, int64(700), h.Step)
	assert.Equal(t, serialization.Metric(0.25), h.BestLoss)
	assert.Equal(t, "Adam", h.OptimizerName)
	assert.Equal(t, 0.001, h.OptimizerConfig["lr"])
	assert.False(t, h.CreatedAt.IsZero())
	_, err = uuid.Parse(h.ID)
	require.NoError(t, err)

	require.Len(t, ckpt.Tensors, 2)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, ckpt.Tensors["model.weight"].Data())
	assert.True(t, ckpt.Tensors["model.weight"].Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{-0.5, 0.25}, ckpt.Tensors["model.bias"].Data())

	assert.Equal(t, "20261018120000", ckpt.Extra["expid"])
	assert.Equal(t, 16.0, ckpt.Extra["batch_size"])
	assert.Equal(t, []any{"a", "b"}, ckpt.Extra["tags"])
}

func TestWrite_TensorTableIsSorted(t *testing.T) {
	var buf bytes.Buffer
	_, err := serialization.Write(&buf, serialization.Header{}, sampleTensors(t), nil)
	require.NoError(t, err)

	h, err := serialization.ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, h.Tensors, 2)
	assert.Equal(t, "model.bias", h.Tensors[0].Name)
	assert.Equal(t, "model.weight", h.Tensors[1].Name)
	assert.Nil(t, h.Extra)
}

func TestWrite_DataSectionAligned(t *testing.T) {
	var buf bytes.Buffer
	_, err := serialization.Write(&buf, serialization.Header{}, sampleTensors(t), nil)
	require.NoError(t, err)

	raw := buf.Bytes()
	headerSize := binary.LittleEndian.Uint64(raw[16:24])
	dataSize := binary.LittleEndian.Uint64(raw[24:32])
	dataStart := len(raw) - int(dataSize)

	assert.Equal(t, 0, dataStart%serialization.HeaderAlignment)
	assert.GreaterOrEqual(t, dataStart, serialization.FixedHeaderSize+int(headerSize))
}

func TestRead_DetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	_, err := serialization.Write(&buf, serialization.Header{}, sampleTensors(t), nil)
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, err = serialization.Read(bytes.NewReader(raw))
	require.ErrorIs(t, err, serialization.ErrChecksumMismatch)
}

func TestRead_Truncated(t *testing.T) {
	var buf bytes.Buffer
	_, err := serialization.Write(&buf, serialization.Header{}, sampleTensors(t), nil)
	require.NoError(t, err)

	raw := buf.Bytes()
	_, err = serialization.Read(bytes.NewReader(raw[:len(raw)-4]))
	require.ErrorIs(t, err, serialization.ErrOutOfBounds)
}

// rawCheckpoint assembles a file around an arbitrary header with a valid
// data checksum, bypassing Write.
func rawCheckpoint(t *testing.T, header serialization.Header, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	fixed := make([]byte, serialization.FixedHeaderSize)
	copy(fixed, serialization.MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], serialization.FormatVersion)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	sum := serialization.ComputeChecksum(data)
	copy(fixed[serialization.ChecksumOffset:], sum[:])

	pos := serialization.FixedHeaderSize + len(headerJSON)
	pad := (serialization.HeaderAlignment - pos%serialization.HeaderAlignment) % serialization.HeaderAlignment

	out := append(fixed, headerJSON...)
	out = append(out, make([]byte, pad)...)
	return append(out, data...)
}

func TestRead_RejectsHostileTensorTable(t *testing.T) {
	tests := []struct {
		name string
		meta serialization.TensorMeta
		want error
	}{
		{
			name: "offset and size overflow",
			meta: serialization.TensorMeta{Name: "w", DType: serialization.DTypeFloat32, Shape: []int{2}, Offset: 1 << 62, Size: 1 << 62},
			want: serialization.ErrOutOfBounds,
		},
		{
			name: "size disagrees with shape",
			meta: serialization.TensorMeta{Name: "w", DType: serialization.DTypeFloat32, Shape: []int{3}, Offset: 0, Size: 8},
			want: serialization.ErrInvalidTensorShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawCheckpoint(t, serialization.Header{Tensors: []serialization.TensorMeta{tt.meta}}, make([]byte, 16))

			require.NotPanics(t, func() {
				_, err := serialization.Read(bytes.NewReader(raw))
				require.ErrorIs(t, err, tt.want)
			})
		})
	}
}

func TestRead_InvalidMagicAndVersion(t *testing.T) {
	var buf bytes.Buffer
	_, err := serialization.Write(&buf, serialization.Header{}, nil, nil)
	require.NoError(t, err)

	bad := bytes.Clone(buf.Bytes())
	copy(bad, "NOPE")
	_, err = serialization.Read(bytes.NewReader(bad))
	require.ErrorIs(t, err, serialization.ErrInvalidMagic)

	bad = bytes.Clone(buf.Bytes())
	binary.LittleEndian.PutUint32(bad[4:8], 99)
	_, err = serialization.Read(bytes.NewReader(bad))
	require.ErrorIs(t, err, serialization.ErrUnsupportedVersion)
}

func TestWriteRead_NonFiniteLoss(t *testing.T) {
	var buf bytes.Buffer
	header := serialization.Header{
		Loss:     serialization.Metric(math.NaN()),
		BestLoss: serialization.Metric(math.Inf(1)),
	}
	_, err := serialization.Write(&buf, header, nil, nil)
	require.NoError(t, err)

	ckpt, err := serialization.Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(ckpt.Header.Loss)))
	assert.True(t, math.IsInf(float64(ckpt.Header.BestLoss), 1))
}

func TestMetric_JSON(t *testing.T) {
	tests := []struct {
		value serialization.Metric
		json  string
	}{
		{0.5, `0.5`},
		{serialization.Metric(math.Inf(1)), `"+Inf"`},
		{serialization.Metric(math.Inf(-1)), `"-Inf"`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.value)
		require.NoError(t, err)
		assert.JSONEq(t, tt.json, string(b))

		var got serialization.Metric
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, tt.value, got)
	}

	var m serialization.Metric
	require.Error(t, json.Unmarshal([]byte(`"huge"`), &m))
}

func TestWrite_RejectsUnsupportedExtra(t *testing.T) {
	var buf bytes.Buffer
	_, err := serialization.Write(&buf, serialization.Header{}, nil, map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
