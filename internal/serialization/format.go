package serialization

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Format constants.
const (
	MagicBytes      = "TKPT"
	FormatVersion   = 1
	HeaderAlignment = 64   // Data section starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Flags stored in the fixed header.
const (
	FlagHasOptimizer uint32 = 1 << 0 // bit 0: optimizer tensors included
	FlagHasExtra     uint32 = 1 << 1 // bit 1: extra metadata section present
)

// DTypeFloat32 is the only tensor element type written by this package.
const DTypeFloat32 = "float32"

// Header is the JSON header of a checkpoint file.
type Header struct {
	FormatVersion   int            `json:"format_version"`
	Version         string         `json:"version"`                    // trainkit version that wrote the file
	ID              string         `json:"id"`                         // UUID of this checkpoint
	CreatedAt       time.Time      `json:"created_at"`                 // When the file was written
	Epoch           int            `json:"epoch"`                      // Training epoch number
	Step            int64          `json:"step"`                       // Training step number
	Loss            Metric         `json:"loss"`                       // Loss value at checkpoint
	BestLoss        Metric         `json:"best_loss"`                  // Best loss seen so far
	OptimizerName   string         `json:"optimizer_name,omitempty"`   // "Adam", "RMSprop"
	OptimizerConfig map[string]any `json:"optimizer_config,omitempty"` // Optimizer hyperparameters
	Tensors         []TensorMeta   `json:"tensors"`                    // Tensor table
	Extra           *SectionMeta   `json:"extra,omitempty"`            // Extra metadata section
}

// TensorMeta describes a tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "model.weight")
	DType  string `json:"dtype"`  // Always "float32"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from start of data section
	Size   int64  `json:"size"`   // Size in bytes
}

// SectionMeta locates a byte range inside the data section.
type SectionMeta struct {
	Offset int64 `json:"offset"`
	Size   int64 `json:"size"`
}

// padding returns the bytes needed to align pos to HeaderAlignment.
func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}

// Metric is a float64 header value that may be NaN or infinite, as a
// diverged run's loss is. JSON has no literal for those, so they are
// written as the strings "NaN", "+Inf" and "-Inf".
type Metric float64

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	f := float64(m)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metric) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*m = Metric(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "NaN":
		*m = Metric(math.NaN())
	case "+Inf":
		*m = Metric(math.Inf(1))
	case "-Inf":
		*m = Metric(math.Inf(-1))
	default:
		return fmt.Errorf("invalid metric value %q", s)
	}
	return nil
}
