package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/trainkit/internal/tensor"
)

// LibraryVersion is recorded in every header.
const LibraryVersion = "0.1.0"

// Checkpoint is the decoded content of a checkpoint file.
type Checkpoint struct {
	Header  Header
	Tensors map[string]*tensor.Tensor
	Extra   map[string]any
}

// Write encodes a checkpoint to w and returns the number of bytes written.
//
// The tensor table in header is rebuilt from tensors (sorted by name).
// Empty ID and zero CreatedAt are filled in. Loss values may be NaN or
// infinite (see Metric).
//
//nolint:gocyclo,cyclop // Binary format writer, one step per section.
func Write(w io.Writer, header Header, tensors map[string]*tensor.Tensor, extra map[string]any) (int64, error) {
	header.FormatVersion = FormatVersion
	header.Version = LibraryVersion
	if header.ID == "" {
		header.ID = uuid.NewString()
	}
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return 0, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Build data section
	var data bytes.Buffer
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		t := tensors[name]
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat32,
			Shape:  []int(t.Shape().Clone()),
			Offset: int64(data.Len()),
			Size:   int64(t.ByteSize()),
		})
		data.Write(t.Bytes())
	}

	flags := uint32(0)
	if header.OptimizerName != "" {
		flags |= FlagHasOptimizer
	}
	header.Extra = nil
	if len(extra) > 0 {
		b, err := encodeExtra(extra)
		if err != nil {
			return 0, err
		}
		header.Extra = &SectionMeta{Offset: int64(data.Len()), Size: int64(len(b))}
		data.Write(b)
		flags |= FlagHasExtra
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal header: %w", err)
	}

	// Fixed header
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	checksum := ComputeChecksum(data.Bytes())
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	var written int64
	for _, section := range [][]byte{
		fixed,
		headerJSON,
		make([]byte, padding(int64(FixedHeaderSize+len(headerJSON)))),
		data.Bytes(),
	} {
		n, err := w.Write(section)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write checkpoint: %w", err)
		}
	}
	return written, nil
}
