package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/born-ml/trainkit/internal/tensor"
)

// ReadHeader reads and validates only the fixed header and JSON header.
//
// The data section is neither read nor checksummed.
func ReadHeader(r io.Reader) (Header, error) {
	h, _, _, err := readHeaders(r)
	return h, err
}

// Read decodes a checkpoint written by Write, verifying the checksum and
// the tensor table.
func Read(r io.Reader) (*Checkpoint, error) {
	header, dataSize, checksum, err := readHeaders(r)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, dataSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read data section: %w", err)
	}
	if int64(len(data)) != dataSize {
		return nil, fmt.Errorf("%w: data section truncated (%d of %d bytes)",
			ErrOutOfBounds, len(data), dataSize)
	}
	if err := ValidateChecksum(ComputeChecksum(data), checksum); err != nil {
		return nil, err
	}
	if err := ValidateHeader(&header, dataSize); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ckpt := &Checkpoint{
		Header:  header,
		Tensors: make(map[string]*tensor.Tensor, len(header.Tensors)),
	}
	for _, meta := range header.Tensors {
		t, err := tensor.FromBytes(data[meta.Offset:meta.Offset+meta.Size], tensor.Shape(meta.Shape))
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		ckpt.Tensors[meta.Name] = t
	}
	if header.Extra != nil {
		ckpt.Extra, err = decodeExtra(data[header.Extra.Offset : header.Extra.Offset+header.Extra.Size])
		if err != nil {
			return nil, err
		}
	}
	return ckpt, nil
}

func readHeaders(r io.Reader) (Header, int64, [32]byte, error) {
	var (
		header   Header
		checksum [32]byte
	)

	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return header, 0, checksum, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if !bytes.Equal(fixed[0:4], []byte(MagicBytes)) {
		return header, 0, checksum, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return header, 0, checksum, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return header, 0, checksum, ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if dataSize > 1<<62 {
		return header, 0, checksum, fmt.Errorf("%w: data size %d", ErrOutOfBounds, dataSize)
	}
	copy(checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return header, 0, checksum, fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return header, 0, checksum, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize bounded by MaxHeaderSize above
	pad := padding(int64(FixedHeaderSize) + int64(headerSize))
	if _, err := io.CopyN(io.Discard, r, pad); err != nil {
		return header, 0, checksum, fmt.Errorf("failed to skip header padding: %w", err)
	}

	return header, int64(dataSize), checksum, nil
}
