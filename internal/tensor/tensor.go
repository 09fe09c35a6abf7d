// Package tensor provides the dense float32 tensor used by trainkit's
// losses, optimizers and checkpoints.
//
// Tensors are row-major and always live in host memory. There is no
// autograd here: modules compute gradients explicitly and store them on
// their parameters.
package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tensor is a dense, row-major float32 tensor.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
//
// Panics on an invalid shape; use FromSlice for untrusted input.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// Zeros is an alias of New kept for readability at call sites.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// ZerosLike creates a zero-filled tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return New(t.shape)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	buf := make([]float32, len(data))
	copy(buf, data)
	return &Tensor{shape: shape.Clone(), data: buf}, nil
}

// FromBytes decodes little-endian float32 data produced by Bytes.
func FromBytes(b []byte, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	n := shape.NumElements()
	if len(b) != n*4 {
		return nil, fmt.Errorf("byte length %d does not match shape %v (%d bytes)", len(b), shape, n*4)
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return &Tensor{shape: shape.Clone(), data: data}, nil
}

// Shape returns the tensor dimensions. The returned slice must not be modified.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying buffer. Writes are visible to the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// ByteSize returns the size of the encoded tensor in bytes.
func (t *Tensor) ByteSize() int {
	return len(t.data) * 4
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float32) {
	for i := range t.data {
		t.data[i] = v
	}
}

// Bytes encodes the tensor data as little-endian float32.
func (t *Tensor) Bytes() []byte {
	b := make([]byte, len(t.data)*4)
	for i, v := range t.data {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// String returns a short description for logs and errors.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v)", t.shape)
}
