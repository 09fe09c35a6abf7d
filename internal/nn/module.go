// Package nn implements the neural network pieces trainkit needs:
// parameters, a dense layer and the loss modules selected by the
// experiment factories.
package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/trainkit/internal/tensor"
)

// ErrShapeMismatch is returned when two tensors that must agree in shape do not.
var ErrShapeMismatch = errors.New("shape mismatch")

// Module is the base interface for all components with trainable parameters.
type Module interface {
	// Parameters returns all trainable parameters of this module.
	//
	// Names must be unique within the module; they key the state dict.
	Parameters() []*Parameter
}

// StateDict returns the module's parameter tensors keyed by name.
//
// The tensors are shared with the module, not copied.
func StateDict(m Module) map[string]*tensor.Tensor {
	params := m.Parameters()
	dict := make(map[string]*tensor.Tensor, len(params))
	for _, p := range params {
		dict[p.Name()] = p.Tensor()
	}
	return dict
}

// LoadStateDict copies tensors from dict into the module's parameters.
//
// Every parameter must be present in dict with a matching shape.
// Extra entries in dict are ignored.
func LoadStateDict(m Module, dict map[string]*tensor.Tensor) error {
	for _, p := range m.Parameters() {
		src, ok := dict[p.Name()]
		if !ok {
			return fmt.Errorf("missing parameter %q in state dict", p.Name())
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("%w: parameter %q expects %v, state dict has %v",
				ErrShapeMismatch, p.Name(), p.Tensor().Shape(), src.Shape())
		}
		copy(p.Tensor().Data(), src.Data())
	}
	return nil
}
