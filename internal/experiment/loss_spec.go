package experiment

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/trainkit/internal/nn"
)

// LossName identifies a loss function.
type LossName int

// Known losses. The zero value is invalid.
const (
	LossBCE LossName = iota + 1 // Binary cross entropy on logits
	LossMSE                     // Mean squared error
	LossL1                      // Absolute error
)

var lossNames = map[LossName]string{
	LossBCE: "bce",
	LossMSE: "mse",
	LossL1:  "l1",
}

// String returns "bce", "mse" or "l1".
func (n LossName) String() string {
	if s, ok := lossNames[n]; ok {
		return s
	}
	return fmt.Sprintf("LossName(%d)", int(n))
}

// ParseLossName matches a case-insensitive loss name. "bce" must match
// exactly; any name starting with "mse" or "l1" selects that loss.
func ParseLossName(s string) (LossName, error) {
	name := strings.ToLower(s)
	switch {
	case name == "bce":
		return LossBCE, nil
	case strings.HasPrefix(name, "mse"):
		return LossMSE, nil
	case strings.HasPrefix(name, "l1"):
		return LossL1, nil
	default:
		return 0, &UnsupportedOptionError{Kind: KindLoss, Value: s, Allowed: []string{"bce", "mse*", "l1*"}}
	}
}

// ReductionScope is the level a loss is reported at. Only ScopePixel
// averages; every other scope, including unknown tokens, sums.
type ReductionScope string

// Named scopes.
const (
	ScopeSeq   ReductionScope = "seq"   // sum over the whole sequence
	ScopeImage ReductionScope = "image" // sum per image
	ScopePixel ReductionScope = "pixel" // mean over pixels
)

// Reduction resolves the scope to a reduction mode.
func (s ReductionScope) Reduction() nn.Reduction {
	if s == ScopePixel {
		return nn.ReductionMean
	}
	return nn.ReductionSum
}

// LossSpec is the structured form of a "<name>/<scope>" loss string.
type LossSpec struct {
	Name  LossName
	Scope ReductionScope
}

// ParseLossSpec parses "<name>/<scope>", case-insensitively, e.g.
// "BCE/Seq" or "mse/pixel".
func ParseLossSpec(s string) (LossSpec, error) {
	parts := strings.Split(strings.ToLower(s), "/")
	if len(parts) != 2 {
		return LossSpec{}, &UnsupportedOptionError{
			Kind:    KindLoss,
			Value:   s,
			Allowed: []string{"<name>/<scope>"},
		}
	}
	name, err := ParseLossName(parts[0])
	if err != nil {
		return LossSpec{}, err
	}
	return LossSpec{Name: name, Scope: ReductionScope(parts[1])}, nil
}

// MustParseLossSpec is ParseLossSpec that panics on error. Intended for
// constants and tests.
func MustParseLossSpec(s string) LossSpec {
	spec, err := ParseLossSpec(s)
	if err != nil {
		panic(err)
	}
	return spec
}

// Validate reports whether the spec names a known loss.
func (s LossSpec) Validate() error {
	if _, ok := lossNames[s.Name]; !ok {
		return &UnsupportedOptionError{Kind: KindLoss, Value: s.Name.String(), Allowed: []string{"bce", "mse", "l1"}}
	}
	return nil
}

// String returns the "<name>/<scope>" form.
func (s LossSpec) String() string {
	return s.Name.String() + "/" + string(s.Scope)
}

// MarshalYAML writes the spec in string form.
func (s LossSpec) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts either "bce/seq" or a mapping
// {name: bce, reduction: seq}.
func (s *LossSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		spec, err := ParseLossSpec(node.Value)
		if err != nil {
			return err
		}
		*s = spec
		return nil
	case yaml.MappingNode:
		var m struct {
			Name      string `yaml:"name"`
			Reduction string `yaml:"reduction"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		name, err := ParseLossName(m.Name)
		if err != nil {
			return err
		}
		*s = LossSpec{Name: name, Scope: ReductionScope(strings.ToLower(m.Reduction))}
		return nil
	default:
		return fmt.Errorf("line %d: loss must be a string or a mapping", node.Line)
	}
}
