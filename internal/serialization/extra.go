package serialization

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// encodeExtra marshals caller metadata as a google.protobuf.Struct.
//
// Values must be nil, bool, a Go number, string, []byte, []any or
// map[string]any (see structpb.NewValue).
func encodeExtra(extra map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(extra)
	if err != nil {
		return nil, fmt.Errorf("failed to convert extra metadata: %w", err)
	}
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extra metadata: %w", err)
	}
	return b, nil
}

// decodeExtra is the inverse of encodeExtra. Numbers come back as float64.
func decodeExtra(b []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extra metadata: %w", err)
	}
	return s.AsMap(), nil
}
