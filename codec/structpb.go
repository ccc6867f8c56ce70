package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// StructPB stores JSON-shaped values as a protobuf google.protobuf.Value.
// Accepted inputs are those structpb.NewValue understands: nil, bool, ints,
// floats, string, []byte, map[string]any and []any. Decode returns the
// equivalent AsInterface form (numbers come back as float64).
type StructPB struct{}

var _ Any = StructPB{}

func (StructPB) Encode(v any) ([]byte, error) {
	pv, err := structpb.NewValue(v)
	if err != nil {
		return nil, fmt.Errorf("structpb encode: %w", err)
	}
	return proto.Marshal(pv)
}

func (StructPB) Decode(b []byte) (any, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(b, &pv); err != nil {
		return nil, err
	}
	return pv.AsInterface(), nil
}
