package codec

import "encoding/json"

// JSON encodes with encoding/json. Decoding into V=any yields map[string]any,
// []any, float64, string, bool or nil.
type JSON[V any] struct{}

var _ Any = JSON[any]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
