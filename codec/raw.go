package codec

import "fmt"

// Bytes stores []byte values unchanged. Any other value is rejected on Encode.
type Bytes struct{}

var _ Any = Bytes{}

func (Bytes) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("bytes codec: unsupported value %T", v)
	}
	return b, nil
}
func (Bytes) Decode(b []byte) (any, error) { return b, nil }

// String stores string values as UTF-8 bytes without validation.
type String struct{}

var _ Any = String{}

func (String) Encode(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("string codec: unsupported value %T", v)
	}
	return []byte(s), nil
}
func (String) Decode(b []byte) (any, error) { return string(b), nil }

// ByName returns the codec registered under name: json, cbor, msgpack,
// structpb, bytes or string.
func ByName(name string) (Any, error) {
	switch name {
	case "", "json":
		return JSON[any]{}, nil
	case "cbor":
		return NewCBOR[any](false)
	case "msgpack":
		return Msgpack[any]{}, nil
	case "structpb", "protobuf":
		return StructPB{}, nil
	case "bytes":
		return Bytes{}, nil
	case "string":
		return String{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
