// Package codec converts cached values to bytes for byte-oriented providers
// (bigcache, redis). In-process providers store values as-is and never touch a codec.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Any is the codec shape byte providers need: cache values are untyped.
type Any = Codec[any]
