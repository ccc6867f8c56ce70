// Package stablehash derives cache ids from structured keys.
//
// A Hasher must be deterministic for structurally equal inputs: []any{"a", 1}
// and []any{"a", 1} built at different call sites hash the same, and map key
// order never matters. Nothing else is promised; in particular values holding
// funcs or channels hash by their printed form.
package stablehash

import (
	"fmt"

	"github.com/unkn0wn-root/swrcache/codec"
	"github.com/unkn0wn-root/swrcache/internal/util"
)

// Prefix marks hashed ids so they never collide with plain string keys that
// happen to look like a digest.
const Prefix = "@"

// Hasher turns a key value into a stable id.
type Hasher func(v any) string

var (
	cborDet = codec.MustCBOR[any](true)
	mpack   = codec.Msgpack[any]{}
)

// CBOR hashes the RFC 8949 core-deterministic CBOR encoding of v. Default hasher.
func CBOR(v any) string {
	b, err := cborDet.Encode(v)
	if err != nil {
		return fallback(v)
	}
	return Prefix + util.Digest(b)
}

// Msgpack hashes the msgpack encoding of v with sorted map keys. Ids differ
// from CBOR ids, so a process must stick to one hasher.
func Msgpack(v any) string {
	b, err := mpack.Encode(v)
	if err != nil {
		return fallback(v)
	}
	return Prefix + util.Digest(b)
}

func fallback(v any) string {
	return Prefix + util.DigestString(fmt.Sprintf("%T|%#v", v, v))
}

// ByName returns the hasher registered under name: cbor (default) or msgpack.
func ByName(name string) (Hasher, error) {
	switch name {
	case "", "cbor":
		return CBOR, nil
	case "msgpack":
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("stablehash: unknown hasher %q", name)
	}
}
