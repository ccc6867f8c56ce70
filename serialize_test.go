package swrcache

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unkn0wn-root/swrcache/stablehash"
)

func TestSerializeString(t *testing.T) {
	id, args := Serialize("foo")
	assert.Equal(t, "foo", id)
	assert.Equal(t, "foo", args)
}

func TestSerializeArrays(t *testing.T) {
	id, args := Serialize([]any{})
	assert.Equal(t, "", id)
	assert.Equal(t, []any{}, args)

	key := []any{"a", "b"}
	id, args = Serialize(key)
	assert.Equal(t, stablehash.CBOR(key), id)
	assert.Equal(t, key, args)

	id, _ = Serialize([2]string{"a", "b"})
	assert.Equal(t, stablehash.CBOR(key), id, "arrays hash like slices")
}

func TestSerializeFalsy(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *struct{}
	for _, key := range []any{nil, 0, 0.0, math.NaN(), "", false, uint8(0), nilMap, nilPtr} {
		id, args := Serialize(key)
		assert.Equal(t, "", id, "key %#v", key)
		if f, ok := key.(float64); ok && math.IsNaN(f) {
			continue // NaN != NaN
		}
		assert.Equal(t, key, args, "key %#v", key)
	}
}

func TestSerializeTruthyValues(t *testing.T) {
	type page struct{ N int }
	for _, key := range []any{42, true, 1.5, map[string]any{}, page{N: 2}, &page{N: 2}} {
		id, args := Serialize(key)
		assert.Equal(t, stablehash.CBOR(key), id, "key %#v", key)
		assert.Equal(t, key, args)
	}
}

type route string

func TestSerializeNamedString(t *testing.T) {
	id, args := Serialize(route("/users"))
	assert.Equal(t, "/users", id)
	assert.Equal(t, route("/users"), args)
}

func TestSerializeLazyKeys(t *testing.T) {
	cases := map[string]any{
		"KeyFunc error":  KeyFunc(func() (any, error) { return nil, errors.New("user not loaded") }),
		"KeyFunc panic":  KeyFunc(func() (any, error) { panic("nil dependency") }),
		"func() any":     func() any { panic(errors.New("boom")) },
		"typed (T, err)": func() ([]string, error) { return nil, errors.New("x") },
		"needs args":     func(int) string { return "x" },
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			id, args := Serialize(key)
			assert.Equal(t, "", id)
			assert.Equal(t, "", args)
		})
	}
}

func TestSerializeLazyKeyRecurses(t *testing.T) {
	id, args := Serialize(func() any { return []any{"a"} })
	assert.Equal(t, stablehash.CBOR([]any{"a"}), id)
	assert.Equal(t, []any{"a"}, args)

	id, args = Serialize(KeyFunc(func() (any, error) { return "/api/user", nil }))
	assert.Equal(t, "/api/user", id)
	assert.Equal(t, "/api/user", args)

	id, args = Serialize(func() ([]string, error) { return []string{"u", "1"}, nil })
	assert.Equal(t, stablehash.CBOR([]string{"u", "1"}), id)
	assert.Equal(t, []string{"u", "1"}, args)

	nested := func() any { return func() any { return "deep" } }
	id, _ = Serialize(nested)
	assert.Equal(t, "deep", id)

	// a lazy key returning a falsy value is a disabled key, not a hash
	id, args = Serialize(func() any { return nil })
	assert.Equal(t, "", id)
	assert.Nil(t, args)
}

func TestSerializeEndlessLazyKey(t *testing.T) {
	var f func() any
	f = func() any { return f }
	id, args := Serialize(f)
	assert.Equal(t, "", id)
	assert.Equal(t, "", args)
}

func TestSerializerCustomHasher(t *testing.T) {
	s := Serializer{Hash: func(any) string { return "fixed" }}
	id, _ := s.Serialize([]any{1})
	assert.Equal(t, "fixed", id)

	id, _ = s.Serialize("plain")
	assert.Equal(t, "plain", id, "strings are never hashed")
}
