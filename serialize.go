package swrcache

import (
	"math"
	"reflect"

	"github.com/unkn0wn-root/swrcache/stablehash"
)

// KeyFunc is a lazy key. It reports "not ready" (a dependency is missing) by
// returning an error or panicking; either way the key serializes to the empty
// id and nothing is fetched. Plain func() any and func() (T, error) shapes are
// accepted too.
type KeyFunc func() (any, error)

// maxLazyDepth bounds lazy keys that return lazy keys.
const maxLazyDepth = 8

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Serializer derives (id, args) pairs from key descriptors.
// The zero value uses stablehash.CBOR.
type Serializer struct {
	Hash stablehash.Hasher
}

var defaultSerializer = Serializer{}

// Serialize maps a key descriptor to its cache id and fetcher args using the
// default hasher.
//
//	string              -> (s, s)
//	empty slice/array   -> ("", key)
//	other truthy value  -> (hash(key), key)
//	falsy value         -> ("", key)   nil, 0, NaN, "", false, nil pointer/map
//	lazy key            -> evaluated first; not ready -> ("", "")
//
// The empty id means "no key": fetching is disabled or paused.
func Serialize(key any) (id string, args any) {
	return defaultSerializer.Serialize(key)
}

func (s Serializer) Serialize(key any) (string, any) {
	for depth := 0; ; depth++ {
		r, lazy := evalKey(key)
		if !lazy {
			break
		}
		if !r.ready || depth == maxLazyDepth {
			return "", ""
		}
		key = r.value
	}

	rv := reflect.ValueOf(key)
	if rv.Kind() == reflect.String {
		return rv.String(), key
	}
	if !truthy(rv) {
		return "", key
	}
	h := s.Hash
	if h == nil {
		h = stablehash.CBOR
	}
	return h(key), key
}

// keyResult is the outcome of evaluating a lazy key: a value, or not ready.
type keyResult struct {
	value any
	ready bool
}

// evalKey evaluates key when it is a lazy key; lazy is false for every other
// value. A nil func is not lazy: it is a falsy key.
func evalKey(key any) (r keyResult, lazy bool) {
	switch f := key.(type) {
	case nil:
		return keyResult{}, false
	case KeyFunc:
		if f == nil {
			return keyResult{}, false
		}
		return call(func() (any, error) { return f() }), true
	case func() (any, error):
		if f == nil {
			return keyResult{}, false
		}
		return call(f), true
	case func() any:
		if f == nil {
			return keyResult{}, false
		}
		return call(func() (any, error) { return f(), nil }), true
	}

	rv := reflect.ValueOf(key)
	if rv.Kind() != reflect.Func {
		return keyResult{}, false
	}
	if rv.IsNil() {
		return keyResult{}, false
	}
	t := rv.Type()
	nullary := t.NumIn() == 0 && !t.IsVariadic()
	switch {
	case nullary && t.NumOut() == 1:
		return call(func() (any, error) { return rv.Call(nil)[0].Interface(), nil }), true
	case nullary && t.NumOut() == 2 && t.Out(1) == errorType:
		return call(func() (any, error) {
			out := rv.Call(nil)
			if err, _ := out[1].Interface().(error); err != nil {
				return nil, err
			}
			return out[0].Interface(), nil
		}), true
	default:
		// cannot be evaluated without arguments
		return keyResult{}, true
	}
}

func call(f func() (any, error)) (r keyResult) {
	defer func() {
		if recover() != nil {
			r = keyResult{}
		}
	}()
	v, err := f()
	if err != nil {
		return keyResult{}
	}
	return keyResult{value: v, ready: true}
}

// truthy mirrors what counts as "a key" for non-string values.
func truthy(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Interface, reflect.Func, reflect.UnsafePointer:
		return !rv.IsNil()
	default:
		return true
	}
}
