package stablehash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashersAreStructural(t *testing.T) {
	for name, h := range map[string]Hasher{"cbor": CBOR, "msgpack": Msgpack} {
		t.Run(name, func(t *testing.T) {
			a := h([]any{"a", "b"})
			assert.True(t, strings.HasPrefix(a, Prefix))
			assert.Equal(t, a, h([]any{"a", "b"}))
			assert.Equal(t, a, h([]string{"a", "b"}), "slice element type must not matter")
			assert.NotEqual(t, a, h([]any{"b", "a"}), "order inside arrays matters")

			m1 := map[string]any{"page": 1, "q": "go", "sort": "asc"}
			m2 := map[string]any{"sort": "asc", "q": "go", "page": 1}
			assert.Equal(t, h(m1), h(m2))
		})
	}
}

func TestHashStructs(t *testing.T) {
	type query struct {
		Path string
		Page int
	}
	assert.Equal(t, CBOR(query{"/users", 2}), CBOR(&query{"/users", 2}))
	assert.NotEqual(t, CBOR(query{"/users", 2}), CBOR(query{"/users", 3}))
}

func TestUnencodableFallsBack(t *testing.T) {
	ch := make(chan int)
	a := CBOR([]any{"k", ch})
	assert.Equal(t, a, CBOR([]any{"k", ch}))
	assert.True(t, strings.HasPrefix(a, Prefix))
}

func TestByName(t *testing.T) {
	h, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, CBOR("x"), h("x"))

	_, err = ByName("sha1")
	assert.Error(t, err)
}
