package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/swrcache/codec"
)

func newTestProvider(t *testing.T, cfg Config) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	cfg.Client = goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	cfg.CloseClient = true
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, mini
}

func TestNilClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRoundTripWithPrefix(t *testing.T) {
	p, mini := newTestProvider(t, Config{Prefix: "swr:"})

	p.Set("user", map[string]any{"name": "ada"})
	assert.True(t, mini.Exists("swr:user"))

	v, ok := p.Get("user")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "ada"}, v)

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestNilIsStored(t *testing.T) {
	p, _ := newTestProvider(t, Config{})
	p.Set("k", nil)

	v, ok := p.Get("k")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestTTL(t *testing.T) {
	p, mini := newTestProvider(t, Config{Prefix: "p:", TTL: time.Minute})
	p.Set("k", "v")
	assert.Equal(t, time.Minute, mini.TTL("p:k"))

	mini.FastForward(2 * time.Minute)
	_, ok := p.Get("k")
	assert.False(t, ok)
}

func TestForeignBytesAreDropped(t *testing.T) {
	p, mini := newTestProvider(t, Config{Prefix: "p:", Codec: codec.String{}})
	require.NoError(t, mini.Set("p:k", "written by someone else"))

	_, ok := p.Get("k")
	assert.False(t, ok)
	assert.False(t, mini.Exists("p:k"))
}

func TestKeysOnlyUnderPrefix(t *testing.T) {
	p, mini := newTestProvider(t, Config{Prefix: "a:", Codec: codec.String{}})
	require.NoError(t, mini.Set("b:other", "x"))
	p.Set("one", "1")
	p.Set("two", "2")

	assert.ElementsMatch(t, []string{"one", "two"}, p.Keys())

	p.Delete("one")
	assert.Equal(t, []string{"two"}, p.Keys())
}

func TestServerDownReadsAsMiss(t *testing.T) {
	p, mini := newTestProvider(t, Config{OpTimeout: 200 * time.Millisecond})
	p.Set("k", "v")
	mini.Close()

	_, ok := p.Get("k")
	assert.False(t, ok)
	assert.NotPanics(t, func() { p.Set("k", "v2") })
	assert.Empty(t, p.Keys())
}
