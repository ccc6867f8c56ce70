package ristretto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1000, MaxCost: 100, BufferItems: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSetIsVisibleImmediately(t *testing.T) {
	p := newTestProvider(t)
	p.Set("k", "v")

	v, ok := p.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, []string{"k"}, p.Keys())

	p.Delete("k")
	_, ok = p.Get("k")
	assert.False(t, ok)
	assert.Empty(t, p.Keys())
}
