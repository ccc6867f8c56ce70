// Package memory is the default in-process provider: a map behind a RWMutex.
package memory

import (
	"sync"

	pr "github.com/unkn0wn-root/swrcache/provider"
)

type Provider struct {
	mu sync.RWMutex
	m  map[string]any
}

var _ pr.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{m: make(map[string]any)}
}

func (p *Provider) Get(key string) (any, bool) {
	p.mu.RLock()
	v, ok := p.m[key]
	p.mu.RUnlock()
	return v, ok
}

func (p *Provider) Set(key string, value any) {
	p.mu.Lock()
	p.m[key] = value
	p.mu.Unlock()
}

func (p *Provider) Delete(key string) {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
}

func (p *Provider) Keys() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.m))
	for k := range p.m {
		out = append(out, k)
	}
	p.mu.RUnlock()
	return out
}

// Len reports the number of stored keys.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}
