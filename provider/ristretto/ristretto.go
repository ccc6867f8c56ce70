package ristretto

import (
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/swrcache/provider"
)

// Provider stores values in a ristretto cache. Ristretto only keeps key
// hashes, so the provider tracks live keys itself for Keys(); evicted keys are
// pruned lazily when Keys() runs.
type Provider struct {
	c    *rc.Cache
	cost func(key string, value any) int64
	ttl  time.Duration

	mu   sync.Mutex
	keys map[string]struct{}
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	TTL         time.Duration // 0 = no expiry

	// Cost of one entry; default 1 so MaxCost is an item count.
	Cost func(key string, value any) int64
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(string, any) int64 { return 1 }
	}
	return &Provider{c: c, cost: cost, ttl: cfg.TTL, keys: make(map[string]struct{})}, nil
}

func (p *Provider) Get(key string) (any, bool) {
	return p.c.Get(key)
}

// Set waits for ristretto's write buffer so the value is readable on return.
// A write refused by the admission policy is dropped.
func (p *Provider) Set(key string, value any) {
	if !p.c.SetWithTTL(key, value, p.cost(key, value), p.ttl) {
		return
	}
	p.c.Wait()
	p.mu.Lock()
	p.keys[key] = struct{}{}
	p.mu.Unlock()
}

func (p *Provider) Delete(key string) {
	p.c.Del(key)
	p.mu.Lock()
	delete(p.keys, key)
	p.mu.Unlock()
}

func (p *Provider) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.keys))
	for k := range p.keys {
		if _, ok := p.c.Get(k); !ok {
			delete(p.keys, k) // evicted or expired
			continue
		}
		out = append(out, k)
	}
	return out
}

func (p *Provider) Close() error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters; nil unless Config.Metrics was set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
