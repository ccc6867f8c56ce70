// Package bigcache stores encoded values in allegro/bigcache. Values pass
// through a codec and the wire frame; entries that fail to decode are dropped.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/codec"
	"github.com/unkn0wn-root/swrcache/internal/wire"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

type Provider struct {
	c     *bc.BigCache
	codec codec.Any
	log   swrcache.Logger
}

var (
	_ pr.Provider = (*Provider)(nil)
	_ pr.Closer   = (*Provider)(nil)
)

type Config struct {
	LifeWindow         time.Duration // entry lifetime; bigcache has no per-entry TTL
	CleanWindow        time.Duration
	Shards             int
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited

	Codec  codec.Any       // nil => codec.JSON
	Logger swrcache.Logger // nil => NopLogger
}

func New(cfg Config) (*Provider, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache: LifeWindow must be > 0")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}

	p := &Provider{c: c, codec: cfg.Codec, log: cfg.Logger}
	if p.codec == nil {
		p.codec = codec.JSON[any]{}
	}
	if p.log == nil {
		p.log = swrcache.NopLogger{}
	}
	return p, nil
}

func (p *Provider) Get(key string) (any, bool) {
	b, err := p.c.Get(key)
	if err != nil {
		if !errors.Is(err, bc.ErrEntryNotFound) {
			p.log.Warn("bigcache get failed", swrcache.Fields{"key": key, "err": err})
		}
		return nil, false
	}

	payload, null, err := wire.Decode(b)
	if err != nil {
		p.heal(key, err)
		return nil, false
	}
	if null {
		return nil, true
	}
	v, err := p.codec.Decode(payload)
	if err != nil {
		p.heal(key, err)
		return nil, false
	}
	return v, true
}

// heal drops an entry that cannot be decoded so the next read is a clean miss.
func (p *Provider) heal(key string, cause error) {
	_ = p.c.Delete(key)
	p.log.Warn("bigcache entry dropped: undecodable", swrcache.Fields{"key": key, "err": cause})
}

// Set encodes value and stores it. Encoding or storage failures are logged
// and leave any previous entry untouched.
func (p *Provider) Set(key string, value any) {
	var frame []byte
	if value == nil {
		frame = wire.EncodeNull()
	} else {
		payload, err := p.codec.Encode(value)
		if err != nil {
			p.log.Error("bigcache encode failed", swrcache.Fields{"key": key, "err": err})
			return
		}
		frame = wire.Encode(payload)
	}
	if err := p.c.Set(key, frame); err != nil {
		p.log.Error("bigcache set failed", swrcache.Fields{"key": key, "err": err})
	}
}

func (p *Provider) Delete(key string) {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		p.log.Warn("bigcache delete failed", swrcache.Fields{"key": key, "err": err})
	}
}

// Keys walks every shard; entries written concurrently may or may not appear.
func (p *Provider) Keys() []string {
	out := make([]string, 0, p.c.Len())
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			continue
		}
		out = append(out, e.Key())
	}
	return out
}

// Len reports the number of stored entries, expired ones included until the
// next clean window.
func (p *Provider) Len() int { return p.c.Len() }

func (p *Provider) Close() error {
	return p.c.Close()
}
