package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/codec"
	"github.com/unkn0wn-root/swrcache/env"
	"github.com/unkn0wn-root/swrcache/genstore"
	"github.com/unkn0wn-root/swrcache/provider"
	"github.com/unkn0wn-root/swrcache/provider/bigcache"
	"github.com/unkn0wn-root/swrcache/provider/memory"
	"github.com/unkn0wn-root/swrcache/provider/redis"
	"github.com/unkn0wn-root/swrcache/provider/ristretto"
	"github.com/unkn0wn-root/swrcache/stablehash"
)

// Built is a provider plus the Options to Initialize it with. Close releases
// what Build opened, in reverse order.
type Built struct {
	Provider provider.Provider
	Options  swrcache.Options

	closers []func() error
}

func (b *Built) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Build creates the configured provider, generation store and environment
// listeners. log and hooks may be nil.
func (c *Config) Build(log swrcache.Logger, hooks swrcache.Hooks) (*Built, error) {
	if log == nil {
		log = swrcache.NopLogger{}
	}
	b := &Built{}
	fail := func(err error) (*Built, error) {
		_ = b.Close()
		return nil, err
	}

	cd, err := codec.ByName(c.Codec)
	if err != nil {
		return fail(err)
	}
	if c.MaxValue > 0 {
		cd = codec.Limit[any]{Inner: cd, MaxDecode: c.MaxValue}
	}
	hasher, err := stablehash.ByName(c.Hasher)
	if err != nil {
		return fail(err)
	}

	var rdb goredis.UniversalClient
	switch c.Provider.Kind {
	case "memory":
		b.Provider = memory.New()
	case "ristretto":
		r := c.Provider.Ristretto
		p, err := ristretto.New(ristretto.Config{
			NumCounters: r.NumCounters,
			MaxCost:     r.MaxCost,
			BufferItems: r.BufferItems,
			Metrics:     r.Metrics,
			TTL:         r.TTL,
		})
		if err != nil {
			return fail(err)
		}
		b.Provider = p
		b.closers = append(b.closers, p.Close)
	case "bigcache":
		bcfg := c.Provider.Bigcache
		p, err := bigcache.New(bigcache.Config{
			LifeWindow:         bcfg.LifeWindow,
			CleanWindow:        bcfg.CleanWindow,
			Shards:             bcfg.Shards,
			MaxEntrySize:       bcfg.MaxEntrySize,
			HardMaxCacheSizeMB: bcfg.HardMaxCacheSizeMB,
			Codec:              cd,
			Logger:             log,
		})
		if err != nil {
			return fail(err)
		}
		b.Provider = p
		b.closers = append(b.closers, p.Close)
	case "redis":
		rc := c.Provider.Redis
		rdb = goredis.NewClient(&goredis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		b.closers = append(b.closers, rdb.Close)
		p, err := redis.New(redis.Config{
			Client:    rdb,
			Prefix:    rc.Prefix,
			TTL:       rc.TTL,
			OpTimeout: rc.OpTimeout,
			Codec:     cd,
			Logger:    log,
		})
		if err != nil {
			return fail(err)
		}
		b.Provider = p
	default:
		return fail(fmt.Errorf("unknown provider %q", c.Provider.Kind))
	}

	var gens genstore.GenStore
	switch c.GenStore.Kind {
	case "redis":
		if rdb == nil {
			return fail(errors.New("genstore.kind=redis requires provider.kind=redis"))
		}
		gens = genstore.NewRedisGenStore(genstore.RedisConfig{
			Client:    rdb,
			Namespace: c.Provider.Redis.Prefix,
			TTL:       c.GenStore.TTL,
		})
	default:
		gens = genstore.NewLocalGenStore(c.GenStore.CleanupInterval, c.GenStore.Retention)
	}
	b.closers = append(b.closers, func() error { return gens.Close(context.Background()) })

	focus, err := c.Env.Focus.listener(log)
	if err != nil {
		return fail(fmt.Errorf("env.focus: %w", err))
	}
	reconnect, err := c.Env.Reconnect.listener(log)
	if err != nil {
		return fail(fmt.Errorf("env.reconnect: %w", err))
	}

	q := swrcache.NewQueue(log)
	b.closers = append(b.closers, func() error { q.Close(); return nil })

	b.Options = swrcache.Options{
		InitFocus:     focus,
		InitReconnect: reconnect,
		Headless:      c.Env.Headless,
		Scheduler:     q,
		Logger:        log,
		Hooks:         hooks,
		Hasher:        hasher,
		GenStore:      gens,
	}
	return b, nil
}

// listener combines the configured signals and file watch into one source.
// Nothing configured yields nil, which Initialize treats as unsupported.
func (s SourceConfig) listener(log swrcache.Logger) (swrcache.EnvListener, error) {
	var sources []swrcache.EnvListener
	if len(s.Signals) > 0 {
		sigs := make([]os.Signal, 0, len(s.Signals))
		for _, name := range s.Signals {
			sig, err := lookupSignal(name)
			if err != nil {
				return nil, err
			}
			sigs = append(sigs, sig)
		}
		sources = append(sources, env.Signal(sigs...))
	}
	if s.File != "" {
		sources = append(sources, env.WatchFile(s.File, log))
	}
	switch len(sources) {
	case 0:
		return nil, nil
	case 1:
		return sources[0], nil
	}
	return combine(sources), nil
}

// combine installs cb on every source; it is unsupported only when all are.
func combine(sources []swrcache.EnvListener) swrcache.EnvListener {
	return func(cb func()) func() {
		var releases []func()
		for _, src := range sources {
			if r := src(cb); r != nil {
				releases = append(releases, r)
			}
		}
		if len(releases) == 0 {
			return nil
		}
		return func() {
			for _, r := range releases {
				r()
			}
		}
	}
}
