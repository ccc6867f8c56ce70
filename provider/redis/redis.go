// Package redis stores encoded values in Redis so several processes can share
// one provider. Every key is namespaced by Prefix; Keys only reports keys
// under it.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/codec"
	"github.com/unkn0wn-root/swrcache/internal/wire"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

const (
	defaultOpTimeout = 2 * time.Second
	scanBatch        = 256
)

type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	ttl         time.Duration
	opTimeout   time.Duration
	codec       codec.Any
	log         swrcache.Logger
	closeClient bool
}

var (
	_ pr.Provider = (*Redis)(nil)
	_ pr.Closer   = (*Redis)(nil)
)

type Config struct {
	Client    goredis.UniversalClient
	Prefix    string        // prepended to every key, e.g. "swr:"
	TTL       time.Duration // 0 = no expiry
	OpTimeout time.Duration // per command; 0 => 2s

	Codec  codec.Any       // nil => codec.JSON
	Logger swrcache.Logger // nil => NopLogger

	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	r := &Redis{
		rdb:         cfg.Client,
		prefix:      cfg.Prefix,
		ttl:         cfg.TTL,
		opTimeout:   cfg.OpTimeout,
		codec:       cfg.Codec,
		log:         cfg.Logger,
		closeClient: cfg.CloseClient,
	}
	if r.ttl < 0 {
		r.ttl = 0 // treat negative TTLs as "no expiry"
	}
	if r.opTimeout <= 0 {
		r.opTimeout = defaultOpTimeout
	}
	if r.codec == nil {
		r.codec = codec.JSON[any]{}
	}
	if r.log == nil {
		r.log = swrcache.NopLogger{}
	}
	return r, nil
}

func (r *Redis) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.opTimeout)
}

func (r *Redis) Get(key string) (any, bool) {
	ctx, cancel := r.op()
	defer cancel()

	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		// transport/server error reads as a miss
		r.log.Warn("redis get failed", swrcache.Fields{"key": key, "err": err})
		return nil, false
	}

	payload, null, err := wire.Decode(b)
	if err == nil && null {
		return nil, true
	}
	var v any
	if err == nil {
		v, err = r.codec.Decode(payload)
	}
	if err != nil {
		r.heal(ctx, key, err)
		return nil, false
	}
	return v, true
}

func (r *Redis) heal(ctx context.Context, key string, cause error) {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Warn("redis delete of undecodable entry failed", swrcache.Fields{"key": key, "err": err})
		return
	}
	r.log.Warn("redis entry dropped: undecodable", swrcache.Fields{"key": key, "err": cause})
}

// Set encodes value and writes it with the configured TTL. Failures are
// logged; the previous entry, if any, stays.
func (r *Redis) Set(key string, value any) {
	var frame []byte
	if value == nil {
		frame = wire.EncodeNull()
	} else {
		payload, err := r.codec.Encode(value)
		if err != nil {
			r.log.Error("redis encode failed", swrcache.Fields{"key": key, "err": err})
			return
		}
		frame = wire.Encode(payload)
	}

	ctx, cancel := r.op()
	defer cancel()
	if err := r.rdb.Set(ctx, r.prefix+key, frame, r.ttl).Err(); err != nil {
		r.log.Error("redis set failed", swrcache.Fields{"key": key, "err": err})
	}
}

func (r *Redis) Delete(key string) {
	ctx, cancel := r.op()
	defer cancel()
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Warn("redis delete failed", swrcache.Fields{"key": key, "err": err})
	}
}

// Keys scans the prefix with SCAN, so it never blocks the server. With an
// empty prefix it reports every key in the database.
func (r *Redis) Keys() []string {
	ctx, cancel := r.op()
	defer cancel()

	var out []string
	it := r.rdb.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for it.Next(ctx) {
		out = append(out, it.Val()[len(r.prefix):])
	}
	if err := it.Err(); err != nil {
		r.log.Warn("redis scan failed", swrcache.Fields{"prefix": r.prefix, "err": err})
	}
	return out
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Redis) Close() error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
