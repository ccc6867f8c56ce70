package swrcache

import (
	"context"
	"time"
)

// Fetcher retrieves the value for a key's args (the unhashed key).
type Fetcher func(ctx context.Context, args any) (any, error)

// Hook is the retrieval entry point consumers call. The base hook (the fetch
// engine) lives outside this package; middleware wraps it.
//
// Middleware must preserve the (key, fetcher, cfg) shape and forward it unless
// it deliberately substitutes arguments.
type Hook func(ctx context.Context, key any, fetcher Fetcher, cfg *Config) (any, error)

// Middleware wraps a Hook with cross-cutting behavior.
type Middleware func(next Hook) Hook

// Config is the per-call configuration a Hook receives after merging.
type Config struct {
	Fetcher          Fetcher        // used when the call passes a nil fetcher
	Use              []Middleware   // user middleware, outermost first
	Fallback         map[string]any // id -> value served before the first fetch
	DedupingInterval time.Duration
}

// MergeConfigs layers child over parent: non-zero child fields win, Use lists
// concatenate parent first and Fallback maps merge with child entries winning.
// Neither input is modified.
func MergeConfigs(parent, child Config) Config {
	out := parent
	if child.Fetcher != nil {
		out.Fetcher = child.Fetcher
	}
	if child.DedupingInterval != 0 {
		out.DedupingInterval = child.DedupingInterval
	}
	if len(child.Use) > 0 {
		out.Use = make([]Middleware, 0, len(parent.Use)+len(child.Use))
		out.Use = append(out.Use, parent.Use...)
		out.Use = append(out.Use, child.Use...)
	}
	if len(child.Fallback) > 0 {
		out.Fallback = make(map[string]any, len(parent.Fallback)+len(child.Fallback))
		for k, v := range parent.Fallback {
			out.Fallback[k] = v
		}
		for k, v := range child.Fallback {
			out.Fallback[k] = v
		}
	}
	return out
}

// Compose wraps base with user followed by builtin middleware.
//
// The sequence M = user ++ builtin is folded from its last element to its
// first, so M[0] ends up outermost: Compose([A, B], [C], H) == A(B(C(H))).
// User middleware sees the raw call first; built-ins sit closest to base and
// are present even when user is empty.
func Compose(user, builtin []Middleware, base Hook) Hook {
	m := make([]Middleware, 0, len(user)+len(builtin))
	m = append(m, user...)
	m = append(m, builtin...)

	next := base
	for i := len(m) - 1; i >= 0; i-- {
		next = m[i](next)
	}
	return next
}

// Pipeline produces the outward-facing hook: defaults merged with the call's
// config, the config's fetcher substituted for a nil one, and cfg.Use plus the
// built-ins composed around base.
type Pipeline struct {
	Defaults Config
	Builtins []Middleware
}

func NewPipeline(defaults Config, builtins ...Middleware) *Pipeline {
	return &Pipeline{Defaults: defaults, Builtins: builtins}
}

// Hook returns base wrapped by the pipeline. cfg may be nil.
func (p *Pipeline) Hook(base Hook) Hook {
	return func(ctx context.Context, key any, fetcher Fetcher, cfg *Config) (any, error) {
		var child Config
		if cfg != nil {
			child = *cfg
		}
		merged := MergeConfigs(p.Defaults, child)
		if fetcher == nil {
			fetcher = merged.Fetcher
		}
		return Compose(merged.Use, p.Builtins, base)(ctx, key, fetcher, &merged)
	}
}

// Bind fixes a call-site configuration: the middleware chain is composed once
// and every call runs through it with cfg.
func (p *Pipeline) Bind(base Hook, cfg Config) func(ctx context.Context, key any, fetcher Fetcher) (any, error) {
	merged := MergeConfigs(p.Defaults, cfg)
	hook := Compose(merged.Use, p.Builtins, base)
	return func(ctx context.Context, key any, fetcher Fetcher) (any, error) {
		if fetcher == nil {
			fetcher = merged.Fetcher
		}
		c := merged
		return hook(ctx, key, fetcher, &c)
	}
}
