package swrcache

import (
	"context"

	"github.com/unkn0wn-root/swrcache/genstore"
)

// MutateFunc computes the new value for an id from its current cached value.
type MutateFunc func(ctx context.Context, current any) (any, error)

type mutateConfig struct {
	populate   bool
	revalidate bool
}

type MutateOption func(*mutateConfig)

// WithPopulate controls whether the result is written to the provider (default true).
func WithPopulate(b bool) MutateOption { return func(c *mutateConfig) { c.populate = b } }

// WithRevalidate controls whether the id's revalidator is told about the
// mutation afterwards (default true).
func WithRevalidate(b bool) MutateOption { return func(c *mutateConfig) { c.revalidate = b } }

// Mutator writes through one provider's State. It is created once per State,
// so every Handle bound to the same provider gets the same *Mutator.
type Mutator struct {
	state *State
	ser   Serializer
	gens  genstore.GenStore
}

func newMutator(s *State, o Options) *Mutator {
	return &Mutator{state: s, ser: Serializer{Hash: o.Hasher}, gens: o.GenStore}
}

// Serialize maps key to (id, args) with the hasher this Mutator's State was
// created with.
func (m *Mutator) Serialize(key any) (string, any) { return m.ser.Serialize(key) }

// Mutate sets the cached value of key and notifies its subscribers.
//
// data is either a MutateFunc (or func(context.Context, any) (any, error)),
// called with the current value, or the new value itself. nil data only
// revalidates. Keys that serialize to the empty id are ignored.
//
// Each call takes a new mutation generation for the id; when a newer call
// starts before this one resolves its value, this result is returned but not
// written. A failing MutateFunc yields *MutateError and writes nothing.
func (m *Mutator) Mutate(ctx context.Context, key any, data any, opts ...MutateOption) (any, error) {
	id, _ := m.ser.Serialize(key)
	if id == "" {
		return nil, nil
	}
	cfg := mutateConfig{populate: true, revalidate: true}
	for _, o := range opts {
		o(&cfg)
	}
	s := m.state

	if data == nil {
		if cfg.revalidate {
			s.Revalidate(id, MutateEvent)
		}
		v, _ := s.provider.Get(id)
		return v, nil
	}

	started, genErr := m.gens.Bump(ctx, id)
	if genErr != nil {
		s.log.Warn("mutation generation bump failed; writing unguarded", Fields{"key": id, "err": genErr})
	}

	prev, _ := s.provider.Get(id)
	value := data
	switch f := data.(type) {
	case MutateFunc:
		v, err := f(ctx, prev)
		if err != nil {
			return nil, &MutateError{Key: id, Err: err}
		}
		value = v
	case func(context.Context, any) (any, error):
		v, err := f(ctx, prev)
		if err != nil {
			return nil, &MutateError{Key: id, Err: err}
		}
		value = v
	}
	if err := ctx.Err(); err != nil {
		return nil, &MutateError{Key: id, Err: err}
	}

	if genErr == nil {
		cur, err := m.gens.Snapshot(ctx, id)
		if err == nil && cur != started {
			s.hooks.MutationDiscarded(id)
			s.log.Debug("mutation superseded; result not written", Fields{"key": id, "gen": started, "current": cur})
			return value, nil
		}
	}

	if cfg.populate {
		// prev may have changed while the MutateFunc ran
		prev, _ = s.provider.Get(id)
		s.Set(id, value, prev)
	}
	if cfg.revalidate {
		s.Revalidate(id, MutateEvent)
	}
	return value, nil
}
