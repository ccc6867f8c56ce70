package swrcache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/swrcache/provider"
)

// Revalidator is the refresh logic registered for one id. Only the first
// registrant for an id receives broadcasts: it owns the authoritative request
// and later registrants are passive duplicates satisfied by its outcome.
type Revalidator func(ev Event)

// ChangeCallback observes writes made through State.Set.
type ChangeCallback func(current, prev any)

type revalEntry struct{ fn Revalidator }

type subEntry struct{ fn ChangeCallback }

// State is the shared state of one provider: revalidators, subscriptions and
// the bound mutator. There is at most one registered State per provider.
//
// All methods are safe for concurrent use. Callbacks are invoked outside the
// internal lock on a snapshot, so they may register, unregister or write.
type State struct {
	id       string
	provider provider.Provider
	log      Logger
	hooks    Hooks
	mutator  *Mutator

	mu            sync.Mutex
	revalidators  map[string][]*revalEntry
	subscriptions map[string][]*subEntry
}

func newState(p provider.Provider, o Options) *State {
	s := &State{
		id:            uuid.NewString(),
		provider:      p,
		log:           o.Logger,
		hooks:         o.Hooks,
		revalidators:  make(map[string][]*revalEntry),
		subscriptions: make(map[string][]*subEntry),
	}
	s.mutator = newMutator(s, o)
	return s
}

// ID identifies this State in logs and hooks.
func (s *State) ID() string { return s.id }

func (s *State) Provider() provider.Provider { return s.provider }

// Mutator returns the mutator bound to this State's provider.
func (s *State) Mutator() *Mutator { return s.mutator }

// Register appends fn to id's revalidators. The returned func removes exactly
// this registration; calling it again is a no-op.
func (s *State) Register(id string, fn Revalidator) (unregister func()) {
	e := &revalEntry{fn: fn}
	s.mu.Lock()
	s.revalidators[id] = append(s.revalidators[id], e)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.revalidators[id] = removeEntry(s.revalidators[id], e)
			if len(s.revalidators[id]) == 0 {
				delete(s.revalidators, id)
			}
			s.mu.Unlock()
		})
	}
}

// Broadcast invokes, for every id, only the first registered revalidator with
// ev. Ids without revalidators are skipped. It returns how many ran.
func (s *State) Broadcast(ev Event) int {
	s.mu.Lock()
	first := make([]Revalidator, 0, len(s.revalidators))
	for _, list := range s.revalidators {
		if len(list) > 0 {
			first = append(first, list[0].fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range first {
		fn(ev)
	}
	s.hooks.Broadcast(s.id, ev, len(first))
	if len(first) > 0 {
		s.log.Debug("revalidation broadcast", Fields{"state": s.id, "event": ev.String(), "delivered": len(first)})
	}
	return len(first)
}

// Revalidate invokes id's first revalidator with ev and reports whether one existed.
func (s *State) Revalidate(id string, ev Event) bool {
	s.mu.Lock()
	var fn Revalidator
	if list := s.revalidators[id]; len(list) > 0 {
		fn = list[0].fn
	}
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(ev)
	return true
}

// Subscribe adds cb to id's change callbacks. The returned func removes exactly
// this subscription, regardless of how many others exist for id.
func (s *State) Subscribe(id string, cb ChangeCallback) (unsubscribe func()) {
	e := &subEntry{fn: cb}
	s.mu.Lock()
	s.subscriptions[id] = append(s.subscriptions[id], e)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.subscriptions[id] = removeEntry(s.subscriptions[id], e)
			if len(s.subscriptions[id]) == 0 {
				delete(s.subscriptions, id)
			}
			s.mu.Unlock()
		})
	}
}

// Set writes value for id to the provider, then notifies id's subscribers in
// registration order with (value, prev).
func (s *State) Set(id string, value, prev any) {
	s.provider.Set(id, value)

	s.mu.Lock()
	subs := append([]*subEntry(nil), s.subscriptions[id]...)
	s.mu.Unlock()

	for _, e := range subs {
		e.fn(value, prev)
	}
}

// Revalidators reports how many revalidators are registered for id.
func (s *State) Revalidators(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.revalidators[id])
}

// Subscribers reports how many change callbacks are registered for id.
func (s *State) Subscribers(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions[id])
}

// removeEntry drops e by pointer identity and returns a fresh slice so
// snapshots taken before the removal stay intact.
func removeEntry[E any](list []*E, e *E) []*E {
	for i, x := range list {
		if x == e {
			out := make([]*E, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}
