package swrcache

import (
	"reflect"
	"sync"

	"github.com/unkn0wn-root/swrcache/provider"
)

// Registry maps provider identity to its State. Two providers share a State
// only if they are the same provider, never because they look alike.
type Registry struct {
	mu     sync.Mutex
	states map[any]*State
}

var defaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{states: make(map[any]*State)}
}

// refIdentity keys non-comparable reference values (maps, slices, funcs) by
// their data pointer.
type refIdentity struct {
	t   reflect.Type
	ptr uintptr
}

func identityOf(p provider.Provider) (any, error) {
	t := reflect.TypeOf(p)
	if t.Comparable() {
		return p, nil
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return refIdentity{t: t, ptr: v.Pointer()}, nil
	}
	return nil, ErrProviderIdentity
}

// Initialize returns the Handle for p. The first call for p (or the first
// after its Teardown) creates the State and, unless Headless, attaches the
// focus and reconnect listeners; every other call reuses the registered State.
func (r *Registry) Initialize(p provider.Provider, opts Options) (Handle, error) {
	if p == nil {
		return Handle{}, ErrNilProvider
	}
	key, err := identityOf(p)
	if err != nil {
		return Handle{}, err
	}

	r.mu.Lock()
	if s, ok := r.states[key]; ok {
		r.mu.Unlock()
		return Handle{Provider: p, Mutator: s.mutator, State: s}, nil
	}
	o := withDefaults(opts)
	s := newState(p, o)
	r.states[key] = s
	r.mu.Unlock()

	lc := &lifecycle{r: r, key: key, state: s, opts: o}
	lc.wire(false)

	return Handle{
		Provider: p,
		Mutator:  s.mutator,
		State:    s,
		Fresh:    true,
		Reinit:   lc.reinit,
		Teardown: lc.teardown,
	}, nil
}

// Lookup returns the State registered for p, if any.
func (r *Registry) Lookup(p provider.Provider) (*State, bool) {
	if p == nil {
		return nil, false
	}
	key, err := identityOf(p)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[key]
	return s, ok
}

// Len reports how many providers currently have a State.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// lifecycle owns the listeners of one State registration.
type lifecycle struct {
	r     *Registry
	key   any
	state *State
	opts  Options

	mu               sync.Mutex
	releaseFocus     func()
	releaseReconnect func()
}

// wire runs once the State is in the registry: reports it and wires the
// environment listeners.
func (lc *lifecycle) wire(reinit bool) {
	s := lc.state
	s.hooks.StateCreated(s.id, reinit)
	s.log.Debug("provider state registered", Fields{"state": s.id, "reinit": reinit, "headless": lc.opts.Headless})

	if lc.opts.Headless {
		return
	}

	focus := lc.opts.InitFocus(lc.deferred(FocusEvent))
	if focus == nil {
		s.hooks.ListenerUnavailable(s.id, "focus")
	}
	reconnect := lc.opts.InitReconnect(lc.deferred(ReconnectEvent))
	if reconnect == nil {
		s.hooks.ListenerUnavailable(s.id, "reconnect")
	}

	lc.mu.Lock()
	lc.releaseFocus, lc.releaseReconnect = focus, reconnect
	lc.mu.Unlock()
}

// deferred turns an environment signal into a broadcast scheduled at the end
// of the execution queue, after any state changes already in flight.
func (lc *lifecycle) deferred(ev Event) func() {
	return func() {
		lc.opts.Scheduler.Schedule(func() { lc.state.Broadcast(ev) })
	}
}

func (lc *lifecycle) reinit() {
	lc.r.mu.Lock()
	if _, ok := lc.r.states[lc.key]; ok {
		lc.r.mu.Unlock()
		return
	}
	lc.r.states[lc.key] = lc.state
	lc.r.mu.Unlock()

	lc.wire(true)
}

func (lc *lifecycle) teardown() {
	lc.mu.Lock()
	focus, reconnect := lc.releaseFocus, lc.releaseReconnect
	lc.releaseFocus, lc.releaseReconnect = nil, nil
	lc.mu.Unlock()

	if focus != nil {
		focus()
	}
	if reconnect != nil {
		reconnect()
	}

	lc.r.mu.Lock()
	removed := false
	if cur, ok := lc.r.states[lc.key]; ok && cur == lc.state {
		delete(lc.r.states, lc.key)
		removed = true
	}
	lc.r.mu.Unlock()

	if removed {
		lc.state.hooks.StateReleased(lc.state.id)
		lc.state.log.Debug("provider state released", Fields{"state": lc.state.id})
	}
}
