// Package asynchook moves hook delivery off the caller's goroutine.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{BroadcastEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	h, _ := swrcache.Initialize(p, swrcache.Options{Hooks: hooks})
//
// Events that find the queue full are dropped and counted.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/swrcache"
)

type Hooks struct {
	inner   swrcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed q
	closed  bool
	dropped atomic.Uint64
}

var _ swrcache.Hooks = (*Hooks)(nil)

func New(inner swrcache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = swrcache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close delivers queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports events lost to a full queue or a closed Hooks.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) StateCreated(id string, reinit bool) {
	h.try(func() { h.inner.StateCreated(id, reinit) })
}
func (h *Hooks) StateReleased(id string) { h.try(func() { h.inner.StateReleased(id) }) }
func (h *Hooks) ListenerUnavailable(id, kind string) {
	h.try(func() { h.inner.ListenerUnavailable(id, kind) })
}
func (h *Hooks) Broadcast(id string, ev swrcache.Event, delivered int) {
	h.try(func() { h.inner.Broadcast(id, ev, delivered) })
}
func (h *Hooks) MutationDiscarded(id string) { h.try(func() { h.inner.MutationDiscarded(id) }) }
