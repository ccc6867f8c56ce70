// Package sloghooks reports swrcache lifecycle hooks through log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	BroadcastEvery uint64
	// Optional id redactor. Defaults to an xxhash digest of the id.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	broadcastCtr atomic.Uint64
}

var _ swrcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(id string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(id)
	}
	return util.DigestString(id)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StateCreated(stateID string, reinit bool) {
	if h.l == nil {
		return
	}
	h.l.Debug("swrcache.state_created",
		"state", stateID,
		"reinit", reinit)
}

func (h *Hooks) StateReleased(stateID string) {
	if h.l == nil {
		return
	}
	h.l.Debug("swrcache.state_released", "state", stateID)
}

func (h *Hooks) ListenerUnavailable(stateID, kind string) {
	if h.l == nil {
		return
	}
	h.l.Info("swrcache.listener_unavailable",
		"state", stateID,
		"kind", kind)
}

func (h *Hooks) Broadcast(stateID string, ev swrcache.Event, delivered int) {
	if h.l == nil || !sample(h.opts.BroadcastEvery, &h.broadcastCtr) {
		return
	}
	h.l.Debug("swrcache.broadcast",
		"state", stateID,
		"event", ev.String(),
		"delivered", delivered)
}

func (h *Hooks) MutationDiscarded(id string) {
	if h.l == nil {
		return
	}
	h.l.Warn("swrcache.mutation_discarded", "key", h.redact(id))
}
