// Package swrcache coordinates in-memory cache state shared by many consumers
// of one cache provider.
//
// Components:
//   - Registry/Initialize: one State per provider identity, created lazily,
//     torn down explicitly, re-creatable afterwards.
//   - State: per-id revalidators (environment events reach only the first
//     registrant of an id) and change subscriptions (write, then notify).
//   - Mutator: the write path bound to a provider, guarded by per-id
//     mutation generations (genstore).
//   - Serialize: key descriptor -> (id, args); "" means no key.
//   - Compose/Pipeline: middleware wrapped around a base retrieval hook,
//     user entries outermost, built-ins innermost.
//
// Environment events:
//
//	h, _ := swrcache.Initialize(p, swrcache.Options{
//	    InitFocus:     env.Signal(syscall.SIGUSR1),
//	    InitReconnect: env.WatchFile("/etc/resolv.conf", nil),
//	})
//	defer h.Teardown()
//
// Listener callbacks never broadcast inline: the broadcast is scheduled at the
// end of the Scheduler's queue.
package swrcache
