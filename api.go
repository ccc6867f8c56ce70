package swrcache

import (
	"github.com/unkn0wn-root/swrcache/genstore"
	"github.com/unkn0wn-root/swrcache/provider"
	"github.com/unkn0wn-root/swrcache/stablehash"
)

// EnvListener installs callback on an environment signal (regained focus,
// network reconnect) and returns the func that removes it. A nil return means
// the signal is unsupported here; no listener was installed.
type EnvListener func(callback func()) (unregister func())

// Options tune the shared state created for a provider. They only apply when
// Initialize creates the State; later calls for the same provider reuse it and
// ignore their options. Every field is optional.
type Options struct {
	InitFocus     EnvListener // nil => no focus listener
	InitReconnect EnvListener // nil => no reconnect listener

	// Headless skips environment listeners entirely (server-side rendering,
	// batch jobs): nothing regains focus there.
	Headless bool

	Scheduler Scheduler         // deferred broadcasts; nil => shared Queue
	Logger    Logger            // if nil, NopLogger is used
	Hooks     Hooks             // if nil, NopHooks is used
	Hasher    stablehash.Hasher // ids for structured keys; nil => stablehash.CBOR
	GenStore  genstore.GenStore // mutation generations; nil => in-process
}

// Handle is what Initialize returns. Fresh reports whether this call created
// the State; only then are Reinit and Teardown set, and the caller owns the
// State's lifetime. Reused handles share Mutator and State with the creator.
type Handle struct {
	Provider provider.Provider
	Mutator  *Mutator
	State    *State
	Fresh    bool

	// Reinit re-registers the State and re-attaches listeners after Teardown.
	// No-op while any State is registered for the provider.
	Reinit func()

	// Teardown removes the listeners and unregisters the State. Idempotent.
	// Broadcasts already scheduled may still run against the detached State.
	Teardown func()
}

// Initialize binds to the shared State of p in the default registry, creating
// it on first use.
func Initialize(p provider.Provider, opts Options) (Handle, error) {
	return defaultRegistry.Initialize(p, opts)
}

// Lookup returns the State registered for p in the default registry.
func Lookup(p provider.Provider) (*State, bool) {
	return defaultRegistry.Lookup(p)
}
