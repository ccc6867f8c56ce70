package swrcache

import "github.com/unkn0wn-root/swrcache/genstore"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// noListener is the default environment listener: there is no portable focus
// or reconnect signal for a Go process, so nothing is installed.
func noListener(func()) func() { return nil }

// withDefaults merges the default options under o.
func withDefaults(o Options) Options {
	o.Logger = coalesce[Logger](o.Logger, NopLogger{})
	o.Hooks = coalesce[Hooks](o.Hooks, NopHooks{})
	if o.InitFocus == nil {
		o.InitFocus = noListener
	}
	if o.InitReconnect == nil {
		o.InitReconnect = noListener
	}
	if o.Scheduler == nil {
		o.Scheduler = defaultScheduler()
	}
	if o.GenStore == nil {
		// in-process generations, no sweeper: ids are bounded by the provider's keyspace
		o.GenStore = genstore.NewLocalGenStore(0, 0)
	}
	return o
}
