// Package provider defines the key/value store that swrcache coordinates.
//
// swrcache never constructs a provider; callers own it and hand it to
// swrcache.Initialize. The same provider value always maps to the same shared
// state, so implementations should be pointer types: two distinct providers
// must never compare equal.
//
// Values are stored as given. In-process stores keep the exact value; byte
// stores (bigcache, redis) round-trip through a codec and may return an
// equivalent rather than identical value.
package provider

// Provider is the cache capability set: get, set, delete, iterate keys.
// Must be safe for concurrent use. Failures are the implementation's to log;
// a failed Get is a miss and a failed Set or Delete is dropped.
type Provider interface {
	// Get returns (value, true) on hit; (nil, false) on miss.
	Get(key string) (any, bool)

	// Set stores value under key. The write must be visible to Get when Set returns.
	Set(key string, value any)

	// Delete removes key (best-effort).
	Delete(key string)

	// Keys returns a snapshot of the live keys in no particular order.
	Keys() []string
}

// Closer is implemented by providers that hold resources (connections,
// background workers). swrcache never closes a provider; its owner does.
type Closer interface {
	Close() error
}
