package swrcache

// Hooks lightweight callbacks for high-signal lifecycle events.
// Implementations MUST be cheap and non-blocking: Broadcast runs on the
// scheduler's worker and the rest run inline with the caller.
type Hooks interface {
	// A State was registered for a provider. reinit is true when an existing
	// State was re-registered through Handle.Reinit.
	StateCreated(stateID string, reinit bool)

	// Teardown removed a State from the registry.
	StateReleased(stateID string)

	// An environment listener could not be installed.
	// kind ∈ {"focus", "reconnect"}
	ListenerUnavailable(stateID, kind string)

	// An environment event reached `delivered` revalidators (one per id at most).
	Broadcast(stateID string, ev Event, delivered int)

	// A mutation finished after a newer one for the same id started, so its
	// value was not written.
	MutationDiscarded(id string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StateCreated(string, bool)          {}
func (NopHooks) StateReleased(string)               {}
func (NopHooks) ListenerUnavailable(string, string) {}
func (NopHooks) Broadcast(string, Event, int)       {}
func (NopHooks) MutationDiscarded(string)           {}
