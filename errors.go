package swrcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNilProvider is returned by Initialize when no provider is given.
	ErrNilProvider = errors.New("swrcache: provider is required")

	// ErrProviderIdentity is returned for providers that have no identity:
	// non-comparable value types (e.g. a struct holding a map, passed by value).
	// Pass a pointer instead.
	ErrProviderIdentity = errors.New("swrcache: provider has no stable identity")
)

// MutateError reports a failed MutateFunc. Nothing was written for Key.
type MutateError struct {
	Key string
	Err error
}

func (e *MutateError) Error() string {
	return fmt.Sprintf("mutate %q: %v", e.Key, e.Err)
}

func (e *MutateError) Unwrap() error { return e.Err }
