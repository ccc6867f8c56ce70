//go:build !unix

package config

import (
	"fmt"
	"os"
)

func lookupSignal(name string) (os.Signal, error) {
	return nil, fmt.Errorf("signal %q: no user signals on this platform", name)
}
