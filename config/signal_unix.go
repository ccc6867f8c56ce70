//go:build unix

package config

import (
	"fmt"
	"os"
	"syscall"
)

var signals = map[string]os.Signal{
	"SIGHUP":   syscall.SIGHUP,
	"SIGUSR1":  syscall.SIGUSR1,
	"SIGUSR2":  syscall.SIGUSR2,
	"SIGWINCH": syscall.SIGWINCH,
	"SIGCONT":  syscall.SIGCONT,
}

func lookupSignal(name string) (os.Signal, error) {
	s, ok := signals[name]
	if !ok {
		return nil, fmt.Errorf("unsupported signal %q", name)
	}
	return s, nil
}
