// Package env provides environment signal sources for Options.InitFocus and
// Options.InitReconnect. A Go process has no window focus or browser online
// event, so the sources here map process-level signals onto them: a unix
// signal, a file rewritten by the network stack, or a manual trigger.
package env

import (
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/unkn0wn-root/swrcache"
)

// Unsupported installs nothing.
func Unsupported(func()) func() { return nil }

var _ swrcache.EnvListener = Unsupported

// Signal fires the callback every time the process receives one of sigs.
// Each installed listener owns its own channel; unregister stops delivery.
func Signal(sigs ...os.Signal) swrcache.EnvListener {
	return func(cb func()) func() {
		if len(sigs) == 0 {
			return nil
		}
		ch := make(chan os.Signal, 1)
		done := make(chan struct{})
		signal.Notify(ch, sigs...)
		go func() {
			for {
				select {
				case <-ch:
					cb()
				case <-done:
					return
				}
			}
		}()

		var once sync.Once
		return func() {
			once.Do(func() {
				signal.Stop(ch)
				close(done)
			})
		}
	}
}

// WatchFile fires the callback when path is written, created or replaced.
// The parent directory is watched so editors and resolvers that swap the
// file atomically are seen too. When the watch cannot be set up the failure
// is logged and no listener is installed.
func WatchFile(path string, log swrcache.Logger) swrcache.EnvListener {
	if log == nil {
		log = swrcache.NopLogger{}
	}
	target := filepath.Clean(path)
	return func(cb func()) func() {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("file watcher unavailable", swrcache.Fields{"path": target, "err": err})
			return nil
		}
		if err := w.Add(filepath.Dir(target)); err != nil {
			_ = w.Close()
			log.Warn("file watch failed", swrcache.Fields{"path": target, "err": err})
			return nil
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case ev, ok := <-w.Events:
					if !ok {
						return
					}
					if filepath.Clean(ev.Name) != target {
						continue
					}
					if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
						cb()
					}
				case err, ok := <-w.Errors:
					if !ok {
						return
					}
					log.Warn("file watch error", swrcache.Fields{"path": target, "err": err})
				}
			}
		}()

		var once sync.Once
		return func() {
			once.Do(func() {
				_ = w.Close()
				<-done
			})
		}
	}
}

// Trigger is a manual source: Fire calls every callback installed through
// Listen. The zero value is ready to use.
type Trigger struct {
	mu   sync.Mutex
	next int
	cbs  map[int]func()
}

// Listen is an EnvListener.
func (t *Trigger) Listen(cb func()) func() {
	t.mu.Lock()
	if t.cbs == nil {
		t.cbs = make(map[int]func())
	}
	id := t.next
	t.next++
	t.cbs[id] = cb
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.cbs, id)
		t.mu.Unlock()
	}
}

// Fire calls the installed callbacks in install order and reports how many ran.
func (t *Trigger) Fire() int {
	t.mu.Lock()
	ids := make([]int, 0, len(t.cbs))
	for id := range t.cbs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	cbs := make([]func(), 0, len(ids))
	for _, id := range ids {
		cbs = append(cbs, t.cbs[id])
	}
	t.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
	return len(cbs)
}

// Listeners reports how many callbacks are installed.
func (t *Trigger) Listeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cbs)
}
