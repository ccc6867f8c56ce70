// Package zap adapts a *zap.Logger to swrcache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/swrcache"
)

var _ swrcache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New wraps l; a nil l logs nothing.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l.Named("swrcache")}
}

// With returns a logger that adds f to every entry.
func (z Logger) With(f swrcache.Fields) Logger { return Logger{L: z.L.With(fields(f)...)} }

func (z Logger) Debug(msg string, f swrcache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f swrcache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f swrcache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f swrcache.Fields) { z.L.Error(msg, fields(f)...) }

// fields converts f in key order so entries are stable across runs.
func fields(f swrcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
