// Package zerolog adapts a zerolog.Logger to swrcache.Logger.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/swrcache"
)

var _ swrcache.Logger = Logger{}

type Logger struct{ L zerolog.Logger }

func New(l zerolog.Logger) Logger {
	return Logger{L: l.With().Str("component", "swrcache").Logger()}
}

// With returns a logger that adds f to every event.
func (z Logger) With(f swrcache.Fields) Logger {
	return Logger{L: z.L.With().Fields(map[string]any(f)).Logger()}
}

func (z Logger) Debug(msg string, f swrcache.Fields) { emit(z.L.Debug(), msg, f) }
func (z Logger) Info(msg string, f swrcache.Fields)  { emit(z.L.Info(), msg, f) }
func (z Logger) Warn(msg string, f swrcache.Fields)  { emit(z.L.Warn(), msg, f) }
func (z Logger) Error(msg string, f swrcache.Fields) { emit(z.L.Error(), msg, f) }

// emit is a no-op for disabled levels: zerolog hands back a nil event.
func emit(e *zerolog.Event, msg string, f swrcache.Fields) {
	if e == nil {
		return
	}
	if len(f) > 0 {
		e = e.Fields(map[string]any(f))
	}
	e.Msg(msg)
}
