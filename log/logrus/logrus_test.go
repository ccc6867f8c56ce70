package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/swrcache"
)

func TestLevelsAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base).With(swrcache.Fields{"state": "s1"})

	l.Debug("registered", swrcache.Fields{"reinit": false})
	l.Warn("failed", swrcache.Fields{"err": errors.New("boom"), "key": "k"})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "swrcache", entries[0].Data["component"])
	assert.Equal(t, "s1", entries[0].Data["state"])
	assert.Equal(t, false, entries[0].Data["reinit"])

	last := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "k", last.Data["key"])
	assert.EqualError(t, last.Data[logrus.ErrorKey].(error), "boom")
}
