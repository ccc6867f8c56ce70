package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/swrcache"
)

func TestRecordsAreGrouped(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := New(stdslog.New(h)).With(swrcache.Fields{"state": "s1"})

	l.Debug("dropped", nil)
	l.Info("broadcast", swrcache.Fields{"event": "focus", "delivered": 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is below the handler level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "broadcast", rec["msg"])
	group, ok := rec["swrcache"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", group["state"])
	assert.Equal(t, "focus", group["event"])
	assert.EqualValues(t, 2, group["delivered"])
}
