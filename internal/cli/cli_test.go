package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/swrcache"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func redisConfig(t *testing.T) string {
	t.Helper()
	mini := miniredis.RunT(t)
	path := filepath.Join(t.TempDir(), "swr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  kind: redis
  redis:
    addr: `+mini.Addr()+`
    prefix: "cli:"
genstore:
  kind: redis
log:
  level: warn
`), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "swrcache test\n", out)
}

func TestKeyString(t *testing.T) {
	out, err := run(t, "key", "/api/user")
	require.NoError(t, err)
	assert.Equal(t, "/api/user\t\"/api/user\"\n", out)
}

func TestKeyTupleMatchesLibrary(t *testing.T) {
	out, err := run(t, "key", "--json", "/api/user", "42")
	require.NoError(t, err)

	id, _ := swrcache.Serialize([]any{"/api/user", float64(42)})
	assert.Equal(t, id+"\t[\"/api/user\",42]\n", out)
}

func TestKeyWithoutID(t *testing.T) {
	_, err := run(t, "key", "")
	assert.Error(t, err)
}

func TestSetThenGetAcrossProcesses(t *testing.T) {
	cfg := redisConfig(t)

	out, err := run(t, "-c", cfg, "set", "user", `{"name":"ada"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"ada"}`+"\n", out)

	out, err = run(t, "-c", cfg, "get", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"ada"}`+"\n", out)

	_, err = run(t, "-c", cfg, "get", "nobody")
	assert.ErrorContains(t, err, "not cached")
}

func TestWatchRequiresKey(t *testing.T) {
	_, err := run(t, "watch")
	assert.ErrorContains(t, err, "--key")
}

func TestWatchStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "--key", "k"})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.True(t, strings.HasPrefix(out.String(), "watching"))
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, "a", parseKey([]string{"a"}, false))
	assert.Equal(t, []any{"a", "1"}, parseKey([]string{"a", "1"}, false))
	assert.Equal(t, []any{"a", float64(1)}, parseKey([]string{"a", "1"}, true))
	assert.Equal(t, "not json", parseKey([]string{"not json"}, true))
}
