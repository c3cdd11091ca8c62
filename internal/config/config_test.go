package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[openreview]
api = "https://api2.openreview.net"
user = "me@example.org"

[memgraph]
uri = "bolt://graph:7687"

[concurrency]
reduce_workers = 2
`

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "https://api2.openreview.net", cfg.OpenReview.API)
	assert.Equal(t, "me@example.org", cfg.OpenReview.User)
	assert.Equal(t, 1000, cfg.OpenReview.PageSize)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
	assert.Equal(t, 2, cfg.Concurrency.ReduceWorkers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[openreview\n"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse TOML")
}

func TestResolve_WalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := Resolve(nested, DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Resolve(nested, "nope.toml")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MEMGRAPH_URI", "bolt://env:7687")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDUCE_WORKERS", "nope")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "bolt://env:7687", cfg.Memgraph.URI)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Concurrency.ReduceWorkers)
}

func TestLoadOrDefault_ExplicitPath(t *testing.T) {
	t.Setenv("OPENREVIEW_USER", "env-user")

	cfg, err := LoadOrDefault(writeConfig(t, t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.OpenReview.User)
	assert.Equal(t, 2, cfg.Concurrency.ReduceWorkers)
}
