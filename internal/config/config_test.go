package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("LOCALAPPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	return dir
}

func TestLoadMerged_NoConfig(t *testing.T) {
	dir := isolate(t)

	cfg, used, err := LoadMerged(Options{Debug: true, FanoutLimit: 4})
	require.NoError(t, err)

	assert.Contains(t, used, "default config in memory")
	assert.True(t, cfg.Debug)
	assert.Equal(t, 4, cfg.FanoutLimit)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, filepath.Join(dir, "data", "mangatoc", "mangatoc.db"), cfg.DBDSN)
	assert.Equal(t, filepath.Join(dir, "config", "mangatoc", "sources.yaml"), cfg.SourcesFile)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadMerged_ActiveProfile(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)

	raw := "timeout: 5s\nretries: 7\nrate_per_second: 2.5\ncloudflare_bypass: true\nuser_agent: from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, used, err := LoadMerged(Options{UserAgent: "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 7, cfg.Retries)
	assert.InDelta(t, 2.5, cfg.RatePerSecond, 0.001)
	assert.True(t, cfg.CloudflareBypass)
	assert.Equal(t, "from-flag", cfg.UserAgent)
	assert.Equal(t, "sqlite3", cfg.DBDriver, "unset keys keep their defaults")
}

func TestLoadMerged_IgnoreConfig(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("retries: 9\n"), 0o644))

	cfg, used, err := LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, 3, cfg.Retries)
}

func TestSaveYAML_RoundTrip(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "c.yaml")
	in := DefaultConfig()
	in.FanoutLimit = 8
	in.Timeout = 90 * time.Second
	in.LogFile = "/tmp/mangatoc.log"
	require.NoError(t, SaveYAML(in, path))

	out, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
