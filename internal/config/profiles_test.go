package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaultConfig(t *testing.T) {
	dir := isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config", "mangatoc", "configs", "Default.yaml"), path)

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	again, err := InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)
	assert.Equal(t, path, again)
}

func TestListProfiles(t *testing.T) {
	dir := isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	sources := filepath.Join(dir, "novels.yaml")
	_, err = WriteSampleSources(sources)
	require.NoError(t, err)

	work := DefaultConfig()
	work.SourcesFile = sources
	work.DBDriver = "mysql"
	work.DBDSN = "user:secret@tcp(db:3306)/toc"
	_, err = AddProfile("work", work)
	require.NoError(t, err)

	broken, err := profilePath("broken")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(broken, []byte("timeout: [nope\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ConfigsDir(), "notes.txt"), []byte("x"), 0o644))

	profiles, err := ListProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	def, brk, wrk := profiles[0], profiles[1], profiles[2]

	assert.Equal(t, DefaultLabel, def.Label)
	assert.True(t, def.Active)
	require.NotNil(t, def.Config)
	assert.Equal(t, "sqlite3:"+filepath.Join(dir, "data", "mangatoc", "mangatoc.db"), def.Store())
	_, err = def.Sources()
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, "broken", brk.Label)
	assert.Nil(t, brk.Config)
	assert.Error(t, brk.Err)
	assert.Empty(t, brk.Store())

	assert.Equal(t, "work", wrk.Label)
	assert.False(t, wrk.Active)
	assert.Equal(t, "mysql", wrk.Store(), "mysql dsn is not shown")
	got, err := wrk.Sources()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "example", got[0].Name)
}

func TestSwitchProfile(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)
	_, err = AddProfile("work", nil)
	require.NoError(t, err)

	p, err := SwitchProfile("work")
	require.NoError(t, err)
	assert.True(t, p.Active)
	require.NotNil(t, p.Config)
	assert.Equal(t, "sqlite3", p.Config.DBDriver)

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "work", label)

	t.Run("missing", func(t *testing.T) {
		_, err := SwitchProfile("missing")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("broken config is refused", func(t *testing.T) {
		path, err := profilePath("broken")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte("retries: [1\n"), 0o644))

		_, err = SwitchProfile("broken")
		assert.Error(t, err)

		label, err := CurrentLabel()
		require.NoError(t, err)
		assert.Equal(t, "work", label)
	})

	t.Run("labels cannot escape the configs dir", func(t *testing.T) {
		_, err := SwitchProfile("../Default")
		assert.Error(t, err)
	})
}

func TestAddProfile(t *testing.T) {
	dir := isolate(t)

	_, err := AddProfile("work", nil)
	require.NoError(t, err)

	_, err = AddProfile("work", nil)
	assert.ErrorIs(t, err, ErrProfileExists)

	_, err = AddProfile("  ", nil)
	assert.Error(t, err)

	src := filepath.Join(dir, "exported.yaml")
	require.NoError(t, os.WriteFile(src, []byte("fanout_limit: 4\ndb_dsn: /srv/toc.db\n"), 0o644))

	cfg, err := LoadFile(src)
	require.NoError(t, err)
	_, err = AddProfile("imported", cfg)
	require.NoError(t, err)

	p, err := LoadProfile("imported")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Config.FanoutLimit)
	assert.Equal(t, "/srv/toc.db", p.Config.DBDSN)
	assert.Equal(t, 3, p.Config.Retries, "unset keys keep their defaults")
}

func TestRenameProfile(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)
	_, err = AddProfile("work", nil)
	require.NoError(t, err)
	_, err = SwitchProfile("work")
	require.NoError(t, err)

	require.NoError(t, RenameProfile("work", "home"))

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "home", label, "active profile follows the rename")

	_, err = ProfilePath("work")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	assert.ErrorIs(t, RenameProfile("home", DefaultLabel), ErrProfileExists)
	assert.ErrorIs(t, RenameProfile("missing", "other"), ErrProfileNotFound)
}

func TestRemoveProfile(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)
	_, err = AddProfile("work", nil)
	require.NoError(t, err)
	_, err = AddProfile("spare", nil)
	require.NoError(t, err)
	_, err = SwitchProfile("work")
	require.NoError(t, err)

	fellBack, err := RemoveProfile("spare")
	require.NoError(t, err)
	assert.False(t, fellBack)

	fellBack, err = RemoveProfile("work")
	require.NoError(t, err)
	assert.True(t, fellBack)

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	_, err = RemoveProfile(DefaultLabel)
	assert.Error(t, err)

	_, err = RemoveProfile("work")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profiles, err := ListProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
}

func TestResetProfile(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.SourcesFile = "/srv/sources.yaml"
	cfg.DBDSN = "/srv/toc.db"
	cfg.Retries = 9
	cfg.FanoutLimit = 2
	_, err := AddProfile("work", cfg)
	require.NoError(t, err)

	got, err := ResetProfile("work", false)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Retries)
	assert.Zero(t, got.FanoutLimit)
	assert.Equal(t, "/srv/sources.yaml", got.SourcesFile, "store settings survive")
	assert.Equal(t, "/srv/toc.db", got.DBDSN)

	got, err = ResetProfile("work", true)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), got)

	p, err := LoadProfile("work")
	require.NoError(t, err)
	assert.NotEqual(t, "/srv/toc.db", p.Config.DBDSN)

	_, err = ResetProfile("missing", false)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
