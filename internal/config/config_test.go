package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EMBARK_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "embark", "embark.db"), cfg.Database.Path)
	require.Equal(t, "Subject Records", cfg.UI.Heading)
	require.NotEmpty(t, cfg.UI.LinkBanner)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, filepath.Join(home, ".config", "embark"), cfg.Prefs.Dir)
	require.Empty(t, cfg.Keys)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[ui]
heading = "Records"

[[keys]]
scope = "panel"
action = "toggle_link_mode"
keys = ["m"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("EMBARK_DATABASE_PATH", "/tmp/override.db")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Records", cfg.UI.Heading)
	require.Equal(t, "/tmp/override.db", cfg.Database.Path)
	require.Len(t, cfg.Keys, 1)
	require.Equal(t, "panel", cfg.Keys[0].Scope)
	require.Equal(t, []string{"m"}, cfg.Keys[0].Keys)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, "Subject Records", cfg.UI.Heading)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("EMBARK_CONFIG", path)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.Heading = "Holdings"
	require.NoError(t, Save(cfg))

	again, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Holdings", again.UI.Heading)
}
