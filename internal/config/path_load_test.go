package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "genctl", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "genctl", "config.jsonc"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  "engine": {
    "addr": "127.0.0.1:8081",
    "connect_timeout_ms": 2000
  },
  "watch": {
    "interval_ms": 750
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "127.0.0.1:8081", loaded.Config.Engine.Addr)
	require.Equal(t, 2000, loaded.Config.Engine.ConnectTimeoutMS)
	require.Equal(t, 750, loaded.Config.Watch.IntervalMS)
}

func TestLoadImplicitPathFallsBackToLegacyConfigConf(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	legacyPath := filepath.Join(xdg, "genctl", "config.conf")
	require.NoError(t, os.MkdirAll(filepath.Dir(legacyPath), 0o700))
	require.NoError(t, os.WriteFile(legacyPath, []byte("demo.mid_load_percent = 35\n"), 0o600))

	loaded, err := Load("")
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, legacyPath, loaded.Path)
	require.Equal(t, 35, loaded.Config.Demo.MidLoadPercent)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "legacy config path")
}

func TestLoadExplicitPathSkipsLegacyFallback(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	legacyPath := filepath.Join(xdg, "genctl", "config.conf")
	require.NoError(t, os.MkdirAll(filepath.Dir(legacyPath), 0o700))
	require.NoError(t, os.WriteFile(legacyPath, []byte("demo.mid_load_percent = 35\n"), 0o600))

	explicit := filepath.Join(t.TempDir(), "absent.jsonc")
	loaded, err := Load(explicit)
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, explicit, loaded.Path)
	require.Equal(t, Default(), loaded.Config)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}
