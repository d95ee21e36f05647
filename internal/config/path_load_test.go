package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GENERATOR", "COUNT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL"} {
		name := envPrefix + "_" + key
		if value, ok := os.LookupEnv(name); ok {
			t.Setenv(name, value)
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.toml"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "randpipe", "config.toml"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "randpipe", "config.toml"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "missing.toml")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingTOMLParses(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
generator = "python3 src/generator.py"
count = 25
shutdown_timeout = "750ms"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, []string{"python3", "src/generator.py"}, loaded.Config.Generator.Argv)
	require.Equal(t, 25, loaded.Config.Session.Count)
	require.Equal(t, 750*time.Millisecond, loaded.Config.Session.ShutdownTimeout)
	require.Equal(t, "debug", loaded.Config.Log.Level)
	require.Empty(t, loaded.Warnings)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("count = 25\n"), 0o600))

	t.Setenv("RANDPIPE_COUNT", "7")
	t.Setenv("RANDPIPE_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("RANDPIPE_GENERATOR", `"/opt/my gen" --quiet`)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 7, loaded.Config.Session.Count)
	require.Equal(t, 2*time.Second, loaded.Config.Session.ShutdownTimeout)
	require.Equal(t, []string{"/opt/my gen", "--quiet"}, loaded.Config.Generator.Argv)
}

func TestLoadRejectsInvalidEnvironmentOverride(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv("RANDPIPE_COUNT", "many")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "environment overrides")
}

func TestLoadDefersValidationOfOverrides(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("count = 0\n"), 0o600))
	t.Setenv("RANDPIPE_GENERATOR", "")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Zero(t, loaded.Config.Session.Count)
	require.Empty(t, loaded.Config.Generator.Argv)

	_, err = Validate(loaded.Config)
	require.Error(t, err)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("count = = 3\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
	require.Contains(t, err.Error(), "line 1")
}
