package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Solve.Alphabet)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[solve]
alphabet = "aeiou"
template = "Vowels here: {0}."
plural = "'s"
seed = 42
max-iter = 5000
timeout = "1m30s"

[history]
last = 7

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Solve.Alphabet)
	assert.Equal(t, "aeiou", *cfg.Solve.Alphabet)
	assert.Equal(t, "'s", *cfg.Solve.PluralSuffix)
	assert.Equal(t, uint64(42), *cfg.Solve.Seed)
	assert.Equal(t, 5000, *cfg.Solve.MaxIter)
	assert.Nil(t, cfg.Solve.Conjunction)
	assert.Equal(t, 7, *cfg.History.Last)
	assert.Equal(t, "debug", *cfg.Log.Level)

	timeout, err := cfg.Solve.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, *timeout)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "config.yml", `
solve:
  alphabet: abc
  template: "Look {0}."
  conjunction: " and "
  workers: 4
bench:
  seeds: 12
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", *cfg.Solve.Alphabet)
	assert.Equal(t, " and ", *cfg.Solve.Conjunction)
	assert.Equal(t, 4, *cfg.Solve.Workers)
	assert.Equal(t, 12, *cfg.Bench.Seeds)
	assert.Nil(t, cfg.Solve.Seed)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad timeout":  "[solve]\ntimeout = \"soon\"\n",
		"bad template": "[solve]\ntemplate = \"no list\"\n",
		"bad seeds":    "[bench]\nseeds = 0\n",
		"bad syntax":   "[solve\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "config.toml", content))
			require.Error(t, err)
		})
	}
}

func TestDefaultConfigPathHonorsEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", DefaultConfigPath())
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, filepath.Join("/cfg", "autogram", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/cfg", "autogram", "templates.txt"), DefaultTemplatesPath())
	assert.Equal(t, filepath.Join("/data", "autogram", "autogram.db"), DefaultDBPath())
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("a/config.YAML"))
	assert.True(t, IsYAML("config.yml"))
	assert.False(t, IsYAML("config.toml"))
}
