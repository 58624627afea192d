package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cm.GetConfig())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "config must not be written implicitly")
}

func TestLoadYAMLAndJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"yaml", "search:\n  digest_threshold: 0.9\n  threads: 4\nui:\n  use_color: false\n"},
		{"json", `{"search": {"digest_threshold": 0.9, "threads": 4}, "ui": {"use_color": false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			cm, err := NewConfigManagerAt(path)
			require.NoError(t, err)

			cfg := cm.GetConfig()
			assert.Equal(t, 0.9, cfg.Search.DigestThreshold)
			assert.Equal(t, 4, cfg.Search.Threads)
			assert.False(t, cfg.UI.UseColor)
			// untouched fields keep their defaults
			assert.Equal(t, 0.5, cfg.Search.SumsThreshold)
			assert.Equal(t, 19, cfg.Input.MaxMessageBytes)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  sums_threshold: 1.5\n"), 0600))

	_, err := NewConfigManagerAt(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("input:\n  max_message_bytes: 40\n"), 0600))
	_, err = NewConfigManagerAt(path)
	assert.ErrorContains(t, err, "max_message_bytes")

	require.NoError(t, os.WriteFile(path, []byte("{{{ not yaml"), 0600))
	_, err = NewConfigManagerAt(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHECKREV_THREADS", "7")
	t.Setenv("CHECKREV_NO_COLOR", "1")

	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7, cm.GetConfig().Search.Threads)
	assert.False(t, cm.GetConfig().UI.UseColor)
}

func TestInitAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	require.NoError(t, cm.Init(false))
	assert.Error(t, cm.Init(false))
	require.NoError(t, cm.Init(true))

	cm.GetConfig().Search.Threads = 3
	require.NoError(t, cm.SaveConfig())

	again, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, 3, again.GetConfig().Search.Threads)
	assert.Equal(t, path, again.Path())

	out, err := again.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "threads: 3")
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CHECKREV_CONFIG", "/tmp/custom.yaml")
	path, err := getConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)

	t.Setenv("CHECKREV_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err = getConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "checkrev", "config.yaml"), path)
}
