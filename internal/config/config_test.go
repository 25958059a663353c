package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFs(afero.NewMemMapFs(), "/nope/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, DefaultHistorySize, cfg.History.Size)
	assert.Equal(t, "exec", cfg.Exec.Backend)
	assert.True(t, cfg.Prompt.Color)
	assert.False(t, cfg.Audit.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesAndExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(`
prompt:
  color: false
history:
  path: ~/hist
  size: 5
exec:
  backend: spawn
audit:
  enabled: true
  path: ~/audit.jsonl
`), 0644))

	cfg, err := LoadFs(fs, "/c.yaml")
	require.NoError(t, err)
	assert.False(t, cfg.Prompt.Color)
	assert.Equal(t, filepath.Join(home, "hist"), cfg.History.Path)
	assert.Equal(t, 5, cfg.History.Size)
	assert.Equal(t, "spawn", cfg.Exec.Backend)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, filepath.Join(home, "audit.jsonl"), cfg.Audit.Path)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("history:\n  size: 7\n"), 0644))

	cfg, err := LoadFs(fs, "/c.yaml")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.Size)
	assert.Equal(t, DefaultConfig().History.Path, cfg.History.Path)
	assert.Equal(t, "exec", cfg.Exec.Backend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"backend":   "exec:\n  backend: vfork\n",
		"size zero": "history:\n  size: 0\n",
		"size big":  "history:\n  size: 1000001\n",
		"syntax":    "history: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(body), 0644))
			_, err := LoadFs(fs, "/c.yaml")
			assert.Error(t, err)
		})
	}
}

func TestValidateUsesYAMLNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exec.Backend = "fork"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestLoadFromOS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt:\n  color: false\n"), 0644))
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.False(t, cfg.Prompt.Color)
}

func TestLoadUsesStandardPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "minish", "config.yaml"), path)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("history:\n  size: 7\n"), 0644))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.Size)
}
