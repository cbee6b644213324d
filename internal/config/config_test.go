package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.Pipeline.SubmitFloor)
	assert.Equal(t, 0.7, cfg.Pipeline.PromoteFloor)
	assert.Equal(t, 3, cfg.Reflection.LoopBudget)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Store.Path, cfg.Store.Path)
}

func TestLoadThenSaveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Pipeline.SubmitFloor = 0.6
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, loaded.Pipeline.SubmitFloor)
}

func TestEnvOverridesStorePath(t *testing.T) {
	t.Setenv("PATTERNKEEP_STORE_PATH", "/tmp/override.db")
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	assert.Equal(t, "/tmp/override.db", cfg.Store.Path)
}

func TestValidateRejectsPromoteBelowSubmit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.PromoteFloor = 0.1
	cfg.Pipeline.SubmitFloor = 0.5
	require.Error(t, cfg.Validate())
}
