package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// no config file anywhere near the temp working directory
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Timeout())
	assert.InDelta(t, 0.6, cfg.TaskWeight, 1e-9)
	assert.InDelta(t, 0.4, cfg.QualityWeight, 1e-9)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kalybrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: openai
base_url: http://localhost:11434/v1
smart_model: big-model
cheap_model: small-model
concurrency: 8
timeout_seconds: 30
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, "big-model", cfg.SmartModel)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Provider: "anthropic", SmartModel: "s", CheapModel: "c",
			Concurrency: 1, TimeoutSeconds: 10, TaskWeight: 0.6, QualityWeight: 0.4,
		}
	}

	ok := base()
	assert.NoError(t, ok.Validate())

	badProvider := base()
	badProvider.Provider = "mystery"
	assert.Error(t, badProvider.Validate())

	noModel := base()
	noModel.SmartModel = ""
	assert.Error(t, noModel.Validate())

	badWeight := base()
	badWeight.TaskWeight = 0
	assert.Error(t, badWeight.Validate())

	badConcurrency := base()
	badConcurrency.Concurrency = 0
	assert.Error(t, badConcurrency.Validate())
}
