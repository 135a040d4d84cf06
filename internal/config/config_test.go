package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found.
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2025, cfg.Engine.BaseYear)
	assert.Equal(t, 7, cfg.Engine.HorizonYears)
	assert.InDelta(t, 1e15, cfg.Engine.OverflowCeiling, 1)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "bizcase.db", cfg.Store.Path)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, 2048, cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 2, cfg.Anthropic.RequestsPerSec, 0.001)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "EUR", cfg.Export.Currency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentAnalyses)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Anthropic.Key)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	raw, err := yaml.Marshal(map[string]any{
		"engine": map[string]any{"base_year": 2026, "horizon_years": 10},
		"store":  map[string]any{"driver": "postgres", "database_url": "postgres://localhost/bizcase"},
		"log":    map[string]any{"level": "debug", "format": "console"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2026, cfg.Engine.BaseYear)
	assert.Equal(t, 10, cfg.Engine.HorizonYears)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/bizcase", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Values absent from the file keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "EUR", cfg.Export.Currency)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("BIZCASE_STORE_DRIVER", "postgres")
	t.Setenv("BIZCASE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
