package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "csv", cfg.Catalog.Source)
	assert.Equal(t, "data/recipes.csv", cfg.Catalog.Path)
	assert.Equal(t, 5, cfg.Recommend.TopK)
	assert.Equal(t, 200.0, cfg.Recommend.CalorieScale)
	assert.Equal(t, ScoreWeights{Diet: 0.5, Calorie: 0.3, Context: 0.2}, cfg.Recommend.Weights)
	assert.Equal(t, 15*time.Minute, cfg.Recommend.CacheTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte(`
server:
  port: "9000"
recommendation:
  top_k: 8
  weights:
    diet: 0.6
    calorie: 0.2
    context: 0.2
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), yaml, 0o600))
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Recommend.TopK)
	assert.InDelta(t, 0.6, cfg.Recommend.Weights.Diet, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsBadWeights(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte(`
recommendation:
  weights:
    diet: 0.9
    calorie: 0.3
    context: 0.2
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), yaml, 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Catalog:   CatalogConfig{Source: "csv", Path: "recipes.csv"},
			Recommend: DefaultRecommendationConfig(),
		}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "unknown source", modify: func(c *Config) { c.Catalog.Source = "s3" }, wantErr: true},
		{name: "postgres without url", modify: func(c *Config) { c.Catalog.Source = "postgres" }, wantErr: true},
		{name: "zero top_k", modify: func(c *Config) { c.Recommend.TopK = 0 }, wantErr: true},
		{name: "negative weight", modify: func(c *Config) {
			c.Recommend.Weights = ScoreWeights{Diet: 1.2, Calorie: -0.2, Context: 0}
		}, wantErr: true},
		{name: "auth without secret", modify: func(c *Config) { c.Auth.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
