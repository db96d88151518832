package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"topic": "observability tooling",
		"product_name": "TraceLens",
		"product_description": "distributed tracing for small teams",
		"database_url": "postgres://localhost/content",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "observability tooling", cfg.Topic)
	assert.Equal(t, "TraceLens", cfg.ProductName)
	assert.Equal(t, "distributed tracing for small teams", cfg.ProductDescription)
	assert.Equal(t, "postgres://localhost/content", cfg.DatabaseURL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFillFromEnv(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "pk-env")
	t.Setenv("GEMINI_API_KEY", "gk-env")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg := &Config{GeminiAPIKey: "gk-file"}
	cfg.FillFromEnv()

	assert.Equal(t, "pk-env", cfg.ResearchAPIKey)
	// Values already set are not overwritten by the environment.
	assert.Equal(t, "gk-file", cfg.GeminiAPIKey)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
}

func TestValidate_FeaturesFileMustExist(t *testing.T) {
	cfg := &Config{FeaturesFile: "/nonexistent/features.txt"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "features file not found")

	tmpFile := filepath.Join(t.TempDir(), "features.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("fast setup\n"), 0644))
	cfg.FeaturesFile = tmpFile
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Topic: "from-flags", LogLevel: ""}
	defaults := Config{Topic: "from-file", Query: "q-file", LogLevel: "debug"}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "from-flags", merged.Topic) // explicit value wins
	assert.Equal(t, "q-file", merged.Query)
	assert.Equal(t, "debug", merged.LogLevel)
}

func TestReadFeatures(t *testing.T) {
	cfg := &Config{}
	text, err := cfg.ReadFeatures()
	require.NoError(t, err)
	assert.Empty(t, text)

	tmpFile := filepath.Join(t.TempDir(), "features.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("fast setup\nlow overhead\n"), 0644))
	cfg.FeaturesFile = tmpFile

	text, err = cfg.ReadFeatures()
	require.NoError(t, err)
	assert.Contains(t, text, "low overhead")
}
