// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the pipeline configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults, environment
// variables, or must be provided via CLI flags.
type Config struct {
	// Run inputs
	Topic              string `json:"topic,omitempty"`               // Research topic
	Query              string `json:"query,omitempty"`               // Social search query (defaults to topic)
	ProductName        string `json:"product_name,omitempty"`        // Product being promoted
	ProductDescription string `json:"product_description,omitempty"` // Short product pitch fed to the LLM stages
	FeaturesFile       string `json:"features_file,omitempty"`       // Path to a plain-text product features file

	// Credentials
	ResearchAPIKey string `json:"research_api_key,omitempty"` // Perplexity API key
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`   // Gemini API key
	SocialAPIKey   string `json:"social_api_key,omitempty"`   // RapidAPI key for the social search host
	PublishAPIKey  string `json:"publish_api_key,omitempty"`  // Typefully API key

	// Infrastructure
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	ListenAddr  string `json:"listen_addr,omitempty"`  // Dashboard API bind address

	// Behavior
	LogLevel string `json:"log_level,omitempty"` // Logger level name
	Verbose  bool   `json:"verbose,omitempty"`   // Print stage summaries to stdout
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FillFromEnv fills credential and infrastructure fields that are still
// empty from their conventional environment variables.
func (c *Config) FillFromEnv() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.ResearchAPIKey, "PERPLEXITY_API_KEY")
	fill(&c.GeminiAPIKey, "GEMINI_API_KEY")
	fill(&c.SocialAPIKey, "RAPIDAPI_API_KEY")
	fill(&c.PublishAPIKey, "TYPEFULLY_API_KEY")
	fill(&c.DatabaseURL, "DATABASE_URL")
	fill(&c.LogLevel, "LOG_LEVEL")
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.FeaturesFile != "" {
		if _, err := os.Stat(c.FeaturesFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: features file not found: %s", c.FeaturesFile)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from
// defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	merge := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	merge(&result.Topic, defaults.Topic)
	merge(&result.Query, defaults.Query)
	merge(&result.ProductName, defaults.ProductName)
	merge(&result.ProductDescription, defaults.ProductDescription)
	merge(&result.FeaturesFile, defaults.FeaturesFile)
	merge(&result.ResearchAPIKey, defaults.ResearchAPIKey)
	merge(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	merge(&result.SocialAPIKey, defaults.SocialAPIKey)
	merge(&result.PublishAPIKey, defaults.PublishAPIKey)
	merge(&result.DatabaseURL, defaults.DatabaseURL)
	merge(&result.ListenAddr, defaults.ListenAddr)
	merge(&result.LogLevel, defaults.LogLevel)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ReadFeatures loads the plain-text features file, returning "" when no
// file is configured.
func (c *Config) ReadFeatures() (string, error) {
	if c.FeaturesFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.FeaturesFile)
	if err != nil {
		return "", fmt.Errorf("failed to read features file %s: %w", c.FeaturesFile, err)
	}
	return string(data), nil
}
