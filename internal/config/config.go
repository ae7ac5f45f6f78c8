// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// API
	APIBaseURL string `json:"api_base_url,omitempty"` // Base URL of the DealFlow API
	Email      string `json:"email,omitempty"`        // Account email for login
	TokenPath  string `json:"token_path,omitempty"`   // Path to the persisted token file

	// Thesis
	ThesisPath string `json:"thesis_path,omitempty"` // Path to the persisted fund thesis file

	// Discovery defaults
	Sources        []string `json:"sources,omitempty"`          // Default discovery sources
	LimitPerSource int      `json:"limit_per_source,omitempty"` // Default per-source result limit

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (server only)
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.LimitPerSource < 0 {
		return fmt.Errorf("config error: 'limit_per_source' must be non-negative")
	}
	for _, s := range c.Sources {
		if s == "" {
			return fmt.Errorf("config error: 'sources' must not contain empty entries")
		}
	}
	return nil
}

// Merge overlays non-zero values from other onto a copy of c and returns it.
// Values in other win; empty values fall through to c.
func (c *Config) Merge(other *Config) *Config {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.APIBaseURL != "" {
		merged.APIBaseURL = other.APIBaseURL
	}
	if other.Email != "" {
		merged.Email = other.Email
	}
	if other.TokenPath != "" {
		merged.TokenPath = other.TokenPath
	}
	if other.ThesisPath != "" {
		merged.ThesisPath = other.ThesisPath
	}
	if len(other.Sources) > 0 {
		merged.Sources = other.Sources
	}
	if other.LimitPerSource != 0 {
		merged.LimitPerSource = other.LimitPerSource
	}
	if other.Verbose {
		merged.Verbose = true
	}
	if other.DatabaseURL != "" {
		merged.DatabaseURL = other.DatabaseURL
	}
	return &merged
}
