// Package main provides the entry point for the DealFlow CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/harper/dealflow/internal/client"
	"github.com/harper/dealflow/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dealflow",
	Short: "DealFlow deal sourcing platform",
	Long:  "DealFlow discovers startups matching your fund thesis across sources like Y Combinator, Wellfound, and Crunchbase, scores them against your investment criteria, and manages your deal pipeline.",
}

var (
	rootConfigPath string
	rootAPIBaseURL string
	rootVerbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&rootAPIBaseURL, "api-url", "", "Base URL of the DealFlow API (overrides config and DEALFLOW_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
}

// loadCLIConfig resolves the effective config: file values first, then
// environment, then flags.
func loadCLIConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if rootConfigPath != "" {
		fileCfg, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(&config.Config{
		APIBaseURL:  os.Getenv("DEALFLOW_API_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})
	cfg = cfg.Merge(&config.Config{
		APIBaseURL: rootAPIBaseURL,
		Verbose:    rootVerbose,
	})
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8080"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAPIClient builds an authenticated API client using the persisted tokens.
func newAPIClient(cfg *config.Config) (*client.Client, error) {
	tokens, err := client.NewTokenStore(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return client.New(cfg.APIBaseURL, tokens), nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
