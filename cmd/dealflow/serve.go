package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/harper/dealflow/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for auth, startups, deals, outreach, and discovery jobs.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: PORT env var or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := servePort
	if port == 0 {
		if raw := os.Getenv("PORT"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("invalid PORT value %q: %w", raw, err)
			}
			port = parsed
		} else {
			port = 8080
		}
	}

	cfg := server.Config{
		Port:             port,
		DatabaseURL:      databaseURL,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		CrunchbaseAPIKey: os.Getenv("CRUNCHBASE_API_KEY"),
		MCAProvider:      os.Getenv("MCA_PROVIDER"),
		MCAAPIKey:        os.Getenv("MCA_API_KEY"),
		SearchAPIKey:     os.Getenv("GOOGLE_SEARCH_API_KEY"),
		SearchEngineID:   os.Getenv("GOOGLE_SEARCH_CX"),
		Verbose:          rootVerbose,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
