package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/harper/dealflow/internal/discovery"
	"github.com/harper/dealflow/internal/observability"
	"github.com/harper/dealflow/internal/thesis"
	"github.com/spf13/cobra"
)

var (
	discoverSources     []string
	discoverSectors     []string
	discoverStages      []string
	discoverGeographies []string
	discoverLimit       int
	discoverJSON        bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run startup discovery against your fund thesis",
	Long:  "Submits a discovery job to the DealFlow API, polls it to completion, and prints the discovered startups. Filters default to your stored fund thesis; flags override individual criteria.",
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverSources, "sources", nil, "Discovery sources (default: yc)")
	discoverCmd.Flags().StringSliceVar(&discoverSectors, "sectors", nil, "Sector filters (default: thesis sectors)")
	discoverCmd.Flags().StringSliceVar(&discoverStages, "stages", nil, "Stage filters (default: thesis stages)")
	discoverCmd.Flags().StringSliceVar(&discoverGeographies, "geographies", nil, "Geography filters (default: thesis geographies)")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 0, "Per-source result limit (default: 50)")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	store, err := thesis.NewStore(cfg.ThesisPath)
	if err != nil {
		return err
	}

	orch := discovery.NewOrchestrator(api, store, cfg.Verbose)

	opts := discovery.Options{
		Sources:     discoverSources,
		Sectors:     discoverSectors,
		Stages:      discoverStages,
		Geographies: discoverGeographies,
		Limit:       discoverLimit,
	}
	if len(opts.Sources) == 0 {
		opts.Sources = cfg.Sources
	}
	if opts.Limit == 0 {
		opts.Limit = cfg.LimitPerSource
	}

	// Ctrl-C cancels the run; the backend job keeps going server-side
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressDone := make(chan struct{})
	if !discoverJSON {
		go reportProgress(orch, progressDone)
	}

	results, err := orch.StartDiscovery(ctx, opts)
	if !discoverJSON {
		close(progressDone)
		fmt.Fprintf(os.Stderr, "\r%-40s\r", "")
	}
	if err != nil {
		var dErr *discovery.Error
		if errors.As(err, &dErr) && dErr.Kind == discovery.ErrMissingThesis {
			return fmt.Errorf("%s: run 'dealflow thesis set' first", dErr.Message)
		}
		return err
	}

	if discoverJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	job := orch.Snapshot()
	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stderr)
		if t, err := store.Load(); err == nil {
			printer.PrintThesis(t)
		}
		printer.PrintJob(job)
		printer.PrintTopStartups(results)
	}
	if job != nil && !job.FiltersMatched {
		fmt.Println("Note: no startups matched your filters exactly; showing results from broadened criteria.")
	}
	if len(results) == 0 {
		fmt.Println("No startups discovered.")
		return nil
	}

	printResultsTable(results)
	fmt.Printf("\n%d startups discovered\n", len(results))
	return nil
}

// reportProgress rewrites a single status line until the run finishes.
func reportProgress(orch *discovery.Orchestrator, done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			job := orch.Snapshot()
			if job == nil {
				continue
			}
			fmt.Fprintf(os.Stderr, "\rDiscovering... %d%% ", job.Progress)
		}
	}
}

func printResultsTable(results []discovery.DiscoveredStartup) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSECTOR\tSTAGE\tLOCATION\tSCORE\tSOURCE")
	for _, s := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\t%s\n",
			s.Name, s.Sector, s.Stage, s.Location, s.Score, s.Source)
	}
	_ = w.Flush()
}
