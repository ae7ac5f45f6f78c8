// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harper/dealflow/internal/discovery"
	"github.com/harper/dealflow/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintThesis outputs a human-readable summary of the fund thesis driving a
// discovery run.
func (p *Printer) PrintThesis(thesis *types.FundThesis) {
	if thesis == nil {
		return
	}

	var sb strings.Builder
	if thesis.FundName != "" {
		sb.WriteString(fmt.Sprintf("Fund:     %s\n", thesis.FundName))
	}
	sb.WriteString(fmt.Sprintf("Sectors:  %s\n", joinOrDash(thesis.Sectors)))
	sb.WriteString(fmt.Sprintf("Stages:   %s\n", joinOrDash(thesis.Stages)))
	if len(thesis.Geographies) > 0 {
		sb.WriteString(fmt.Sprintf("Regions:  %s\n", strings.Join(thesis.Geographies, ", ")))
	}
	if thesis.CheckSize != "" {
		sb.WriteString(fmt.Sprintf("Check:    %s\n", thesis.CheckSize))
	}

	p.printBox("FUND THESIS", strings.TrimRight(sb.String(), "\n"))
}

// PrintJob outputs a summary of a finished discovery job.
func (p *Printer) PrintJob(job *discovery.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", job.Status))
	sb.WriteString(fmt.Sprintf("Sources:  %s\n", joinOrDash(job.Sources)))
	sb.WriteString(fmt.Sprintf("Results:  %d\n", len(job.Results)))
	if !job.FiltersMatched {
		sb.WriteString("Filters:  broadened (no exact matches)\n")
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("Duration: %s\n", job.CompletedAt.Sub(*job.StartedAt).Round(10*time.Millisecond)))
	}

	p.printBox("DISCOVERY JOB", strings.TrimRight(sb.String(), "\n"))
}

// PrintTopStartups outputs the highest-scored discovered startups.
func (p *Printer) PrintTopStartups(results []discovery.DiscoveredStartup) {
	if len(results) == 0 {
		return
	}

	shown := results
	if len(shown) > maxItemsToShow {
		shown = shown[:maxItemsToShow]
	}

	var sb strings.Builder
	for i, s := range shown {
		sb.WriteString(fmt.Sprintf("%d. %s (%.0f) - %s\n", i+1, s.Name, s.Score, s.Sector))
		if len(s.Signals) > 0 {
			sb.WriteString(fmt.Sprintf("   %s\n", strings.Join(s.Signals, " · ")))
		}
	}
	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(results)-maxItemsToShow))
	}

	p.printBox("TOP STARTUPS", strings.TrimRight(sb.String(), "\n"))
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
