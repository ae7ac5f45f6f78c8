// Package ingest fetches startup data from discovery sources: Y Combinator,
// Crunchbase, Wellfound, and MCA (India). Every source falls back to curated
// company data when its upstream API is unavailable or unconfigured.
package ingest

import (
	"context"
	"time"
)

// Company is a normalized startup record produced by a source.
type Company struct {
	Name        string
	Tagline     string
	Sector      string
	Stage       string
	Description string
	Website     string
	Location    string
	FoundedYear int
	TeamSize    int
	YCBatch     string
	CIN         string
	Source      string
}

// FetchOptions narrows a source fetch to thesis criteria.
type FetchOptions struct {
	Sectors []string
	Stages  []string
	Limit   int
}

// Source fetches startups from one upstream listing platform.
type Source interface {
	// Name returns the short source key used in job requests ("yc", "mca", ...)
	Name() string
	// Label returns the human-readable source name ("Y Combinator", ...)
	Label() string
	// Fetch returns up to opts.Limit companies matching the filter criteria
	Fetch(ctx context.Context, opts FetchOptions) ([]Company, error)
}

// DefaultHTTPTimeout bounds upstream API calls.
const DefaultHTTPTimeout = 30 * time.Second

// sectorAgnostic disables sector filtering when present in the sectors list.
const sectorAgnostic = "Sector Agnostic"

// filterCompanies applies sector and stage filters, stamps the source label,
// and truncates to limit. If nothing matches, the unfiltered head of the
// list is returned so a discovery run never comes back empty-handed.
func filterCompanies(companies []Company, opts FetchOptions, label string) []Company {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	filtered := make([]Company, 0, limit)
	for _, c := range companies {
		if !matchesSector(c.Sector, opts.Sectors) {
			continue
		}
		if !matchesStage(c.Stage, opts.Stages) {
			continue
		}
		c.Source = label
		filtered = append(filtered, c)
		if len(filtered) >= limit {
			break
		}
	}

	if len(filtered) == 0 {
		for _, c := range companies {
			c.Source = label
			filtered = append(filtered, c)
			if len(filtered) >= limit {
				break
			}
		}
	}

	return filtered
}

func matchesSector(sector string, sectors []string) bool {
	if len(sectors) == 0 {
		return true
	}
	for _, s := range sectors {
		if s == sectorAgnostic || s == sector {
			return true
		}
	}
	return false
}

func matchesStage(stage string, stages []string) bool {
	if len(stages) == 0 {
		return true
	}
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}
