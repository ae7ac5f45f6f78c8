package research

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const maxResultsPerQuery = 10

// Researcher runs startup research queries against Google Custom Search.
type Researcher struct {
	svc *customsearch.Service
	cx  string
}

// NewResearcher creates a researcher. Both the API key and the search engine
// ID (cx) are required.
func NewResearcher(ctx context.Context, apiKey, cx string) (*Researcher, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search API key and engine ID are required")
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Researcher{svc: svc, cx: cx}, nil
}

// Research assembles a report for a startup: recent news plus distilled
// signals. website, when known, seeds the report and scopes nothing; the
// search runs on name and sector.
func (r *Researcher) Research(ctx context.Context, name, sector, website string) (*Report, error) {
	query := fmt.Sprintf("%q startup %s news", name, sector)
	resp, err := r.svc.Cse.List().Cx(r.cx).Q(query).Num(maxResultsPerQuery).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var items []NewsItem
	for _, result := range resp.Items {
		item := NewsItem{
			Title:   result.Title,
			URL:     result.Link,
			Snippet: result.Snippet,
			Domain:  resultDomain(result.Link),
		}
		item.Signal = classifySignal(item.Title, item.Snippet)
		items = append(items, item)
	}
	items = filterNews(items, name)

	report := &Report{
		StartupName: name,
		Website:     website,
		News:        items,
		Signals:     summarizeSignals(items),
	}

	if report.Website == "" {
		if site, err := r.discoverWebsite(ctx, name); err == nil {
			report.Website = site
		}
	}
	return report, nil
}

// discoverWebsite finds the startup's main website via search.
func (r *Researcher) discoverWebsite(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("%s official website", name)
	resp, err := r.svc.Cse.List().Cx(r.cx).Q(query).Num(3).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	for _, result := range resp.Items {
		if domain := resultDomain(result.Link); domain != "" && !skipDomains[domain] {
			return result.Link, nil
		}
	}
	return "", fmt.Errorf("no website found for %s", name)
}
