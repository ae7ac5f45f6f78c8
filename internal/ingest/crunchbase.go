package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// DefaultCrunchbaseBaseURL is the Crunchbase v4 API root.
const DefaultCrunchbaseBaseURL = "https://api.crunchbase.com/api/v4"

// CrunchbaseSource fetches organizations from the Crunchbase search API.
// The API requires a paid key; without one the curated list is used.
type CrunchbaseSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Verbose bool
}

// NewCrunchbaseSource creates a Crunchbase source. An empty apiKey means
// curated data only.
func NewCrunchbaseSource(apiKey string) *CrunchbaseSource {
	return &CrunchbaseSource{
		BaseURL: DefaultCrunchbaseBaseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Name returns "crunchbase".
func (s *CrunchbaseSource) Name() string { return "crunchbase" }

// Label returns "Crunchbase".
func (s *CrunchbaseSource) Label() string { return "Crunchbase" }

// Fetch returns organizations matching the filter criteria.
func (s *CrunchbaseSource) Fetch(ctx context.Context, opts FetchOptions) ([]Company, error) {
	if s.APIKey == "" {
		return filterCompanies(curatedCrunchbaseCompanies(), opts, s.Label()), nil
	}

	companies, err := s.search(ctx, opts)
	if err != nil {
		if s.Verbose {
			log.Printf("[INGEST] Crunchbase API unavailable, using curated data: %v", err)
		}
		return filterCompanies(curatedCrunchbaseCompanies(), opts, s.Label()), nil
	}
	return companies, nil
}

type cbSearchResponse struct {
	Entities []struct {
		Properties struct {
			Identifier struct {
				Value string `json:"value"`
			} `json:"identifier"`
			ShortDescription string `json:"short_description"`
			Categories       []struct {
				Value string `json:"value"`
			} `json:"categories"`
			LocationIdentifiers []struct {
				Value string `json:"value"`
			} `json:"location_identifiers"`
			LastFundingType string `json:"last_funding_type"`
			WebsiteURL      string `json:"website_url"`
		} `json:"properties"`
	} `json:"entities"`
}

func (s *CrunchbaseSource) search(ctx context.Context, opts FetchOptions) ([]Company, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := map[string]any{
		"field_ids": []string{"identifier", "short_description", "categories",
			"location_identifiers", "funding_total", "last_funding_type", "founded_on", "website_url"},
		"limit": limit,
		"order": []map[string]string{{"field_id": "rank_org", "sort": "asc"}},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/searches/organizations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-cb-user-key", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Crunchbase API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crunchbase API returned %d", resp.StatusCode)
	}

	var data cbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode Crunchbase response: %w", err)
	}

	var companies []Company
	for _, entity := range data.Entities {
		props := entity.Properties

		sector := "Technology"
		if len(props.Categories) > 0 {
			sector = props.Categories[0].Value
		}
		c := Company{
			Name:    props.Identifier.Value,
			Tagline: props.ShortDescription,
			Sector:  NormalizeSector(sector),
			Stage:   NormalizeStage(props.LastFundingType),
			Website: props.WebsiteURL,
			Source:  s.Label(),
		}
		if len(props.LocationIdentifiers) > 0 {
			c.Location = props.LocationIdentifiers[0].Value
		}
		if c.Name == "" {
			continue
		}
		if !matchesSector(c.Sector, opts.Sectors) || !matchesStage(c.Stage, opts.Stages) {
			continue
		}

		companies = append(companies, c)
		if len(companies) >= limit {
			break
		}
	}
	return companies, nil
}

// curatedCrunchbaseCompanies is the fallback when no API key is configured.
func curatedCrunchbaseCompanies() []Company {
	return []Company{
		{Name: "Anthropic", Tagline: "AI safety company building reliable AI", Sector: "AI/ML", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://anthropic.com"},
		{Name: "Databricks", Tagline: "Unified analytics platform", Sector: "Enterprise Software", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://databricks.com"},
		{Name: "Canva", Tagline: "Online design and publishing platform", Sector: "B2B SaaS", Stage: "Growth/Late Stage", Location: "Sydney, Australia", Website: "https://canva.com"},
		{Name: "Notion", Tagline: "All-in-one workspace for notes and docs", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://notion.so"},
		{Name: "Plaid", Tagline: "Financial data network", Sector: "FinTech", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://plaid.com"},
		{Name: "Ramp", Tagline: "Corporate cards and spend management", Sector: "FinTech", Stage: "Series C+", Location: "New York, NY", Website: "https://ramp.com"},
		{Name: "Vercel", Tagline: "Platform for frontend developers", Sector: "Developer Tools", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://vercel.com"},
		{Name: "Linear", Tagline: "Issue tracking for modern teams", Sector: "Developer Tools", Stage: "Series B", Location: "San Francisco, CA", Website: "https://linear.app"},
		{Name: "Airtable", Tagline: "Low-code platform for applications", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://airtable.com"},
		{Name: "Figma", Tagline: "Collaborative interface design", Sector: "Developer Tools", Stage: "Growth/Late Stage", Location: "San Francisco, CA", Website: "https://figma.com"},
	}
}
