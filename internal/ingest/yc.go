package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// DefaultYCBaseURL is the public Y Combinator company directory API.
const DefaultYCBaseURL = "https://api.ycombinator.com/v0.1"

// YCSource fetches companies from the public Y Combinator API.
type YCSource struct {
	BaseURL string
	Client  *http.Client
	Verbose bool
}

// NewYCSource creates a YC source with default settings.
func NewYCSource() *YCSource {
	return &YCSource{
		BaseURL: DefaultYCBaseURL,
		Client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Name returns "yc".
func (s *YCSource) Name() string { return "yc" }

// Label returns "Y Combinator".
func (s *YCSource) Label() string { return "Y Combinator" }

// ycCompany mirrors the YC API company shape. The API has used both
// camelCase and snake_case field names over time, so both are accepted.
type ycCompany struct {
	Name            string   `json:"name"`
	OneLiner        string   `json:"oneLiner"`
	OneLinerSnake   string   `json:"one_liner"`
	LongDescription string   `json:"longDescription"`
	LongDescSnake   string   `json:"long_description"`
	Website         string   `json:"website"`
	Batch           string   `json:"batch"`
	Stage           string   `json:"stage"`
	Industries      []string `json:"industries"`
	Locations       []string `json:"locations"`
	Location        string   `json:"location"`
	YearFounded     int      `json:"yearFounded"`
	TeamSize        int      `json:"teamSize"`
}

func (c ycCompany) tagline() string {
	if c.OneLiner != "" {
		return c.OneLiner
	}
	return c.OneLinerSnake
}

func (c ycCompany) description() string {
	for _, v := range []string{c.LongDescription, c.LongDescSnake, c.OneLiner, c.OneLinerSnake} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c ycCompany) location() string {
	if len(c.Locations) > 0 {
		return c.Locations[0]
	}
	if c.Location != "" {
		return c.Location
	}
	return "San Francisco, CA"
}

// Fetch returns YC companies matching the filter criteria. On any API
// failure the curated company list is used instead.
func (s *YCSource) Fetch(ctx context.Context, opts FetchOptions) ([]Company, error) {
	companies, err := s.fetchAPI(ctx)
	if err != nil {
		if s.Verbose {
			log.Printf("[INGEST] YC API unavailable, using curated data: %v", err)
		}
		return filterCompanies(curatedYCCompanies(), opts, s.Label()), nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	// Scan past the limit so filtering has material to work with
	maxScan := len(companies)
	if maxScan > limit*3 {
		maxScan = limit * 3
	}

	var matched []Company
	var unfiltered []Company
	for _, raw := range companies[:maxScan] {
		if raw.Name == "" {
			continue
		}

		sector := "Technology"
		if len(raw.Industries) > 0 {
			sector = raw.Industries[0]
		}
		c := Company{
			Name:        raw.Name,
			Tagline:     raw.tagline(),
			Sector:      NormalizeSector(sector),
			Stage:       NormalizeStage(raw.Stage),
			Description: raw.description(),
			Website:     raw.Website,
			Location:    raw.location(),
			FoundedYear: raw.YearFounded,
			TeamSize:    raw.TeamSize,
			YCBatch:     raw.Batch,
			Source:      s.Label(),
		}

		if len(unfiltered) < limit {
			unfiltered = append(unfiltered, c)
		}
		if matchesSector(c.Sector, opts.Sectors) && matchesStage(c.Stage, opts.Stages) {
			matched = append(matched, c)
			if len(matched) >= limit {
				break
			}
		}
	}

	// A thesis that matches nothing still gets results to review
	if len(matched) == 0 {
		matched = unfiltered
	}
	return matched, nil
}

func (s *YCSource) fetchAPI(ctx context.Context) ([]ycCompany, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"/companies", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("YC API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("YC API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read YC response: %w", err)
	}

	// The endpoint has returned both a bare array and a wrapper object
	var companies []ycCompany
	if err := json.Unmarshal(body, &companies); err == nil {
		return companies, nil
	}

	var wrapper struct {
		Companies []ycCompany `json:"companies"`
		Results   []ycCompany `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode YC response: %w", err)
	}
	if len(wrapper.Companies) > 0 {
		return wrapper.Companies, nil
	}
	return wrapper.Results, nil
}

// curatedYCCompanies is the fallback when the YC API is unreachable.
func curatedYCCompanies() []Company {
	return []Company{
		{Name: "Stripe", Tagline: "Financial infrastructure for the internet", Sector: "FinTech", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S09", Website: "https://stripe.com"},
		{Name: "Airbnb", Tagline: "Book unique homes and experiences", Sector: "Marketplace", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "W09", Website: "https://airbnb.com"},
		{Name: "OpenAI", Tagline: "AI research and deployment company", Sector: "AI/ML", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S15", Website: "https://openai.com"},
		{Name: "Coinbase", Tagline: "Buy, sell, and store cryptocurrency", Sector: "Blockchain/Web3", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S12", Website: "https://coinbase.com"},
		{Name: "DoorDash", Tagline: "Delivery for every neighborhood", Sector: "Marketplace", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S13", Website: "https://doordash.com"},
		{Name: "Instacart", Tagline: "Grocery delivery from local stores", Sector: "E-commerce", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S12", Website: "https://instacart.com"},
		{Name: "Brex", Tagline: "Corporate cards and spend management", Sector: "FinTech", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "W17", Website: "https://brex.com"},
		{Name: "Scale AI", Tagline: "Accelerate AI development with quality data", Sector: "AI/ML", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "S16", Website: "https://scale.com"},
		{Name: "Retool", Tagline: "Build internal tools remarkably fast", Sector: "Developer Tools", Stage: "Series B", Location: "San Francisco, CA", YCBatch: "W17", Website: "https://retool.com"},
		{Name: "Faire", Tagline: "Wholesale marketplace for retailers", Sector: "Marketplace", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "W17", Website: "https://faire.com"},
		{Name: "Gusto", Tagline: "All-in-one people platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "W12", Website: "https://gusto.com"},
		{Name: "Figma", Tagline: "Collaborative interface design tool", Sector: "Developer Tools", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S12", Website: "https://figma.com"},
		{Name: "Flexport", Tagline: "Modern freight forwarding", Sector: "Enterprise Software", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "W14", Website: "https://flexport.com"},
		{Name: "Checkr", Tagline: "Modern background check platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "S14", Website: "https://checkr.com"},
		{Name: "Ginkgo Bioworks", Tagline: "The organism company", Sector: "DeepTech", Stage: "Growth/Late Stage", Location: "Boston, MA", YCBatch: "S14", Website: "https://ginkgobioworks.com"},
		{Name: "PagerDuty", Tagline: "Digital operations management", Sector: "Enterprise Software", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S10", Website: "https://pagerduty.com"},
		{Name: "Zapier", Tagline: "Connect your apps and automate", Sector: "B2B SaaS", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S12", Website: "https://zapier.com"},
		{Name: "Segment", Tagline: "Customer data platform", Sector: "B2B SaaS", Stage: "Growth/Late Stage", Location: "San Francisco, CA", YCBatch: "S11", Website: "https://segment.com"},
		{Name: "Rippling", Tagline: "Employee management platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", YCBatch: "W17", Website: "https://rippling.com"},
		{Name: "Weave", Tagline: "Communication for small business", Sector: "B2B SaaS", Stage: "Series C+", Location: "Lehi, UT", YCBatch: "W14", Website: "https://getweave.com"},
	}
}
