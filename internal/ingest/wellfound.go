package ingest

import (
	"context"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/harper/dealflow/internal/fetch"
)

// DefaultWellfoundURL is the Wellfound trending startups listing.
const DefaultWellfoundURL = "https://wellfound.com/startups"

// WellfoundSource scrapes public Wellfound startup listings. Wellfound
// renders client-side, so a plain HTTP fetch usually gets an empty shell
// and the headless browser fallback kicks in. Scrape failures fall back
// to curated data.
type WellfoundSource struct {
	ListingURL string
	Fetcher    *fetch.CachedFetcher
	UseBrowser bool
	Verbose    bool
}

// NewWellfoundSource creates a Wellfound source. fetcher may be nil, in
// which case only curated data is returned.
func NewWellfoundSource(fetcher *fetch.CachedFetcher) *WellfoundSource {
	return &WellfoundSource{
		ListingURL: DefaultWellfoundURL,
		Fetcher:    fetcher,
		UseBrowser: true,
	}
}

// Name returns "wellfound".
func (s *WellfoundSource) Name() string { return "wellfound" }

// Label returns "Wellfound".
func (s *WellfoundSource) Label() string { return "Wellfound" }

// Fetch returns Wellfound startups matching the filter criteria.
func (s *WellfoundSource) Fetch(ctx context.Context, opts FetchOptions) ([]Company, error) {
	if s.Fetcher == nil {
		return filterCompanies(curatedWellfoundCompanies(), opts, s.Label()), nil
	}

	companies, err := s.scrape(ctx)
	if err != nil || len(companies) == 0 {
		if s.Verbose {
			log.Printf("[INGEST] Wellfound scrape unavailable, using curated data: %v", err)
		}
		return filterCompanies(curatedWellfoundCompanies(), opts, s.Label()), nil
	}
	return filterCompanies(companies, opts, s.Label()), nil
}

func (s *WellfoundSource) scrape(ctx context.Context) ([]Company, error) {
	result, err := s.Fetcher.FetchForSource(ctx, s.ListingURL, s.Name())
	if err != nil {
		return nil, err
	}

	html := result.HTML
	if s.UseBrowser && fetch.NeedsBrowser(result.Text) {
		rendered, berr := fetch.Render(ctx, s.ListingURL, fetch.DefaultRenderTimeout, s.Verbose)
		if berr != nil {
			return nil, berr
		}
		html = rendered
	}

	return parseWellfoundListing(html), nil
}

// parseWellfoundListing extracts startup cards from a Wellfound listing page.
func parseWellfoundListing(html string) []Company {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var companies []Company
	doc.Find("[data-test='StartupResult'], .startup-card").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("[data-test='StartupResult-name'], .startup-name, h2").First().Text())
		if name == "" {
			return
		}

		c := Company{
			Name:     name,
			Tagline:  strings.TrimSpace(card.Find("[data-test='StartupResult-tagline'], .startup-tagline, .tagline").First().Text()),
			Location: strings.TrimSpace(card.Find("[data-test='StartupResult-location'], .startup-location").First().Text()),
			Sector:   NormalizeSector(strings.TrimSpace(card.Find("[data-test='StartupResult-market'], .startup-market").First().Text())),
			Stage:    NormalizeStage(strings.TrimSpace(card.Find("[data-test='StartupResult-stage'], .startup-stage").First().Text())),
		}
		if href, ok := card.Find("a").First().Attr("href"); ok {
			if strings.HasPrefix(href, "/") {
				href = "https://wellfound.com" + href
			}
			c.Website = href
		}
		companies = append(companies, c)
	})
	return companies
}

// curatedWellfoundCompanies is the fallback when scraping is unavailable.
func curatedWellfoundCompanies() []Company {
	return []Company{
		{Name: "Mercury", Tagline: "Banking for startups", Sector: "FinTech", Stage: "Series B", Location: "San Francisco, CA", Website: "https://mercury.com"},
		{Name: "Deel", Tagline: "Global payroll and compliance", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://deel.com"},
		{Name: "Remote", Tagline: "Global HR platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://remote.com"},
		{Name: "Loom", Tagline: "Video messaging for work", Sector: "B2B SaaS", Stage: "Growth/Late Stage", Location: "San Francisco, CA", Website: "https://loom.com"},
		{Name: "Lattice", Tagline: "People management platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://lattice.com"},
		{Name: "Miro", Tagline: "Visual collaboration platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "San Francisco, CA", Website: "https://miro.com"},
		{Name: "Synthesia", Tagline: "AI video generation platform", Sector: "AI/ML", Stage: "Series B", Location: "London, UK", Website: "https://synthesia.io"},
		{Name: "Jasper", Tagline: "AI content generation", Sector: "AI/ML", Stage: "Series A", Location: "Austin, TX", Website: "https://jasper.ai"},
		{Name: "Runway", Tagline: "AI tools for video creation", Sector: "AI/ML", Stage: "Series C+", Location: "New York, NY", Website: "https://runwayml.com"},
		{Name: "Snyk", Tagline: "Developer security platform", Sector: "Cybersecurity", Stage: "Series C+", Location: "Boston, MA", Website: "https://snyk.io"},
	}
}
