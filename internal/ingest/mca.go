package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// MCA API provider base URLs. MCA (Ministry of Corporate Affairs, India)
// data is only available through licensed third-party providers.
var mcaProviderURLs = map[string]string{
	"signzy":    "https://api.signzy.app/api/v3",
	"surepass":  "https://kyc-api.surepass.io/api/v1",
	"gridlines": "https://api.gridlines.io/mca-service/api/v1",
}

// MCASource fetches Indian company registry data by CIN lookup through a
// licensed MCA API provider. Without a configured key the curated Indian
// startup list is used directly.
type MCASource struct {
	Provider string
	BaseURL  string
	APIKey   string
	Client   *http.Client
	Verbose  bool
}

// NewMCASource creates an MCA source for the given provider
// ("signzy", "surepass", or "gridlines").
func NewMCASource(provider, apiKey string) *MCASource {
	return &MCASource{
		Provider: strings.ToLower(provider),
		BaseURL:  mcaProviderURLs[strings.ToLower(provider)],
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Name returns "mca".
func (s *MCASource) Name() string { return "mca" }

// Label returns "MCA (India)".
func (s *MCASource) Label() string { return "MCA (India)" }

// Fetch returns Indian startups matching the filter criteria. The curated
// CIN list drives the API lookups; registry data enriches each entry.
func (s *MCASource) Fetch(ctx context.Context, opts FetchOptions) ([]Company, error) {
	if s.APIKey == "" || s.BaseURL == "" {
		return filterCompanies(curatedIndianStartups(), opts, s.Label()), nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	curated := curatedIndianStartups()
	maxScan := len(curated)
	if maxScan > limit*2 {
		maxScan = limit * 2
	}

	var companies []Company
	for _, c := range curated[:maxScan] {
		master, err := s.lookupCIN(ctx, c.CIN)
		if err != nil {
			if s.Verbose {
				log.Printf("[INGEST] MCA lookup failed for CIN %s: %v", c.CIN, err)
			}
			continue
		}
		if master == nil {
			continue
		}

		if !matchesSector(c.Sector, opts.Sectors) || !matchesStage(c.Stage, opts.Stages) {
			continue
		}

		if master.CompanyName != "" {
			c.Name = master.CompanyName
		}
		if master.RegisteredAddress != "" {
			c.Location = master.RegisteredAddress
		}
		if len(master.IncorporationDate) >= 4 {
			if year, err := strconv.Atoi(master.IncorporationDate[:4]); err == nil {
				c.FoundedYear = year
			}
		}
		c.Source = s.Label()
		companies = append(companies, c)
		if len(companies) >= limit {
			break
		}
	}

	if len(companies) == 0 {
		return filterCompanies(curated, opts, s.Label()), nil
	}
	return companies, nil
}

// mcaCompanyMaster is the normalized company master record across providers.
type mcaCompanyMaster struct {
	CompanyName       string
	CompanyStatus     string
	CompanyType       string
	IncorporationDate string
	RegisteredAddress string
}

func (s *MCASource) lookupCIN(ctx context.Context, cin string) (*mcaCompanyMaster, error) {
	var url string
	var payload map[string]string
	headers := map[string]string{"Content-Type": "application/json"}

	switch s.Provider {
	case "signzy":
		url = s.BaseURL + "/mca/company"
		payload = map[string]string{"cin": cin}
		headers["Authorization"] = s.APIKey
	case "surepass":
		url = s.BaseURL + "/corporate/company"
		payload = map[string]string{"id_number": cin}
		headers["Authorization"] = "Bearer " + s.APIKey
	case "gridlines":
		url = s.BaseURL + "/company-master"
		payload = map[string]string{"cin": cin}
		headers["X-API-Key"] = s.APIKey
		headers["X-Auth-Type"] = "API-Key"
	default:
		return nil, fmt.Errorf("unsupported MCA provider: %s", s.Provider)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CIN lookup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("MCA API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MCA API returned %d for CIN %s", resp.StatusCode, cin)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode MCA response: %w", err)
	}

	return s.extractMaster(raw)
}

// extractMaster digs the company master record out of the provider-specific
// response envelope.
func (s *MCASource) extractMaster(raw map[string]json.RawMessage) (*mcaCompanyMaster, error) {
	type providerRecord struct {
		CompanyName       string `json:"company_name"`
		CompanyStatus     string `json:"company_status"`
		CompanyType       string `json:"company_type"`
		IncorporationDate string `json:"incorporation_date"`
		RegisteredAddress string `json:"registered_office_address"`
	}

	var payload json.RawMessage
	switch s.Provider {
	case "signzy":
		var result struct {
			CompanyMasterData json.RawMessage `json:"companyMasterData"`
		}
		if err := json.Unmarshal(raw["result"], &result); err != nil {
			return nil, fmt.Errorf("failed to parse signzy envelope: %w", err)
		}
		payload = result.CompanyMasterData
	case "surepass":
		payload = raw["data"]
	case "gridlines":
		var data struct {
			CompanyDetails json.RawMessage `json:"company_details"`
		}
		if err := json.Unmarshal(raw["data"], &data); err != nil {
			return nil, fmt.Errorf("failed to parse gridlines envelope: %w", err)
		}
		payload = data.CompanyDetails
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var rec providerRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse company master: %w", err)
	}
	return &mcaCompanyMaster{
		CompanyName:       rec.CompanyName,
		CompanyStatus:     rec.CompanyStatus,
		CompanyType:       rec.CompanyType,
		IncorporationDate: rec.IncorporationDate,
		RegisteredAddress: rec.RegisteredAddress,
	}, nil
}

// curatedIndianStartups is the CIN-keyed curated list, used both as API
// lookup material and as the no-key fallback.
func curatedIndianStartups() []Company {
	return []Company{
		{CIN: "U74999KA2016PTC093609", Name: "Razorpay", Tagline: "Payment gateway and banking solutions", Sector: "FinTech", Stage: "Series C+", Location: "Bangalore, India", Website: "https://razorpay.com"},
		{CIN: "U65999MH2010PTC209419", Name: "Paytm", Tagline: "Digital payments and financial services", Sector: "FinTech", Stage: "Growth/Late Stage", Location: "Noida, India", Website: "https://paytm.com"},
		{CIN: "U74140DL2015PTC276919", Name: "PhonePe", Tagline: "UPI-based payment app", Sector: "FinTech", Stage: "Growth/Late Stage", Location: "Bangalore, India", Website: "https://phonepe.com"},
		{CIN: "U67190MH2016PTC279785", Name: "CRED", Tagline: "Credit card bill payments and rewards", Sector: "FinTech", Stage: "Series C+", Location: "Bangalore, India", Website: "https://cred.club"},
		{CIN: "U65993KA2013PTC069805", Name: "BharatPe", Tagline: "Payment solutions for merchants", Sector: "FinTech", Stage: "Series C+", Location: "Delhi, India", Website: "https://bharatpe.com"},
		{CIN: "U51909KA2012PTC066107", Name: "Flipkart", Tagline: "India's leading e-commerce marketplace", Sector: "E-commerce", Stage: "Growth/Late Stage", Location: "Bangalore, India", Website: "https://flipkart.com"},
		{CIN: "U52100KA2018PTC116662", Name: "Meesho", Tagline: "Social commerce platform", Sector: "E-commerce", Stage: "Series C+", Location: "Bangalore, India", Website: "https://meesho.com"},
		{CIN: "U74900HR2013PTC049809", Name: "Nykaa", Tagline: "Beauty and fashion e-commerce", Sector: "E-commerce", Stage: "Growth/Late Stage", Location: "Mumbai, India", Website: "https://nykaa.com"},
		{CIN: "U52190UP2015PTC074641", Name: "BigBasket", Tagline: "Online grocery delivery", Sector: "E-commerce", Stage: "Growth/Late Stage", Location: "Bangalore, India", Website: "https://bigbasket.com"},
		{CIN: "U72900KA2011PTC059936", Name: "Freshworks", Tagline: "Customer engagement software", Sector: "B2B SaaS", Stage: "Growth/Late Stage", Location: "Chennai, India", Website: "https://freshworks.com"},
		{CIN: "U72200KA2010PTC053850", Name: "Zoho", Tagline: "Business software suite", Sector: "B2B SaaS", Stage: "Growth/Late Stage", Location: "Chennai, India", Website: "https://zoho.com"},
		{CIN: "U74999MH2015PTC264713", Name: "Postman", Tagline: "API development platform", Sector: "Developer Tools", Stage: "Series C+", Location: "San Francisco, CA (India origin)", Website: "https://postman.com"},
		{CIN: "U72400KA2013PTC116215", Name: "Chargebee", Tagline: "Subscription billing platform", Sector: "B2B SaaS", Stage: "Series C+", Location: "Chennai, India", Website: "https://chargebee.com"},
		{CIN: "U80302KA2011PTC092551", Name: "BYJU'S", Tagline: "Learning app for students", Sector: "EdTech", Stage: "Growth/Late Stage", Location: "Bangalore, India", Website: "https://byjus.com"},
		{CIN: "U80903RJ2017PTC057573", Name: "Unacademy", Tagline: "Online learning platform", Sector: "EdTech", Stage: "Series C+", Location: "Bangalore, India", Website: "https://unacademy.com"},
		{CIN: "U80904MH2015PTC269239", Name: "upGrad", Tagline: "Higher education platform", Sector: "EdTech", Stage: "Series C+", Location: "Mumbai, India", Website: "https://upgrad.com"},
		{CIN: "U80903KA2019PTC125007", Name: "PhysicsWallah", Tagline: "Affordable online education", Sector: "EdTech", Stage: "Series A", Location: "Noida, India", Website: "https://physicswallah.live"},
		{CIN: "U74999MH2015PTC262940", Name: "PharmEasy", Tagline: "Online pharmacy and healthcare", Sector: "HealthTech", Stage: "Series C+", Location: "Mumbai, India", Website: "https://pharmeasy.in"},
		{CIN: "U85100KA2014PTC073062", Name: "Practo", Tagline: "Healthcare platform", Sector: "HealthTech", Stage: "Series C+", Location: "Bangalore, India", Website: "https://practo.com"},
		{CIN: "U51909MH2015PTC269385", Name: "1mg", Tagline: "Health super app", Sector: "HealthTech", Stage: "Growth/Late Stage", Location: "Gurugram, India", Website: "https://1mg.com"},
		{CIN: "U72900DL2019PTC349962", Name: "Yellow.ai", Tagline: "AI-powered customer engagement", Sector: "AI/ML", Stage: "Series C+", Location: "Bangalore, India", Website: "https://yellow.ai"},
		{CIN: "U72900KA2017PTC106358", Name: "Observe.AI", Tagline: "AI for contact centers", Sector: "AI/ML", Stage: "Series C+", Location: "San Francisco, CA (India origin)", Website: "https://observe.ai"},
		{CIN: "U55101KA2010PTC054958", Name: "Swiggy", Tagline: "Food delivery and quick commerce", Sector: "Marketplace", Stage: "Growth/Late Stage", Location: "Bangalore, India", Website: "https://swiggy.com"},
		{CIN: "U74999HR2008PTC037068", Name: "Zomato", Tagline: "Food delivery and restaurant discovery", Sector: "Marketplace", Stage: "Growth/Late Stage", Location: "Gurugram, India", Website: "https://zomato.com"},
	}
}
