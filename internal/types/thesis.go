// Package types provides type definitions for structured data shared between
// the DealFlow server, API client and CLI.
package types

// FundThesis is the user-configured investment criteria used as default
// discovery filters.
type FundThesis struct {
	FundName          string   `json:"fund_name,omitempty"`
	FundSize          string   `json:"fund_size,omitempty"`
	PortfolioSize     string   `json:"portfolio_size,omitempty"`
	CheckSize         string   `json:"check_size,omitempty"`
	CheckSizeMin      *int     `json:"check_size_min,omitempty"` // in $K
	CheckSizeMax      *int     `json:"check_size_max,omitempty"` // in $K
	Sectors           []string `json:"sectors,omitempty"`
	Stages            []string `json:"stages,omitempty"`
	Geographies       []string `json:"geographies,omitempty"`
	ThesisDescription string   `json:"thesis_description,omitempty"`
	KeyMetrics        []string `json:"key_metrics,omitempty"`
	DealBreakers      []string `json:"deal_breakers,omitempty"`
}

// IsZero reports whether no thesis criteria have been configured.
func (t *FundThesis) IsZero() bool {
	if t == nil {
		return true
	}
	return len(t.Sectors) == 0 && len(t.Stages) == 0 && len(t.Geographies) == 0 &&
		t.FundName == "" && t.ThesisDescription == ""
}
