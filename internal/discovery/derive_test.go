package discovery

import (
	"testing"

	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsForStage(t *testing.T) {
	m := MetricsForStage("Series A")
	assert.Equal(t, "$500K - $2M ARR", m.Revenue)
	assert.Equal(t, "Series A", m.Funding)

	// Unknown and empty stages fall back to Seed
	assert.Equal(t, "Seed", MetricsForStage("Series Z").Funding)
	assert.Equal(t, "Seed", MetricsForStage("").Funding)
}

func TestDeriveScoreBreakdown_Deterministic(t *testing.T) {
	a := DeriveScoreBreakdown("s1", 80, nil)
	b := DeriveScoreBreakdown("s1", 80, nil)
	assert.Equal(t, a, b)

	// Different IDs jitter differently
	c := DeriveScoreBreakdown("s2", 80, nil)
	assert.NotEqual(t, a, c)
}

func TestDeriveScoreBreakdown_Bounds(t *testing.T) {
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		bd := DeriveScoreBreakdown(id, 80, nil)
		for _, v := range []int{bd.Team, bd.Traction, bd.Market, bd.Fit} {
			assert.GreaterOrEqual(t, v, 73)
			assert.LessOrEqual(t, v, 87)
		}
	}

	// Clamped at the edges
	low := DeriveScoreBreakdown("x", 50, nil)
	assert.GreaterOrEqual(t, low.Team, 50)
	high := DeriveScoreBreakdown("x", 100, nil)
	assert.LessOrEqual(t, high.Team, 100)
}

func TestDeriveScoreBreakdown_FitScore(t *testing.T) {
	fit := 95.0
	bd := DeriveScoreBreakdown("s1", 80, &fit)
	assert.Equal(t, 95, bd.Fit)
}

func TestDeriveScoreBreakdown_ZeroScoreDefaults(t *testing.T) {
	bd := DeriveScoreBreakdown("s1", 0, nil)
	for _, v := range []int{bd.Team, bd.Traction, bd.Market, bd.Fit} {
		assert.GreaterOrEqual(t, v, 68)
		assert.LessOrEqual(t, v, 82)
	}
}

func TestNormalizeResult(t *testing.T) {
	fit := 75.0
	raw := types.DiscoveryResultResponse{
		ID:             "s1",
		Name:           "Acme",
		Sector:         "AI/ML",
		Stage:          "Seed",
		Location:       "San Francisco, CA",
		Website:        "https://acme.ai",
		DiscoveryScore: 80,
		FitScore:       &fit,
		Sources:        []types.DiscoverySourceRef{{Name: "yc", RelevanceScore: 0.8}},
	}

	s := normalizeResult(&raw)
	assert.Equal(t, "Acme", s.Name)
	assert.Equal(t, float64(80), s.Score)
	assert.Equal(t, "yc", s.Source)
	assert.Equal(t, types.DealStatusNew, s.DealStatus)
	assert.Equal(t, MetricsForStage("Seed"), s.Metrics)
	assert.Equal(t, []string{"AI/ML", "Seed", "San Francisco, CA"}, s.Signals)
	assert.Equal(t, "AI/ML startup", s.Tagline)
	assert.Contains(t, s.InvestorFit, "AI/ML")
}

func TestNormalizeResult_Defaults(t *testing.T) {
	raw := types.DiscoveryResultResponse{
		ID:          "s2",
		Name:        "Quiet Co",
		Sector:      "SaaS",
		Description: "Workflow software",
	}

	s := normalizeResult(&raw)
	require.Equal(t, float64(75), s.Score)
	assert.Equal(t, "Workflow software", s.Tagline)
	assert.Equal(t, "Unknown", s.Source)
	assert.Contains(t, s.InvestorFit, "early")
}
