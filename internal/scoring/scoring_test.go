package scoring

import (
	"testing"

	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestScoreStartup_NoData(t *testing.T) {
	result := ScoreStartup(&db.Startup{Name: "Bare"}, nil)

	// Base scores: team 50, traction 50, market 60, fit 70 (no thesis)
	assert.Equal(t, 50, result.Breakdown.Team)
	assert.Equal(t, 50, result.Breakdown.Traction)
	assert.Equal(t, 60, result.Breakdown.Market)
	assert.Equal(t, 70, result.Breakdown.Fit)
	assert.InDelta(t, 56.5, result.OverallScore, 0.1)
	assert.Contains(t, result.InvestorFit, "Configure your fund thesis")
}

func TestScoreStartup_StrongTeam(t *testing.T) {
	s := &db.Startup{
		Name: "Acme",
		Founders: []types.Founder{
			{Name: "A", Role: "CTO", Background: "ex-Google, Stanford PhD", LinkedIn: "https://linkedin.com/in/a"},
			{Name: "B", Role: "CEO", Background: "serial entrepreneur, two exits"},
		},
	}
	result := ScoreStartup(s, nil)

	// 50 + (10 google + 8 stanford + 5 phd + 5 cto + 2 linkedin) + (10 serial) + 5 multi-founder
	assert.Greater(t, result.Breakdown.Team, 90)
}

func TestScoreStartup_Traction(t *testing.T) {
	s := &db.Startup{
		Name: "Acme",
		Metrics: &types.Metrics{
			Revenue: "$12M ARR",
			Growth:  "+250% YoY",
			Users:   "Fortune 500 enterprises",
		},
		Signals: []string{"Y Combinator W24", "Featured in TechCrunch"},
	}
	result := ScoreStartup(s, nil)

	// 50 + 30 revenue + 25 growth + 15 users + signals, capped at 100
	assert.Equal(t, 100, result.Breakdown.Traction)
}

func TestScoreStartup_MarketCapped(t *testing.T) {
	s := &db.Startup{
		Name:     "Acme",
		Sector:   "AI/ML",
		Stage:    "Pre-Seed",
		Location: "San Francisco, CA",
		YCBatch:  "W24",
	}
	result := ScoreStartup(s, nil)

	// 60 + 15 hot sector + 10 pre-seed + 5 location + 10 yc = 100
	assert.Equal(t, 100, result.Breakdown.Market)
}

func TestScoreStartup_ThesisFit(t *testing.T) {
	s := &db.Startup{Name: "Acme", Sector: "FinTech", Stage: "Seed", Location: "Austin, TX"}
	thesis := &types.FundThesis{
		Sectors:     []string{"FinTech"},
		Stages:      []string{"Seed"},
		Geographies: []string{"Austin"},
	}
	result := ScoreStartup(s, thesis)

	// 50 + 20 sector + 20 stage + 15 geography = 100+ capped
	assert.Equal(t, 100, result.Breakdown.Fit)
	assert.Contains(t, result.InvestorFit, "Perfect match")
	assert.Contains(t, result.InvestorFit, "FinTech thesis")
}

func TestScoreStartup_DealBreaker(t *testing.T) {
	s := &db.Startup{Name: "Acme", Sector: "Gaming", Stage: "Seed"}
	thesis := &types.FundThesis{
		Sectors:      []string{"FinTech"},
		DealBreakers: []string{"Gaming"},
	}
	result := ScoreStartup(s, thesis)

	// 50 - 30 deal breaker = 20
	assert.Equal(t, 20, result.Breakdown.Fit)
	assert.Contains(t, result.InvestorFit, "Limited fit")
}

func TestUnicornProbability_Capped(t *testing.T) {
	s := &db.Startup{
		Name:    "Acme",
		YCBatch: "W24",
		Sources: []types.DiscoverySourceRef{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Signals: []string{"1", "2", "3", "4"},
		Founders: []types.Founder{
			{Background: "ex-Google Stanford PhD serial exit", Role: "CTO", LinkedIn: "x"},
			{Background: "ex-Stripe MIT"},
		},
		Metrics: &types.Metrics{Revenue: "$20M", Growth: "300%", Users: "enterprise"},
		Sector:  "AI/ML",
		Stage:   "Seed",
	}
	result := ScoreStartup(s, nil)
	assert.LessOrEqual(t, result.UnicornProbability, 99.0)
	assert.Greater(t, result.UnicornProbability, 90.0)
}

func TestFitScore(t *testing.T) {
	thesis := &types.FundThesis{Sectors: []string{"FinTech"}, Stages: []string{"Seed"}}

	assert.Equal(t, 100.0, FitScore("FinTech", "Seed", thesis))
	assert.Equal(t, 75.0, FitScore("FinTech", "Series B", thesis))
	assert.Equal(t, 50.0, FitScore("Gaming", "Series B", thesis))
	assert.Equal(t, 50.0, FitScore("FinTech", "Seed", nil))

	agnostic := &types.FundThesis{Sectors: []string{"Sector Agnostic"}}
	assert.Equal(t, 75.0, FitScore("Anything", "Seed", agnostic))
}
