// Package scoring rates startups on team, traction, market and thesis fit.
// Scores are heuristic; the weights favor team and traction the way early
// stage evaluation usually does.
package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/types"
)

// Component weights for the overall score.
const (
	weightTeam     = 0.30
	weightTraction = 0.25
	weightMarket   = 0.25
	weightFit      = 0.20
)

// Result holds the complete scoring output for one startup.
type Result struct {
	OverallScore       float64
	Breakdown          types.ScoreBreakdown
	UnicornProbability float64
	InvestorFit        string
}

// ScoreStartup computes the full score breakdown for a startup against an
// optional fund thesis.
func ScoreStartup(s *db.Startup, thesis *types.FundThesis) Result {
	team := scoreTeam(s)
	traction := scoreTraction(s)
	market := scoreMarket(s)
	fit := scoreFit(s, thesis)

	overall := team*weightTeam + traction*weightTraction + market*weightMarket + fit*weightFit

	return Result{
		OverallScore: round1(overall),
		Breakdown: types.ScoreBreakdown{
			Team:     int(round1(team)),
			Traction: int(round1(traction)),
			Market:   int(round1(market)),
			Fit:      int(round1(fit)),
		},
		UnicornProbability: round1(unicornProbability(s, team, traction, market)),
		InvestorFit:        fitDescription(s, thesis, fit),
	}
}

// FitScore rates how well a sector/stage pair matches the thesis. Used for
// discovery results where only coarse company data is available.
func FitScore(sector, stage string, thesis *types.FundThesis) float64 {
	score := 50.0
	if thesis == nil {
		return score
	}

	if len(thesis.Sectors) > 0 {
		for _, s := range thesis.Sectors {
			if s == sector || s == "Sector Agnostic" {
				score += 25
				break
			}
		}
	}
	if len(thesis.Stages) > 0 {
		for _, s := range thesis.Stages {
			if s == stage {
				score += 25
				break
			}
		}
	}
	return min100(score)
}

func scoreTeam(s *db.Startup) float64 {
	score := 50.0
	if len(s.Founders) == 0 {
		return score
	}

	for _, founder := range s.Founders {
		background := strings.ToLower(founder.Background)

		if containsAny(background, "google", "meta", "facebook", "amazon", "apple",
			"microsoft", "netflix", "deepmind", "openai", "stripe", "coinbase") {
			score += 10
		}
		if containsAny(background, "stanford", "mit", "harvard", "berkeley", "yale", "princeton") {
			score += 8
		}
		if containsAny(background, "phd", "ph.d") {
			score += 5
		}
		if containsAny(background, "serial", "exit") {
			score += 10
		}
		if containsAny(strings.ToLower(founder.Role), "cto", "technical") {
			score += 5
		}
		if founder.LinkedIn != "" {
			score += 2
		}
	}

	if len(s.Founders) >= 2 {
		score += 5
	}
	return min100(score)
}

func scoreTraction(s *db.Startup) float64 {
	score := 50.0
	if s.Metrics == nil {
		return score
	}

	if s.Metrics.Revenue != "" {
		revenue := strings.ToLower(s.Metrics.Revenue)
		switch {
		case strings.Contains(revenue, "m"):
			amount, err := parseAmount(revenue, "m")
			switch {
			case err != nil:
				score += 10
			case amount >= 10:
				score += 30
			case amount >= 5:
				score += 25
			case amount >= 1:
				score += 20
			default:
				score += 10
			}
		case strings.Contains(revenue, "k"):
			score += 5
		}
	}

	if s.Metrics.Growth != "" {
		raw := strings.TrimSpace(strings.NewReplacer("+", "", "%", "", "yoy", "", "YoY", "").Replace(s.Metrics.Growth))
		growth, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			score += 5
		case growth >= 200:
			score += 25
		case growth >= 100:
			score += 20
		case growth >= 50:
			score += 15
		default:
			score += 5
		}
	}

	if s.Metrics.Users != "" {
		users := strings.ToLower(s.Metrics.Users)
		if containsAny(users, "enterprise", "fortune") {
			score += 15
		} else if containsAny(users, "client", "customer") {
			score += 10
		}
	}

	for _, signal := range s.Signals {
		sl := strings.ToLower(signal)
		if containsAny(sl, "y combinator", "yc") {
			score += 10
		}
		if containsAny(sl, "techcrunch", "featured") {
			score += 5
		}
		if strings.Contains(sl, "partnership") {
			score += 8
		}
		if containsAny(sl, "grew", "growth") {
			score += 5
		}
	}

	return min100(score)
}

// hotSectors get a market bonus reflecting current funding appetite.
var hotSectors = []struct {
	name  string
	bonus float64
}{
	{"ai/ml", 15},
	{"ai", 15},
	{"climate tech", 15},
	{"healthtech", 12},
	{"fintech", 12},
	{"cybersecurity", 12},
	{"biotech", 12},
	{"enterprise saas", 10},
	{"developer tools", 10},
	{"crypto", 8},
}

func scoreMarket(s *db.Startup) float64 {
	score := 60.0

	sector := strings.ToLower(s.Sector)
	for _, hs := range hotSectors {
		if strings.Contains(sector, hs.name) {
			score += hs.bonus
			break
		}
	}

	// Earlier stage means more upside
	stageBonus := []struct {
		name  string
		bonus float64
	}{
		{"pre-seed", 10},
		{"seed", 8},
		{"series a", 5},
		{"series b", 3},
		{"series c", 2},
	}
	stage := strings.ToLower(s.Stage)
	for _, sb := range stageBonus {
		if strings.Contains(stage, sb.name) {
			score += sb.bonus
			break
		}
	}

	location := strings.ToLower(s.Location)
	if containsAny(location, "san francisco", "new york", "boston", "austin", "seattle", "london") {
		score += 5
	}

	if s.YCBatch != "" {
		score += 10
	}

	return min100(score)
}

func scoreFit(s *db.Startup, thesis *types.FundThesis) float64 {
	if thesis == nil {
		return 70.0
	}

	score := 50.0
	sector := strings.ToLower(s.Sector)
	stage := strings.ToLower(s.Stage)
	location := strings.ToLower(s.Location)

	for _, ts := range thesis.Sectors {
		tsl := strings.ToLower(ts)
		if strings.Contains(sector, tsl) || strings.Contains(tsl, sector) {
			score += 20
			break
		}
	}
	for _, tst := range thesis.Stages {
		if strings.Contains(stage, strings.ToLower(tst)) {
			score += 20
			break
		}
	}
	for _, geo := range thesis.Geographies {
		if strings.Contains(location, strings.ToLower(geo)) {
			score += 15
			break
		}
	}
	for _, breaker := range thesis.DealBreakers {
		if strings.Contains(sector, strings.ToLower(breaker)) {
			score -= 30
			break
		}
	}

	if score < 0 {
		return 0
	}
	return min100(score)
}

func unicornProbability(s *db.Startup, team, traction, market float64) float64 {
	prob := (team*0.35 + traction*0.35 + market*0.30) * 0.9

	if s.YCBatch != "" {
		prob += 15
	}
	if len(s.Sources) >= 3 {
		prob += 5
	}
	if len(s.Signals) >= 4 {
		prob += 5
	}

	if prob > 99 {
		return 99
	}
	return prob
}

func fitDescription(s *db.Startup, thesis *types.FundThesis, fitScore float64) string {
	if thesis == nil {
		return fmt.Sprintf("Score: %.0f/100. Configure your fund thesis for personalized fit analysis.", fitScore)
	}

	var matches []string
	sector := strings.ToLower(s.Sector)
	stage := strings.ToLower(s.Stage)
	location := strings.ToLower(s.Location)

	for _, ts := range thesis.Sectors {
		tsl := strings.ToLower(ts)
		if strings.Contains(sector, tsl) || strings.Contains(tsl, sector) {
			matches = append(matches, ts+" thesis")
			break
		}
	}
	for _, tst := range thesis.Stages {
		if strings.Contains(stage, strings.ToLower(tst)) {
			matches = append(matches, tst+" stage")
			break
		}
	}
	for _, geo := range thesis.Geographies {
		if strings.Contains(location, strings.ToLower(geo)) {
			matches = append(matches, geo+" geography")
			break
		}
	}

	var prefix string
	switch {
	case fitScore >= 85:
		prefix = "Perfect match"
	case fitScore >= 70:
		prefix = "Strong fit"
	case fitScore >= 50:
		prefix = "Moderate fit"
	default:
		prefix = "Limited fit"
	}

	if len(matches) > 0 {
		return prefix + ": " + strings.Join(matches, ", ")
	}
	return fmt.Sprintf("%s: %s in %s", prefix, s.Sector, s.Stage)
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func parseAmount(revenue, unit string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", unit, "", "arr", "").Replace(revenue)
	return strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
