package discovery

import (
	"fmt"
	"hash/fnv"

	"github.com/harper/dealflow/internal/types"
)

// stageMetrics maps a funding stage to the headline figure ranges shown for
// startups at that stage. Unknown or empty stages use the Seed row.
var stageMetrics = map[string]types.Metrics{
	"Pre-Seed": {
		Revenue: "$0 - $50K ARR",
		Growth:  "10x+ (early)",
		Users:   "100 - 1K",
		Funding: "Pre-Seed",
	},
	"Seed": {
		Revenue: "$50K - $500K ARR",
		Growth:  "3x - 5x YoY",
		Users:   "1K - 10K",
		Funding: "Seed",
	},
	"Series A": {
		Revenue: "$500K - $2M ARR",
		Growth:  "2x - 3x YoY",
		Users:   "10K - 100K",
		Funding: "Series A",
	},
	"Series B": {
		Revenue: "$2M - $10M ARR",
		Growth:  "80% - 150% YoY",
		Users:   "100K - 500K",
		Funding: "Series B",
	},
	"Series C": {
		Revenue: "$10M - $50M ARR",
		Growth:  "50% - 100% YoY",
		Users:   "500K - 2M",
		Funding: "Series C",
	},
	"Growth/Late Stage": {
		Revenue: "$50M+ ARR",
		Growth:  "30% - 50% YoY",
		Users:   "2M+",
		Funding: "Late Stage",
	},
}

// MetricsForStage returns the display metrics bundle for a funding stage.
func MetricsForStage(stage string) types.Metrics {
	if m, ok := stageMetrics[stage]; ok {
		return m
	}
	return stageMetrics["Seed"]
}

// DeriveScoreBreakdown synthesizes per-dimension sub-scores around the
// discovery score. The jitter is seeded from the result ID and score so the
// same input always yields the same breakdown. Each dimension lands within
// ±7 of the base score, clamped to [50, 100].
func DeriveScoreBreakdown(id string, score float64, fitScore *float64) types.ScoreBreakdown {
	base := score
	if base == 0 {
		base = 75
	}

	breakdown := types.ScoreBreakdown{
		Team:     jitteredScore(id, "team", base),
		Traction: jitteredScore(id, "traction", base),
		Market:   jitteredScore(id, "market", base),
	}
	if fitScore != nil && *fitScore > 0 {
		breakdown.Fit = clampScore(int(*fitScore))
	} else {
		breakdown.Fit = jitteredScore(id, "fit", base)
	}
	return breakdown
}

// jitteredScore offsets the base score by a value in [-7, +7] derived from a
// hash of the result ID and dimension name.
func jitteredScore(id, dimension string, base float64) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%s:%.0f", id, dimension, base)
	offset := int(h.Sum32()%15) - 7
	return clampScore(int(base) + offset)
}

func clampScore(v int) int {
	if v < 50 {
		return 50
	}
	if v > 100 {
		return 100
	}
	return v
}

// normalizeResult maps one raw backend row into a DiscoveredStartup.
func normalizeResult(r *types.DiscoveryResultResponse) DiscoveredStartup {
	score := r.DiscoveryScore
	if score == 0 {
		score = 75
	}

	tagline := r.Tagline
	if tagline == "" {
		tagline = r.Description
	}
	if tagline == "" {
		tagline = fmt.Sprintf("%s startup", r.Sector)
	}

	source := "Unknown"
	if len(r.Sources) > 0 && r.Sources[0].Name != "" {
		source = r.Sources[0].Name
	}

	signals := make([]string, 0, 3)
	for _, s := range []string{r.Sector, r.Stage, r.Location} {
		if s != "" {
			signals = append(signals, s)
		}
	}

	stage := r.Stage
	if stage == "" {
		stage = "early"
	}

	return DiscoveredStartup{
		ID:             r.ID,
		Name:           r.Name,
		Sector:         r.Sector,
		Stage:          r.Stage,
		Location:       r.Location,
		Website:        r.Website,
		Description:    r.Description,
		Tagline:        tagline,
		Score:          score,
		FitScore:       r.FitScore,
		ScoreBreakdown: DeriveScoreBreakdown(r.ID, r.DiscoveryScore, r.FitScore),
		Metrics:        MetricsForStage(r.Stage),
		Sources:        r.Sources,
		Source:         source,
		Signals:        signals,
		InvestorFit:    fmt.Sprintf("Strong match based on %s sector and %s stage focus", r.Sector, stage),
		DealStatus:     types.DealStatusNew,
		IsSaved:        r.IsSaved,
	}
}
