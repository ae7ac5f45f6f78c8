package research

import "strings"

// signalKeywords maps signal categories to the phrases that indicate them.
// Order matters: the first matching category wins.
var signalKeywords = []struct {
	signal   string
	keywords []string
}{
	{"funding", []string{"raised", "funding round", "series a", "series b", "series c", "seed round", "pre-seed", "valuation", "investment"}},
	{"launch", []string{"launches", "launched", "unveils", "releases", "announces new", "introduces", "debuts"}},
	{"hiring", []string{"hiring", "is growing", "new cto", "new ceo", "joins as", "expands team", "headcount"}},
	{"partnership", []string{"partners with", "partnership", "teams up", "collaboration with", "acquires", "acquired by"}},
}

// classifySignal categorizes a search result by its title and snippet.
// Results with no recognized signal return "press".
func classifySignal(title, snippet string) string {
	text := strings.ToLower(title + " " + snippet)
	for _, group := range signalKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.signal
			}
		}
	}
	return "press"
}

// summarizeSignals produces short human-readable signal lines from classified
// news, at most one per category, strongest categories first.
func summarizeSignals(news []NewsItem) []string {
	labels := map[string]string{
		"funding":     "Recent funding activity",
		"launch":      "Recently launched a product",
		"hiring":      "Actively hiring",
		"partnership": "New partnership or M&A activity",
	}
	order := []string{"funding", "launch", "hiring", "partnership"}

	seen := make(map[string]bool)
	for _, item := range news {
		seen[item.Signal] = true
	}

	var signals []string
	for _, sig := range order {
		if seen[sig] {
			signals = append(signals, labels[sig])
		}
	}
	return signals
}
