package research

import (
	"net/url"
	"strings"
)

// skipDomains are aggregators and social profiles that restate information we
// already hold from ingestion, so their results add no new signal.
var skipDomains = map[string]bool{
	"linkedin.com":   true,
	"facebook.com":   true,
	"x.com":          true,
	"twitter.com":    true,
	"instagram.com":  true,
	"glassdoor.com":  true,
	"indeed.com":     true,
	"wikipedia.org":  true,
	"youtube.com":    true,
	"pitchbook.com":  true,
	"zoominfo.com":   true,
	"crunchbase.com": true,
}

// resultDomain extracts the registrable-ish domain from a result URL.
// Unparseable URLs return "".
func resultDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		host = strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// filterNews drops aggregator domains and results that never mention the
// startup, then dedupes to one result per domain.
func filterNews(items []NewsItem, startupName string) []NewsItem {
	name := strings.ToLower(startupName)
	seen := make(map[string]bool)

	var kept []NewsItem
	for _, item := range items {
		if item.Domain == "" || skipDomains[item.Domain] {
			continue
		}
		text := strings.ToLower(item.Title + " " + item.Snippet)
		if name != "" && !strings.Contains(text, name) {
			continue
		}
		if seen[item.Domain] {
			continue
		}
		seen[item.Domain] = true
		kept = append(kept, item)
	}
	return kept
}
