// Package research looks up recent public information about a startup via
// Google Custom Search and distills it into deal signals.
package research

// NewsItem is a single search result about a startup.
type NewsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
	Signal  string `json:"signal,omitempty"` // funding, launch, hiring, partnership, press
}

// Report is the assembled research output for one startup.
type Report struct {
	StartupName string     `json:"startup_name"`
	Website     string     `json:"website,omitempty"`
	News        []NewsItem `json:"news"`
	Signals     []string   `json:"signals"`
}
