package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.techcrunch.com/2026/01/acme-raises", "techcrunch.com"},
		{"https://blog.acme.io/launch", "acme.io"},
		{"http://acme.io", "acme.io"},
		{"not a url", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resultDomain(tt.url), tt.url)
	}
}

func TestFilterNews_DropsAggregatorsAndUnrelated(t *testing.T) {
	items := []NewsItem{
		{Title: "Acme raises $5M seed", URL: "https://techcrunch.com/a", Domain: "techcrunch.com", Snippet: "Acme announced"},
		{Title: "Acme | LinkedIn", URL: "https://linkedin.com/company/acme", Domain: "linkedin.com"},
		{Title: "Top 10 startups to watch", URL: "https://forbes.com/list", Domain: "forbes.com", Snippet: "none of them relevant"},
		{Title: "Acme launches v2", URL: "https://techcrunch.com/b", Domain: "techcrunch.com", Snippet: "Acme shipped"},
	}

	kept := filterNews(items, "Acme")
	assert.Len(t, kept, 1)
	assert.Equal(t, "Acme raises $5M seed", kept[0].Title)
}

func TestFilterNews_OnePerDomain(t *testing.T) {
	items := []NewsItem{
		{Title: "Acme story one", Domain: "news.example", Snippet: "about acme"},
		{Title: "Acme story two", Domain: "news.example", Snippet: "more acme"},
		{Title: "Acme story three", Domain: "other.example", Snippet: "acme again"},
	}
	kept := filterNews(items, "Acme")
	assert.Len(t, kept, 2)
}

func TestClassifySignal(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Acme raises $5M Series A led by XYZ", "funding"},
		{"Acme launches AI copilot for accountants", "launch"},
		{"Acme is hiring across engineering", "hiring"},
		{"Acme partners with BigCo on payments", "partnership"},
		{"An interview with the Acme founders", "press"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifySignal(tt.title, ""), tt.title)
	}
}

func TestSummarizeSignals_OrderedAndDeduped(t *testing.T) {
	news := []NewsItem{
		{Signal: "launch"},
		{Signal: "funding"},
		{Signal: "funding"},
		{Signal: "press"},
	}
	signals := summarizeSignals(news)
	assert.Equal(t, []string{"Recent funding activity", "Recently launched a product"}, signals)
}
