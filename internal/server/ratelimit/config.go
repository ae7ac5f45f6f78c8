package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Limit is a request budget: Requests per Window, with Burst capping how
// many may arrive back to back. Burst defaults to Requests; a zero Requests
// means unlimited.
type Limit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Rule binds a budget to an endpoint. A Path ending in "/" matches as a
// prefix, covering routes that carry a trailing ID.
type Rule struct {
	Path   string
	Method string
	Limit  Limit
}

// Config controls the limiter. AlwaysAllow and AlwaysDeny are keyed by
// client ID and checked before any budget.
type Config struct {
	Enabled       bool
	Default       Limit
	SweepInterval time.Duration
	AlwaysAllow   map[string]bool
	AlwaysDeny    map[string]bool
	Rules         []Rule
}

// limitFor resolves a request to its budget: exact rule first, then prefix
// rules, then the default.
func (c *Config) limitFor(path, method string) Limit {
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method == method && r.Path == path {
			return r.Limit
		}
	}
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r.Limit
		}
	}
	return c.Default
}

// LoadConfig reads limiter settings from the environment and attaches the
// default endpoint rules.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{}
	}

	return &Config{
		Enabled: true,
		Default: Limit{
			Requests: envInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
			Window:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		},
		SweepInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		AlwaysAllow:   splitClients(os.Getenv("RATE_LIMIT_WHITELIST")),
		AlwaysDeny:    splitClients(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Rules:         DefaultRules(),
	}
}

// DefaultRules tiers the API. Discovery runs and LLM outreach generation
// are the expensive calls and get hourly budgets; auth endpoints get
// brute-force budgets; writes get a per-minute budget. Reads fall through
// to the default, and the health check is unlimited.
func DefaultRules() []Rule {
	write := Limit{Requests: 100, Window: time.Minute, Burst: 10}

	return []Rule{
		{Path: "/health", Method: "GET"},

		{Path: "/api/v1/discovery/run", Method: "POST", Limit: Limit{Requests: 10, Window: time.Hour, Burst: 2}},
		{Path: "/api/v1/outreach/generate", Method: "POST", Limit: Limit{Requests: 30, Window: time.Hour, Burst: 5}},

		{Path: "/api/v1/auth/register", Method: "POST", Limit: Limit{Requests: 20, Window: time.Hour, Burst: 5}},
		{Path: "/api/v1/auth/login", Method: "POST", Limit: Limit{Requests: 30, Window: 15 * time.Minute, Burst: 5}},
		{Path: "/api/v1/auth/refresh", Method: "POST", Limit: Limit{Requests: 60, Window: time.Hour, Burst: 10}},

		{Path: "/api/v1/startups", Method: "POST", Limit: write},
		{Path: "/api/v1/startups/", Method: "PUT", Limit: write},
		{Path: "/api/v1/startups/", Method: "DELETE", Limit: write},
		{Path: "/api/v1/deals", Method: "POST", Limit: write},
		{Path: "/api/v1/deals/", Method: "POST", Limit: write},
		{Path: "/api/v1/deals/", Method: "PUT", Limit: write},
		{Path: "/api/v1/deals/", Method: "DELETE", Limit: write},
		{Path: "/api/v1/outreach", Method: "POST", Limit: write},
		{Path: "/api/v1/outreach/", Method: "PUT", Limit: write},
		{Path: "/api/v1/outreach/", Method: "DELETE", Limit: write},
	}
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitClients parses a comma-separated client list into a lookup set.
func splitClients(list string) map[string]bool {
	set := make(map[string]bool)
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = true
		}
	}
	return set
}
