// Package llm provides the Gemini client used for outreach drafting and
// company profile summarization.
package llm

import "os"

// ModelTier selects a capability level rather than a concrete model name,
// so callers don't hardcode provider model strings.
type ModelTier string

const (
	// TierLite is for cheap tasks: subject lines, short summaries
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: outreach email drafting
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form reasoning: investment memos
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model mapping for the application
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping. The standard
// tier can be overridden with GEMINI_MODEL for local experimentation.
func DefaultConfig() *Config {
	cfg := &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
	if override := os.Getenv("GEMINI_MODEL"); override != "" {
		cfg.Models[TierStandard] = override
	}
	return cfg
}

// GetModel returns the model name for a given tier, falling back
// to standard, then lite, when the tier has no mapping.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the Config with one tier remapped
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{Models: make(map[ModelTier]string, len(c.Models))}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
