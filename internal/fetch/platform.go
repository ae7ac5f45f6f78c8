// Package fetch - platform.go provides source platform detection and selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known startup listing platform.
type Platform string

const (
	// PlatformYC is the Y Combinator company directory
	PlatformYC Platform = "yc"
	// PlatformWellfound is the Wellfound (formerly AngelList Talent) platform
	PlatformWellfound Platform = "wellfound"
	// PlatformCrunchbase is the Crunchbase platform
	PlatformCrunchbase Platform = "crunchbase"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the startup listing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "ycombinator.com") {
		return PlatformYC
	}

	if strings.Contains(host, "wellfound.com") ||
		strings.Contains(host, "angel.co") {
		return PlatformWellfound
	}

	if strings.Contains(host, "crunchbase.com") {
		return PlatformCrunchbase
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformYC:
		return []string{
			".company-section",
			"section.relative",
			".prose",
			"main",
		}
	case PlatformWellfound:
		return []string{
			"[data-test='StartupHeader']",
			".styles_component__profile",
			".startup-overview",
			"main",
		}
	case PlatformCrunchbase:
		return []string{
			".profile-section",
			"#about_section",
			".description",
			"main",
		}
	default:
		return StartupProfileSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Signup and paywall prompts
		"form",
		".signup-prompt",
		".paywall",
		".upsell",
		"[data-testid='signup-modal']",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformWellfound:
		return append(common,
			".styles_component__jobListings",
			".apply-section",
			"[data-test='JobSearchResults']",
		)
	case PlatformCrunchbase:
		return append(common,
			".premium-prompt",
			".pro-upsell",
			"chart-container",
		)
	default:
		return common
	}
}
