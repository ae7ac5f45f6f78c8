package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected Platform
	}{
		{"yc companies", "https://www.ycombinator.com/companies/acme", PlatformYC},
		{"wellfound", "https://wellfound.com/company/acme", PlatformWellfound},
		{"legacy angellist", "https://angel.co/company/acme", PlatformWellfound},
		{"crunchbase", "https://www.crunchbase.com/organization/acme", PlatformCrunchbase},
		{"unknown host", "https://example.com/acme", PlatformUnknown},
		{"garbage", "://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	assert.Contains(t, PlatformContentSelectors(PlatformYC), ".prose")
	assert.Contains(t, PlatformContentSelectors(PlatformWellfound), "[data-test='StartupHeader']")
	assert.Contains(t, PlatformContentSelectors(PlatformCrunchbase), "#about_section")

	// Unknown platforms fall back to the generic profile selectors
	assert.Equal(t, StartupProfileSelectors(), PlatformContentSelectors(PlatformUnknown))
}

func TestPlatformNoiseSelectors(t *testing.T) {
	common := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, common, ".cookie-banner")

	wellfound := PlatformNoiseSelectors(PlatformWellfound)
	assert.Contains(t, wellfound, ".apply-section")
	assert.Contains(t, wellfound, ".cookie-banner")
}

func TestNeedsBrowser(t *testing.T) {
	assert.True(t, NeedsBrowser("too short"))
	assert.True(t, NeedsBrowser(""))

	long := make([]byte, minStaticText+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, NeedsBrowser(string(long)))
}
