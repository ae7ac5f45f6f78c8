package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompt(t *testing.T) {
	prompt, err := Get("outreach.json", "generate_header")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Founder}}")
	assert.Contains(t, prompt, "{{.Company}}")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("outreach.json", "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "anything")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Write a {{.Tone}} {{.Type}} message to {{.Founder}}.", map[string]string{
		"Tone":    "friendly",
		"Type":    "email",
		"Founder": "Jamie",
	})
	assert.Equal(t, "Write a friendly email message to Jamie.", out)
}

func TestFormat_MissingKeyLeftIntact(t *testing.T) {
	out := Format("Hello {{.Name}}", map[string]string{})
	assert.Equal(t, "Hello {{.Name}}", out)
}

func TestMustGet(t *testing.T) {
	assert.NotPanics(t, func() {
		MustGet("outreach.json", "generate_instructions")
	})
	assert.Panics(t, func() {
		MustGet("outreach.json", "nope")
	})
}
