package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_OutreachMessage(t *testing.T) {
	valid := `{"subject": "Investment interest", "body": "Hi there, I came across your company and would love to chat about what you are building."}`
	require.NoError(t, Validate("outreach_message.schema.json", valid))
}

func TestValidate_MissingBody(t *testing.T) {
	err := Validate("outreach_message.schema.json", `{"subject": "Hello"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body")
}

func TestValidate_BodyTooShort(t *testing.T) {
	err := Validate("outreach_message.schema.json", `{"body": "too short"}`)
	require.Error(t, err)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestValidate_InvalidJSON(t *testing.T) {
	err := Validate("outreach_message.schema.json", `{not json`)
	require.Error(t, err)
}
