package outreach

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/llm"
	"github.com/harper/dealflow/internal/schemas"
	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM returns a canned response or error.
type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

func testStartup() *db.Startup {
	return &db.Startup{
		Name:    "Acme Robotics",
		Tagline: "Robots for warehouses",
		Sector:  "AI/ML",
		Stage:   "Seed",
		Founders: []types.Founder{
			{Name: "Dana Reyes", Role: "CEO"},
		},
		Signals: []string{"Closed $2M seed round"},
	}
}

func testUser() *db.User {
	return &db.User{
		FullName: "Jordan Hale",
		Company:  "Hale Ventures",
		Role:     "Partner",
		Thesis: &types.FundThesis{
			Sectors: []string{"AI/ML", "FinTech"},
			Stages:  []string{"Seed"},
		},
	}
}

func TestGenerate_WithAI(t *testing.T) {
	client := &fakeLLM{response: `{"subject": "Impressed by Acme Robotics", "body": "Hi Dana, I came across Acme Robotics and would love to chat about your seed round."}`}
	g := NewGenerator(client, false)

	msg, err := g.Generate(context.Background(), testStartup(), testUser(), Options{Type: "email", Tone: "professional", IncludeThesisFit: true})
	require.NoError(t, err)

	assert.Equal(t, "Impressed by Acme Robotics", msg.Subject)
	assert.Contains(t, msg.Body, "Dana")
	assert.True(t, msg.IsAIGenerated)
	assert.Equal(t, 85.0, msg.PersonalizationScore)
}

func TestGenerate_AIFailureFallsBackToTemplate(t *testing.T) {
	client := &fakeLLM{err: errors.New("quota exceeded")}
	g := NewGenerator(client, false)

	msg, err := g.Generate(context.Background(), testStartup(), testUser(), Options{Type: "email", Tone: "professional"})
	require.NoError(t, err)

	assert.False(t, msg.IsAIGenerated)
	assert.Equal(t, 65.0, msg.PersonalizationScore)
	assert.Contains(t, msg.Subject, "Acme Robotics")
	assert.Contains(t, msg.Body, "Dana Reyes")
}

func TestGenerate_InvalidAIOutputFallsBack(t *testing.T) {
	// Body too short for the schema
	client := &fakeLLM{response: `{"subject": "Hi", "body": "short"}`}
	g := NewGenerator(client, false)

	msg, err := g.Generate(context.Background(), testStartup(), testUser(), Options{})
	require.NoError(t, err)
	assert.False(t, msg.IsAIGenerated)
}

func TestGenerate_NoLLMUsesTemplate(t *testing.T) {
	g := NewGenerator(nil, false)

	msg, err := g.Generate(context.Background(), testStartup(), testUser(), Options{Tone: "friendly"})
	require.NoError(t, err)

	assert.Contains(t, msg.Subject, "Big fan")
	assert.Contains(t, msg.Body, "closed $2m seed round")
}

func TestGenerate_LinkedInTemplateHasNoSubject(t *testing.T) {
	g := NewGenerator(nil, false)

	msg, err := g.Generate(context.Background(), testStartup(), testUser(), Options{Type: "linkedin"})
	require.NoError(t, err)

	assert.Empty(t, msg.Subject)
	assert.Contains(t, msg.Body, "Hale Ventures")
}

func TestGenerate_NoFounderUsesPlaceholder(t *testing.T) {
	g := NewGenerator(nil, false)
	s := testStartup()
	s.Founders = nil

	msg, err := g.Generate(context.Background(), s, testUser(), Options{})
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Hi Founder,")
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, schemas.Validate(messageSchema, `{"subject": "s", "body": "a body long enough to pass validation"}`))
	assert.Error(t, schemas.Validate(messageSchema, `{"subject": "s"}`))
	assert.Error(t, schemas.Validate(messageSchema, `not json`))
}

func TestTemplates(t *testing.T) {
	templates := Templates()
	require.Len(t, templates, 4)
	assert.Equal(t, "initial_outreach", templates[0].ID)
}

func TestOptionsNormalize(t *testing.T) {
	o := Options{Type: "carrier-pigeon", Tone: "sarcastic"}
	o.normalize()
	assert.Equal(t, "email", o.Type)
	assert.Equal(t, "professional", o.Tone)
}
