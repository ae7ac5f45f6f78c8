// Package outreach generates personalized founder outreach messages.
// Messages are drafted with the LLM when a client is configured and fall
// back to tone-specific templates otherwise.
package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/llm"
	"github.com/harper/dealflow/internal/prompts"
	"github.com/harper/dealflow/internal/schemas"
)

// messageSchema names the embedded schema generated messages must satisfy.
const messageSchema = "outreach_message.schema.json"

// Message is a generated outreach draft.
type Message struct {
	Subject              string  `json:"subject"`
	Body                 string  `json:"body"`
	PersonalizationScore float64 `json:"personalization_score"`
	IsAIGenerated        bool    `json:"is_ai_generated"`
}

// Options controls message generation.
type Options struct {
	Type             string // "email" or "linkedin"
	Tone             string // "professional" or "friendly"
	IncludeThesisFit bool
	CustomNotes      string
}

func (o *Options) normalize() {
	if o.Type != "linkedin" {
		o.Type = "email"
	}
	if o.Tone != "friendly" {
		o.Tone = "professional"
	}
}

// Generator drafts outreach messages.
type Generator struct {
	llm     llm.Client
	verbose bool
}

// NewGenerator creates a generator. client may be nil, in which case only
// template generation is available.
func NewGenerator(client llm.Client, verbose bool) *Generator {
	return &Generator{llm: client, verbose: verbose}
}

// Generate drafts an outreach message to the startup's first founder.
func (g *Generator) Generate(ctx context.Context, startup *db.Startup, user *db.User, opts Options) (*Message, error) {
	opts.normalize()

	founderName := "Founder"
	if len(startup.Founders) > 0 && startup.Founders[0].Name != "" {
		founderName = startup.Founders[0].Name
	}

	if g.llm != nil {
		msg, err := g.generateWithAI(ctx, startup, user, founderName, opts)
		if err == nil {
			return msg, nil
		}
		if g.verbose {
			log.Printf("[OUTREACH] AI generation failed, using template: %v", err)
		}
	}

	return g.generateFromTemplate(startup, user, founderName, opts), nil
}

func (g *Generator) generateWithAI(ctx context.Context, startup *db.Startup, user *db.User, founderName string, opts Options) (*Message, error) {
	prompt := buildPrompt(startup, user, founderName, opts)

	raw, err := g.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	if err := schemas.Validate(messageSchema, raw); err != nil {
		return nil, fmt.Errorf("generated message failed validation: %w", err)
	}

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("failed to parse generated message: %w", err)
	}
	msg.PersonalizationScore = 85.0
	msg.IsAIGenerated = true
	return &msg, nil
}

func buildPrompt(startup *db.Startup, user *db.User, founderName string, opts Options) string {
	var b strings.Builder

	header := prompts.Format(prompts.MustGet("outreach.json", "generate_header"), map[string]string{
		"Tone":    opts.Tone,
		"Type":    opts.Type,
		"Founder": founderName,
		"Company": startup.Name,
	})
	b.WriteString(header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "About the startup:\n")
	fmt.Fprintf(&b, "- Company: %s\n", startup.Name)
	fmt.Fprintf(&b, "- Tagline: %s\n", startup.Tagline)
	fmt.Fprintf(&b, "- Sector: %s\n", startup.Sector)
	fmt.Fprintf(&b, "- Stage: %s\n", startup.Stage)
	fmt.Fprintf(&b, "- Description: %s\n", startup.Description)

	signals := startup.Signals
	if len(signals) > 3 {
		signals = signals[:3]
	}
	if len(signals) > 0 {
		fmt.Fprintf(&b, "- Recent signals: %s\n", strings.Join(signals, ", "))
	}

	role := user.Role
	if role == "" {
		role = "Investor"
	}
	fund := user.Company
	if fund == "" {
		fund = "Investment Fund"
	}
	fmt.Fprintf(&b, "\nSender: %s\nRole: %s\nFund: %s\n", user.FullName, role, fund)

	if opts.IncludeThesisFit && user.Thesis != nil {
		fmt.Fprintf(&b, "\nOur fund focuses on: %s\n", strings.Join(user.Thesis.Sectors, ", "))
		fmt.Fprintf(&b, "We invest in: %s stage\n", strings.Join(user.Thesis.Stages, ", "))
	}

	if opts.CustomNotes != "" {
		fmt.Fprintf(&b, "\nAdditional notes: %s\n", opts.CustomNotes)
	}

	b.WriteString("\n")
	b.WriteString(prompts.MustGet("outreach.json", "generate_instructions"))

	return b.String()
}

func (g *Generator) generateFromTemplate(startup *db.Startup, user *db.User, founderName string, opts Options) *Message {
	fund := user.Company
	if fund == "" {
		fund = "our fund"
	}
	role := user.Role
	if role == "" {
		role = "an investor"
	}

	var msg Message
	switch {
	case opts.Type == "linkedin" && opts.Tone == "friendly":
		msg.Body = fmt.Sprintf(`Hey %s!

Love what you're building at %s. We invest in %s companies and I'd love to connect!

- %s`, founderName, startup.Name, startup.Sector, user.FullName)

	case opts.Type == "linkedin":
		msg.Body = fmt.Sprintf(`Hi %s,

I lead investments at %s focused on %s. Impressed by %s - would love to connect and learn more about your journey.

Best,
%s`, founderName, fund, startup.Sector, startup.Name, user.FullName)

	case opts.Tone == "friendly":
		hook := "The traction you're getting is impressive!"
		if len(startup.Signals) > 0 {
			hook = fmt.Sprintf("Saw you recently %s - congrats!", strings.ToLower(startup.Signals[0]))
		}
		tagline := startup.Tagline
		if tagline == "" {
			tagline = "Your solution"
		}
		msg.Subject = fmt.Sprintf("Big fan of what %s is doing!", startup.Name)
		msg.Body = fmt.Sprintf(`Hey %s!

I've been following %s for a bit now and really love what you're building. %s is exactly what the market needs.

%s

I'm %s from %s. We back ambitious founders in %s and would love to chat and see how we might be helpful.

Free for a quick call sometime?

Cheers,
%s`, founderName, startup.Name, tagline, hook, user.FullName, fund, startup.Sector, user.FullName)

	default:
		hook := "Your approach to solving this problem is compelling."
		if len(startup.Signals) > 0 {
			hook = fmt.Sprintf("The recent news about %s caught my attention.", startup.Signals[0])
		}
		thesisLine := ""
		if opts.IncludeThesisFit {
			focus := startup.Sector
			if user.Thesis != nil && len(user.Thesis.Sectors) > 0 {
				sectors := user.Thesis.Sectors
				if len(sectors) > 2 {
					sectors = sectors[:2]
				}
				focus = strings.Join(sectors, ", ")
			}
			thesisLine = fmt.Sprintf("\nWe focus on %s companies at the %s stage, which seems like a great alignment.\n", focus, startup.Stage)
		}
		msg.Subject = fmt.Sprintf("Investment interest in %s", startup.Name)
		msg.Body = fmt.Sprintf(`Hi %s,

I hope this email finds you well. I'm %s, %s at %s.

I came across %s and was impressed by what you're building in the %s space. %s
%s
I'd love to learn more about %s and explore if there might be a fit for collaboration. Would you have 20-30 minutes for a call next week?

Looking forward to connecting.

Best regards,
%s
%s`, founderName, user.FullName, role, fund, startup.Name, startup.Sector, hook, thesisLine, startup.Name, user.FullName, user.Company)
	}

	msg.PersonalizationScore = 65.0
	return &msg
}

// Template describes one available outreach template.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Templates returns the available message templates.
func Templates() []Template {
	return []Template{
		{ID: "initial_outreach", Name: "Initial Outreach", Type: "email", Description: "First contact with a founder"},
		{ID: "follow_up", Name: "Follow Up", Type: "email", Description: "Following up on previous outreach"},
		{ID: "intro_request", Name: "Intro Request", Type: "email", Description: "Requesting an introduction from a mutual connection"},
		{ID: "linkedin_connect", Name: "LinkedIn Connection", Type: "linkedin", Description: "Brief LinkedIn connection request"},
	}
}
