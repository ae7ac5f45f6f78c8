package types

import (
	"time"

	"github.com/google/uuid"
)

// Outreach statuses.
const (
	OutreachDraft   = "draft"
	OutreachSent    = "sent"
	OutreachOpened  = "opened"
	OutreachReplied = "replied"
)

// OutreachResponse represents an outreach message for API responses.
type OutreachResponse struct {
	ID            uuid.UUID  `json:"id"`
	StartupID     uuid.UUID  `json:"startup_id"`
	Type          string     `json:"type"`
	Subject       string     `json:"subject,omitempty"`
	Body          string     `json:"body"`
	RecipientName string     `json:"recipient_name,omitempty"`
	Status        string     `json:"status"`
	IsAIGenerated bool       `json:"is_ai_generated"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OutreachCreateRequest creates an outreach message.
type OutreachCreateRequest struct {
	StartupID     string `json:"startup_id" validate:"required,uuid"`
	Type          string `json:"type,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Body          string `json:"body" validate:"required,min=1"`
	RecipientName string `json:"recipient_name,omitempty"`
}

// OutreachUpdateRequest partially updates an outreach message.
type OutreachUpdateRequest struct {
	Subject       *string `json:"subject,omitempty"`
	Body          *string `json:"body,omitempty"`
	RecipientName *string `json:"recipient_name,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// OutreachGenerateRequest asks for an AI-drafted outreach message.
type OutreachGenerateRequest struct {
	StartupID        string `json:"startup_id" validate:"required,uuid"`
	Type             string `json:"type,omitempty"`
	Tone             string `json:"tone,omitempty"`
	IncludeThesisFit *bool  `json:"include_thesis_fit,omitempty"`
	CustomNotes      string `json:"custom_notes,omitempty"`
}

// OutreachStats summarizes outreach activity.
type OutreachStats struct {
	Total     int     `json:"total"`
	Sent      int     `json:"sent"`
	Opened    int     `json:"opened"`
	Replied   int     `json:"replied"`
	OpenRate  float64 `json:"open_rate"`
	ReplyRate float64 `json:"reply_rate"`
}
