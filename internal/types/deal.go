package types

import (
	"time"

	"github.com/google/uuid"
)

// Deal priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Note is a free-form note attached to a deal.
type Note struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DealResponse represents a deal for API responses. Startup fields are
// denormalized so list views need no join on the client.
type DealResponse struct {
	ID              uuid.UUID  `json:"id"`
	StartupID       uuid.UUID  `json:"startup_id"`
	StartupName     string     `json:"startup_name"`
	StartupSector   string     `json:"startup_sector,omitempty"`
	StartupStage    string     `json:"startup_stage,omitempty"`
	StartupScore    float64    `json:"startup_score"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	AssignedTo      string     `json:"assigned_to,omitempty"`
	AssignedName    string     `json:"assigned_name,omitempty"`
	NotesCount      int        `json:"notes_count"`
	Tags            []string   `json:"tags"`
	NextMeetingDate *time.Time `json:"next_meeting_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DealCreateRequest creates a deal from a startup.
type DealCreateRequest struct {
	StartupID string   `json:"startup_id" validate:"required,uuid"`
	Status    string   `json:"status,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// DealUpdateRequest partially updates a deal.
type DealUpdateRequest struct {
	Status          *string    `json:"status,omitempty"`
	Priority        *string    `json:"priority,omitempty"`
	AssignedTo      *string    `json:"assigned_to,omitempty"`
	AssignedName    *string    `json:"assigned_name,omitempty"`
	Tags            *[]string  `json:"tags,omitempty"`
	NextMeetingDate *time.Time `json:"next_meeting_date,omitempty"`
}

// NoteCreateRequest adds a note to a deal.
type NoteCreateRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}
