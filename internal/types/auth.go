package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the request to create a new user account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=1"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token for a token exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned from login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user profile for API responses (never includes
// the password hash).
type UserResponse struct {
	ID                 uuid.UUID   `json:"id"`
	Email              string      `json:"email"`
	FullName           string      `json:"full_name"`
	Company            string      `json:"company,omitempty"`
	Role               string      `json:"role,omitempty"`
	Thesis             *FundThesis `json:"thesis,omitempty"`
	OnboardingComplete bool        `json:"onboarding_complete"`
	IsActive           bool        `json:"is_active"`
	CreatedAt          time.Time   `json:"created_at"`
}

// ThesisUpdateRequest updates the current user's fund thesis.
type ThesisUpdateRequest struct {
	FundName          string   `json:"fund_name,omitempty"`
	FundSize          string   `json:"fund_size,omitempty"`
	PortfolioSize     string   `json:"portfolio_size,omitempty"`
	CheckSize         string   `json:"check_size,omitempty"`
	CheckSizeMin      *int     `json:"check_size_min,omitempty"`
	CheckSizeMax      *int     `json:"check_size_max,omitempty"`
	Sectors           []string `json:"sectors,omitempty"`
	Stages            []string `json:"stages,omitempty"`
	Geographies       []string `json:"geographies,omitempty"`
	ThesisDescription string   `json:"thesis_description,omitempty"`
	KeyMetrics        []string `json:"key_metrics,omitempty"`
	DealBreakers      []string `json:"deal_breakers,omitempty"`
}
