// Package server provides the HTTP REST API for the deal flow platform.
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/config"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/types"
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, fullName, company, role, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateThesis(ctx context.Context, userID uuid.UUID, thesis *types.FundThesis) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

// UserService provides business logic for user account operations
type UserService struct {
	db             UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// toUserResponse converts db.User to types.UserResponse, excluding the password hash
func toUserResponse(dbUser *db.User) *types.UserResponse {
	if dbUser == nil {
		return nil
	}
	return &types.UserResponse{
		ID:                 dbUser.ID,
		Email:              dbUser.Email,
		FullName:           dbUser.FullName,
		Company:            dbUser.Company,
		Role:               dbUser.Role,
		Thesis:             dbUser.Thesis,
		OnboardingComplete: dbUser.OnboardingComplete,
		IsActive:           dbUser.IsActive,
		CreatedAt:          dbUser.CreatedAt,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error) {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.db.CreateUser(ctx, req.Email, req.FullName, req.Company, req.Role, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}
	if dbUser == nil {
		return nil, fmt.Errorf("created user not found: %s", userID)
	}

	return toUserResponse(dbUser), nil
}

// Login authenticates a user and returns their profile
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.UserResponse, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Security: Always return generic error if user not found or password wrong
	if dbUser == nil {
		return nil, &ErrInvalidCredentials{}
	}

	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	if !dbUser.IsActive {
		return nil, &ErrInvalidCredentials{}
	}

	if err := s.db.TouchLastLogin(ctx, dbUser.ID); err != nil {
		// Login still succeeds; the timestamp is informational
		log.Printf("[AUTH] Failed to record last login for %s: %v", dbUser.ID, err)
	}

	return toUserResponse(dbUser), nil
}

// Get returns a user's profile by ID.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*types.UserResponse, error) {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return toUserResponse(dbUser), nil
}

// UpdateThesis replaces the user's fund thesis and marks onboarding complete.
func (s *UserService) UpdateThesis(ctx context.Context, userID uuid.UUID, req *types.ThesisUpdateRequest) (*types.UserResponse, error) {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}

	thesis := &types.FundThesis{
		FundName:          req.FundName,
		FundSize:          req.FundSize,
		PortfolioSize:     req.PortfolioSize,
		CheckSize:         req.CheckSize,
		CheckSizeMin:      req.CheckSizeMin,
		CheckSizeMax:      req.CheckSizeMax,
		Sectors:           req.Sectors,
		Stages:            req.Stages,
		Geographies:       req.Geographies,
		ThesisDescription: req.ThesisDescription,
		KeyMetrics:        req.KeyMetrics,
		DealBreakers:      req.DealBreakers,
	}

	if err := s.db.UpdateThesis(ctx, userID, thesis); err != nil {
		return nil, fmt.Errorf("failed to update thesis: %w", err)
	}

	return s.Get(ctx, userID)
}
