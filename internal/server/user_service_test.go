package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/config"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	users         map[uuid.UUID]*db.User
	byEmail       map[string]uuid.UUID
	touchErr      error
	lastLoginSets int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[uuid.UUID]*db.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, fullName, company, role, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	f.users[id] = &db.User{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		Company:      company,
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	f.byEmail[email] = id
	return id, nil
}

func (f *fakeUserStore) GetUser(_ context.Context, userID uuid.UUID) (*db.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return f.users[id], nil
}

func (f *fakeUserStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserStore) UpdateThesis(_ context.Context, userID uuid.UUID, thesis *types.FundThesis) error {
	user, ok := f.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	user.Thesis = thesis
	user.OnboardingComplete = true
	return nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, userID uuid.UUID) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.lastLoginSets++
	return nil
}

func setupUserService() (*UserService, *fakeUserStore) {
	store := newFakeUserStore()
	return NewUserService(store, &config.PasswordConfig{BcryptCost: 10}), store
}

func registerTestUser(t *testing.T, svc *UserService) *types.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), &types.RegisterRequest{
		Email:    "jamie@fund.example",
		Password: "correct-horse-battery",
		FullName: "Jamie Rivera",
		Company:  "Rivera Capital",
	})
	require.NoError(t, err)
	return user
}

func TestUserService_Register(t *testing.T) {
	svc, store := setupUserService()

	user := registerTestUser(t, svc)
	assert.Equal(t, "jamie@fund.example", user.Email)
	assert.Equal(t, "Jamie Rivera", user.FullName)
	assert.True(t, user.IsActive)

	// Password is stored hashed, never verbatim
	stored := store.users[user.ID]
	assert.NotEqual(t, "correct-horse-battery", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := setupUserService()
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), &types.RegisterRequest{
		Email:    "jamie@fund.example",
		Password: "another-password",
		FullName: "Someone Else",
	})
	var dup *ErrEmailAlreadyExists
	require.ErrorAs(t, err, &dup)
}

func TestUserService_Login(t *testing.T) {
	svc, store := setupUserService()
	registerTestUser(t, svc)

	user, err := svc.Login(context.Background(), &types.LoginRequest{
		Email:    "jamie@fund.example",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "jamie@fund.example", user.Email)
	assert.Equal(t, 1, store.lastLoginSets)
}

func TestUserService_Login_GenericErrorForAllFailures(t *testing.T) {
	svc, store := setupUserService()
	registered := registerTestUser(t, svc)

	// Unknown email
	_, err := svc.Login(context.Background(), &types.LoginRequest{
		Email: "nobody@fund.example", Password: "whatever"})
	var invalid *ErrInvalidCredentials
	require.ErrorAs(t, err, &invalid)

	// Wrong password
	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email: "jamie@fund.example", Password: "wrong"})
	require.ErrorAs(t, err, &invalid)

	// Deactivated account
	store.users[registered.ID].IsActive = false
	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email: "jamie@fund.example", Password: "correct-horse-battery"})
	require.ErrorAs(t, err, &invalid)
}

func TestUserService_Login_TouchFailureDoesNotFailLogin(t *testing.T) {
	svc, store := setupUserService()
	registerTestUser(t, svc)
	store.touchErr = errors.New("db down")

	_, err := svc.Login(context.Background(), &types.LoginRequest{
		Email: "jamie@fund.example", Password: "correct-horse-battery"})
	require.NoError(t, err)
}

func TestUserService_Get_NotFound(t *testing.T) {
	svc, _ := setupUserService()

	_, err := svc.Get(context.Background(), uuid.New())
	var notFound *ErrUserNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestUserService_UpdateThesis(t *testing.T) {
	svc, store := setupUserService()
	registered := registerTestUser(t, svc)

	user, err := svc.UpdateThesis(context.Background(), registered.ID, &types.ThesisUpdateRequest{
		FundName: "Rivera Capital Fund I",
		Sectors:  []string{"AI/ML"},
		Stages:   []string{"Seed", "Series A"},
	})
	require.NoError(t, err)
	require.NotNil(t, user.Thesis)
	assert.Equal(t, []string{"AI/ML"}, user.Thesis.Sectors)
	assert.True(t, user.OnboardingComplete)
	assert.True(t, store.users[registered.ID].OnboardingComplete)
}
