package server

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJWTService(_ *testing.T) *JWTService {
	cfg := &config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-signing-minimum-32-bytes",
		AccessExpirationHours:  1,
		RefreshExpirationHours: 168,
	}
	return NewJWTService(cfg)
}

func TestJWTService_GenerateAccessToken(t *testing.T) {
	service := setupTestJWTService(t)
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Test token format is valid JWT (three parts separated by dots)
	parts := strings.Split(token, ".")
	assert.Equal(t, 3, len(parts), "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID, claims.GetUserID())
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestJWTService_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	service := setupTestJWTService(t)
	userID := uuid.New()

	refresh, err := service.GenerateRefreshToken(userID)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an access token")

	claims, err := service.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWTService_AccessTokenIsNotARefreshToken(t *testing.T) {
	service := setupTestJWTService(t)

	access, err := service.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = service.ValidateRefreshToken(access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a refresh token")
}

func TestJWTService_InvalidSignature(t *testing.T) {
	service1 := setupTestJWTService(t)
	service2 := NewJWTService(&config.JWTConfig{
		Secret:                 "a-completely-different-secret-also-32-bytes-long",
		AccessExpirationHours:  1,
		RefreshExpirationHours: 168,
	})

	token, err := service1.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = service2.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	service := setupTestJWTService(t)

	token, err := service.generate(uuid.New(), tokenTypeAccess, -time.Hour)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTService_MalformedToken(t *testing.T) {
	service := setupTestJWTService(t)

	_, err := service.ValidateAccessToken("not.a.jwt")
	require.Error(t, err)

	_, err = service.ValidateAccessToken("")
	require.Error(t, err)
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t)
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID)
	require.NoError(t, err)

	getter, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, getter.GetUserID())
}
