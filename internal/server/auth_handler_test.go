package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *fakeUserStore) {
	t.Helper()
	svc, store := setupUserService()
	return NewAuthHandler(svc, setupTestJWTService(t)), store
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

const registerBody = `{"email":"jamie@fund.example","password":"correct-horse-battery","full_name":"Jamie Rivera","company":"Rivera Capital"}`

func TestAuthHandler_Register(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	w := postJSON(handler.Register, "/api/v1/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jamie@fund.example", resp.User.Email)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	w := postJSON(handler.Register, "/api/v1/auth/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	w := postJSON(handler.Register, "/api/v1/auth/register",
		`{"email":"jamie@fund.example","password":"short","full_name":"Jamie"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	require.Equal(t, http.StatusCreated, postJSON(handler.Register, "/api/v1/auth/register", registerBody).Code)
	w := postJSON(handler.Register, "/api/v1/auth/register", registerBody)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	handler, _ := setupAuthHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(handler.Register, "/api/v1/auth/register", registerBody).Code)

	w := postJSON(handler.Login, "/api/v1/auth/login",
		`{"email":"jamie@fund.example","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jamie@fund.example", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, _ := setupAuthHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(handler.Register, "/api/v1/auth/register", registerBody).Code)

	w := postJSON(handler.Login, "/api/v1/auth/login",
		`{"email":"jamie@fund.example","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestAuthHandler_Refresh(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	w := postJSON(handler.Register, "/api/v1/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = postJSON(handler.Refresh, "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, registered.RefreshToken))
	require.Equal(t, http.StatusOK, w.Code)

	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.Equal(t, "bearer", rotated.TokenType)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)

	// The new access token must authenticate as the registered user
	claims, err := handler.jwtService.ValidateAccessToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
}

func TestAuthHandler_Refresh_RejectsAccessToken(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	w := postJSON(handler.Register, "/api/v1/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = postJSON(handler.Refresh, "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, registered.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_DeactivatedUser(t *testing.T) {
	handler, store := setupAuthHandler(t)

	w := postJSON(handler.Register, "/api/v1/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	store.users[registered.User.ID].IsActive = false

	w = postJSON(handler.Refresh, "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, registered.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
