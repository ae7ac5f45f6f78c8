package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harper/dealflow/internal/types"
)

// DefaultTimeout bounds each individual API request.
const DefaultTimeout = 30 * time.Second

// ErrSessionExpired is returned when the access token is rejected and the
// refresh exchange also fails. Stored tokens are cleared before it is
// returned.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Client is an authenticated DealFlow API client. It attaches the stored
// bearer token to each request and transparently refreshes it once on a 401
// before giving up.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens *TokenStore
}

// New creates a client against the given base URL using the given token
// store for credential persistence.
func New(baseURL string, tokens *TokenStore) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
	}
}

// Register creates an account and stores the returned token pair.
func (c *Client) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error) {
	var resp struct {
		User         *types.UserResponse `json:"user"`
		AccessToken  string              `json:"access_token"`
		RefreshToken string              `json:"refresh_token"`
	}
	if err := c.doUnauthenticated(ctx, http.MethodPost, "/api/v1/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(&Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return nil, fmt.Errorf("failed to store tokens: %w", err)
	}
	return resp.User, nil
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*types.UserResponse, error) {
	req := types.LoginRequest{Email: email, Password: password}
	var resp struct {
		User         *types.UserResponse `json:"user"`
		AccessToken  string              `json:"access_token"`
		RefreshToken string              `json:"refresh_token"`
	}
	if err := c.doUnauthenticated(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(&Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return nil, fmt.Errorf("failed to store tokens: %w", err)
	}
	return resp.User, nil
}

// Logout discards the stored token pair.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*types.UserResponse, error) {
	var user types.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateThesis replaces the user's fund thesis on the backend.
func (c *Client) UpdateThesis(ctx context.Context, req *types.ThesisUpdateRequest) (*types.UserResponse, error) {
	var user types.UserResponse
	if err := c.do(ctx, http.MethodPut, "/api/v1/auth/me/thesis", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SubmitDiscovery starts a discovery job and returns its ID.
func (c *Client) SubmitDiscovery(ctx context.Context, req *types.DiscoveryRunRequest) (string, error) {
	var resp types.DiscoveryRunResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/discovery/run", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// DiscoveryJobStatus fetches the state of one discovery job.
func (c *Client) DiscoveryJobStatus(ctx context.Context, jobID string) (*types.DiscoveryStatusResponse, error) {
	var resp types.DiscoveryStatusResponse
	path := fmt.Sprintf("/api/v1/discovery/jobs/%s", jobID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DiscoveryResults fetches one page of a job's results.
func (c *Client) DiscoveryResults(ctx context.Context, jobID string, skip, limit int) ([]types.DiscoveryResultResponse, error) {
	var resp []types.DiscoveryResultResponse
	path := fmt.Sprintf("/api/v1/discovery/jobs/%s/results?skip=%d&limit=%d", jobID, skip, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateStartup partially updates a startup record.
func (c *Client) UpdateStartup(ctx context.Context, id string, req *types.StartupUpdateRequest) error {
	path := fmt.Sprintf("/api/v1/startups/%s", id)
	return c.do(ctx, http.MethodPut, path, req, nil)
}

// doUnauthenticated issues a request without attaching credentials.
func (c *Client) doUnauthenticated(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// do issues an authenticated request. On a 401 it performs one refresh
// exchange and retries once; a second rejection clears stored tokens.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	tokens, err := c.tokens.Load()
	if err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}
	if tokens == nil {
		return ErrSessionExpired
	}

	resp, err := c.send(ctx, method, path, body, tokens.AccessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		refreshed, err := c.refresh(ctx, tokens.RefreshToken)
		if err != nil {
			_ = c.tokens.Clear()
			return ErrSessionExpired
		}

		resp, err = c.send(ctx, method, path, body, refreshed.AccessToken)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			_ = c.tokens.Clear()
			return ErrSessionExpired
		}
	}

	return decodeResponse(resp, out)
}

// refresh exchanges the refresh token for a new pair and stores it.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	req := types.RefreshRequest{RefreshToken: refreshToken}
	resp, err := c.send(ctx, http.MethodPost, "/api/v1/auth/refresh", req, "")
	if err != nil {
		return nil, err
	}

	var tokenResp types.TokenResponse
	if err := decodeResponse(resp, &tokenResp); err != nil {
		return nil, err
	}

	tokens := &Tokens{AccessToken: tokenResp.AccessToken, RefreshToken: tokenResp.RefreshToken}
	if err := c.tokens.Save(tokens); err != nil {
		return nil, fmt.Errorf("failed to store refreshed tokens: %w", err)
	}
	return tokens, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, bearer string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// decodeResponse consumes the response body, converting non-2xx statuses
// into APIError.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// extractErrorMessage pulls a message out of an error payload, falling back
// to the raw body.
func extractErrorMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := string(bytes.TrimSpace(data))
	if msg == "" {
		msg = "unknown error"
	}
	return msg
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
