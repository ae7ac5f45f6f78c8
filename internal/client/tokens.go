// Package client provides the authenticated HTTP client for the DealFlow API.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultTokenPath is where the token pair is persisted, relative to the
// user's home directory.
const DefaultTokenPath = ".dealflow/tokens.json"

// Tokens is a persisted access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore persists the token pair to a file so sessions survive process
// restarts.
type TokenStore struct {
	path string

	mu     sync.Mutex
	cached *Tokens
}

// NewTokenStore creates a token store backed by the given path. An empty
// path uses DefaultTokenPath under the user's home directory.
func NewTokenStore(path string) (*TokenStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		path = filepath.Join(home, DefaultTokenPath)
	}
	return &TokenStore{path: path}, nil
}

// Path returns the backing file path.
func (s *TokenStore) Path() string {
	return s.path
}

// Load returns the stored token pair, or nil if none is stored.
func (s *TokenStore) Load() (*Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		copied := *s.cached
		return &copied, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", s.path, err)
	}

	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.path, err)
	}

	s.cached = &tokens
	copied := tokens
	return &copied, nil
}

// Save persists the token pair. The file is created with owner-only
// permissions.
func (s *TokenStore) Save(tokens *Tokens) error {
	if tokens == nil {
		return fmt.Errorf("tokens must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.path, err)
	}

	copied := *tokens
	s.cached = &copied
	return nil
}

// Clear removes the stored token pair. Clearing an empty store is not an
// error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file %s: %w", s.path, err)
	}
	return nil
}
