// Package thesis persists the fund thesis for CLI discovery runs.
package thesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harper/dealflow/internal/types"
)

// DefaultPath is the thesis file location under the user's home directory.
const DefaultPath = ".dealflow/thesis.json"

// Store reads and writes the fund thesis as a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for the given path. An empty path resolves to
// DefaultPath under the user's home directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, DefaultPath)
	}
	return &Store{path: path}, nil
}

// Path returns the resolved thesis file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the thesis from disk. A missing file returns (nil, nil) so
// callers can distinguish "not configured" from read failures.
func (s *Store) Load() (*types.FundThesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read thesis file %s: %w", s.path, err)
	}

	var t types.FundThesis
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse thesis JSON: %w", err)
	}
	return &t, nil
}

// Save writes the thesis to disk, creating parent directories as needed.
func (s *Store) Save(t *types.FundThesis) error {
	if t == nil {
		return fmt.Errorf("thesis is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create thesis directory: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal thesis: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write thesis file %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the thesis file. Missing files are not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove thesis file: %w", err)
	}
	return nil
}
