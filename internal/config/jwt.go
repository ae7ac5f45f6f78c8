// Package config provides JWT configuration functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for JWT token generation and validation.
// Access tokens are short-lived; refresh tokens carry a "refresh" type claim
// and live much longer.
type JWTConfig struct {
	Secret                 string
	AccessExpirationHours  int
	RefreshExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_ACCESS_EXPIRATION_HOURS (default: 1)
// and JWT_REFRESH_EXPIRATION_HOURS (default: 168).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	accessHours, err := envHours("JWT_ACCESS_EXPIRATION_HOURS", 1)
	if err != nil {
		return nil, err
	}
	refreshHours, err := envHours("JWT_REFRESH_EXPIRATION_HOURS", 168)
	if err != nil {
		return nil, err
	}

	config := &JWTConfig{
		Secret:                 secret,
		AccessExpirationHours:  accessHours,
		RefreshExpirationHours: refreshHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

func envHours(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	hours, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return hours, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.AccessExpirationHours < 1 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.AccessExpirationHours)
	}
	if c.RefreshExpirationHours < c.AccessExpirationHours {
		return fmt.Errorf("JWT_REFRESH_EXPIRATION_HOURS must not be shorter than the access expiration, got: %d", c.RefreshExpirationHours)
	}
	return nil
}
