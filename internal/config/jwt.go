package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MinJWTSecretBytes is the shortest HS256 secret accepted.
const MinJWTSecretBytes = 32

const defaultJWTIssuer = "advision"

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required, at least 32 bytes), JWT_EXPIRATION_HOURS
// (default: 24) and JWT_ISSUER (default: advision).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours := 24
	if v := strings.TrimSpace(os.Getenv("JWT_EXPIRATION_HOURS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = n
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
		Issuer:          os.Getenv("JWT_ISSUER"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration and fills defaults.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if len(c.Secret) < MinJWTSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", MinJWTSecretBytes, len(c.Secret))
	}
	if c.ExpirationHours < 1 || c.ExpirationHours > 24*30 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be between 1 and 720, got: %d", c.ExpirationHours)
	}
	if c.Issuer == "" {
		c.Issuer = defaultJWTIssuer
	}
	return nil
}
