package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxBytes is the most bcrypt reads of its input.
const bcryptMaxBytes = 72

// MaxPepperBytes is the longest PASSWORD_PEPPER accepted.
const MaxPepperBytes = 32

const (
	defaultBcrypt = 12
	minBcryptCost = 10
	maxBcryptCost = 14
)

// ErrPasswordTooLong is returned when password plus pepper would be
// truncated by bcrypt.
var ErrPasswordTooLong = errors.New("password too long")

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig creates a new password configuration from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost := defaultBcrypt
	if v := strings.TrimSpace(os.Getenv("BCRYPT_COST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = n
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-%d)", c.BcryptCost, minBcryptCost, maxBcryptCost)
	}
	if len(c.Pepper) > MaxPepperBytes {
		return fmt.Errorf("PASSWORD_PEPPER must be at most %d bytes, got %d", MaxPepperBytes, len(c.Pepper))
	}
	return nil
}

func (c *PasswordConfig) peppered(pw string) string {
	return pw + c.Pepper
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	password := c.peppered(pw)
	if len(password) > bcryptMaxBytes {
		return "", fmt.Errorf("%w: %d bytes with pepper, limit %d", ErrPasswordTooLong, len(password), bcryptMaxBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(c.peppered(pw))) == nil
}
