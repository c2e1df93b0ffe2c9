package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		issuer     string
		wantHours  int
		wantIssuer string
		wantErr    string
	}{
		{name: "defaults", secret: testSecret, wantHours: 24, wantIssuer: "advision"},
		{name: "custom expiration and issuer", secret: testSecret, expiration: "72", issuer: "ads", wantHours: 72, wantIssuer: "ads"},
		{name: "missing secret", wantErr: "JWT_SECRET is required"},
		{name: "short secret", secret: "too-short", wantErr: "at least 32 bytes"},
		{name: "non-numeric expiration", secret: testSecret, expiration: "abc", wantErr: "invalid JWT_EXPIRATION_HOURS"},
		{name: "zero expiration", secret: testSecret, expiration: "0", wantErr: "between 1 and 720"},
		{name: "expiration too long", secret: testSecret, expiration: "721", wantErr: "between 1 and 720"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_ISSUER", tt.issuer)

			cfg, err := NewJWTConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.secret, cfg.Secret)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
			assert.Equal(t, tt.wantIssuer, cfg.Issuer)
		})
	}
}

func TestJWTConfig_SecretLengthBoundary(t *testing.T) {
	cfg := &JWTConfig{Secret: strings.Repeat("s", MinJWTSecretBytes), ExpirationHours: 1}
	assert.NoError(t, cfg.normalize())

	cfg.Secret = cfg.Secret[1:]
	assert.Error(t, cfg.normalize())
}
