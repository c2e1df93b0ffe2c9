package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{
		validTokens: make(map[string]uuid.UUID),
	}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	userID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{userID: userID}, nil
}

type testClaims struct {
	userID uuid.UUID
}

func (c *testClaims) GetUserID() uuid.UUID {
	return c.userID
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	userID := uuid.New()
	validator.validTokens["valid-test-token-123"] = userID

	tests := []struct {
		name   string
		header string
	}{
		{name: "canonical", header: "Bearer valid-test-token-123"},
		{name: "lowercase scheme", header: "bearer valid-test-token-123"},
		{name: "mixed case scheme", header: "BeArEr valid-test-token-123"},
		{name: "extra spaces", header: "Bearer   valid-test-token-123 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contextUserID uuid.UUID
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, err := GetUserID(r)
				require.NoError(t, err)
				contextUserID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			AuthMiddleware(validator)(handler).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, userID, contextUserID)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["good"] = uuid.New()

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "missing Bearer prefix", header: "good"},
		{name: "only Bearer", header: "Bearer"},
		{name: "empty token", header: "Bearer "},
		{name: "basic scheme", header: "Basic good"},
		{name: "three parts", header: "Bearer good extra"},
		{name: "unknown token", header: "Bearer eyJhbGciOiJIUzI1NiJ9.e30.invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
			})

			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			AuthMiddleware(validator)(handler).ServeHTTP(w, req)

			assert.False(t, handlerCalled, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))
	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	missing := httptest.NewRequest(http.MethodGet, "/test", nil)
	got, err = GetUserID(missing)
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, got)
	assert.Contains(t, err.Error(), "user ID not found")

	wrongType := httptest.NewRequest(http.MethodGet, "/test", nil)
	wrongType = wrongType.WithContext(context.WithValue(wrongType.Context(), userIDKey, "not-a-uuid"))
	got, err = GetUserID(wrongType)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, got)
}
