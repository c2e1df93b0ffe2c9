package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/config"
	"github.com/jonathan/advision/internal/generation"
	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/palette"
	"github.com/jonathan/advision/internal/report"
	"github.com/stretchr/testify/assert"
)

func TestErrEmailAlreadyExists(t *testing.T) {
	err := &ErrEmailAlreadyExists{Email: "test@example.com"}
	assert.Equal(t, "email already registered: test@example.com", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrUserNotFound(t *testing.T) {
	userID := uuid.New()
	err := &ErrUserNotFound{UserID: userID}
	assert.Equal(t, "user not found: "+userID.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrPasswordMismatch(t *testing.T) {
	err := &ErrPasswordMismatch{}
	assert.Equal(t, "current password is incorrect", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "email", Message: "invalid format"}
	assert.Equal(t, "validation error: email - invalid format", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "readability score not found", (&ErrNotFound{Resource: "readability score"}).Error())
	id := uuid.New()
	err := notFound("project", id)
	assert.Equal(t, "project not found: "+id.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrEmailAlreadyExists",
			err:      &ErrEmailAlreadyExists{Email: "test@example.com"},
			expected: http.StatusConflict,
		},
		{
			name:     "ErrInvalidCredentials",
			err:      &ErrInvalidCredentials{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrPasswordMismatch",
			err:      &ErrPasswordMismatch{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrUserNotFound",
			err:      &ErrUserNotFound{UserID: uuid.New()},
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "password", Message: "too short"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrapped ErrNotFound",
			err:      fmt.Errorf("loading: %w", &ErrNotFound{Resource: "keyword"}),
			expected: http.StatusNotFound,
		},
		{
			name:     "report project missing",
			err:      report.ErrProjectNotFound,
			expected: http.StatusNotFound,
		},
		{
			name:     "generation validation",
			err:      &generation.ValidationError{Field: "input", Message: "must not be empty"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "password too long",
			err:      fmt.Errorf("failed to hash password: %w", config.ErrPasswordTooLong),
			expected: http.StatusBadRequest,
		},
		{
			name:     "logo too large",
			err:      palette.ErrTooLarge,
			expected: http.StatusRequestEntityTooLarge,
		},
		{
			name:     "logo dimensions",
			err:      fmt.Errorf("%w: got 30000x30000", palette.ErrTooManyPixels),
			expected: http.StatusRequestEntityTooLarge,
		},
		{
			name:     "logo type",
			err:      palette.ErrUnsupportedType,
			expected: http.StatusUnsupportedMediaType,
		},
		{
			name:     "logo without colors",
			err:      palette.ErrNoColors,
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "generation call failed",
			err:      &generation.APICallError{Message: "failed to generate ad copies", Cause: errors.New("timeout")},
			expected: http.StatusBadGateway,
		},
		{
			name:     "provider error",
			err:      &llm.APIError{Provider: llm.ProviderOpenRouter, StatusCode: http.StatusServiceUnavailable},
			expected: http.StatusBadGateway,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "client error passes through", err: &ErrValidation{Field: "name", Message: "required"}, expected: "validation error: name - required"},
		{name: "internal detail hidden", err: errors.New("pq: relation missing"), expected: "internal server error"},
		{name: "generation message", err: &generation.APICallError{Message: "failed to generate keywords", Cause: errors.New("x")}, expected: "failed to generate keywords"},
		{name: "provider detail hidden", err: &llm.APIError{Provider: llm.ProviderOpenRouter, StatusCode: 500, Err: errors.New("secret body")}, expected: "completion provider request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, publicMessage(tt.err, HTTPStatus(tt.err)))
		})
	}
}
