package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/config"
	"github.com/jonathan/advision/internal/generation"
	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/palette"
	"github.com/jonathan/advision/internal/rendering"
	"github.com/jonathan/advision/internal/report"
	"github.com/jonathan/advision/internal/schemas"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a resource is missing or owned by another user
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func notFound(resource string, id uuid.UUID) error {
	return &ErrNotFound{Resource: resource, ID: id.String()}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userMissing  *ErrUserNotFound
		missing      *ErrNotFound
		invalid      *ErrValidation
		genInvalid   *generation.ValidationError
		apiCall      *generation.APICallError
		apiErr       *llm.APIError
		schemaErr    *schemas.ValidationError
		templateErr  *rendering.TemplateError
		renderingErr *rendering.RenderError
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userMissing), errors.As(err, &missing), errors.Is(err, report.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &genInvalid), errors.Is(err, config.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, palette.ErrTooLarge), errors.Is(err, palette.ErrTooManyPixels):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, palette.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, palette.ErrNoColors), errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiCall), errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.As(err, &templateErr), errors.As(err, &renderingErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to show a client. Server-side
// failures get a generic message; the detail is logged instead.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		return "internal server error"
	}
	var apiCall *generation.APICallError
	if errors.As(err, &apiCall) {
		return apiCall.Message
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return "completion provider request failed"
	}
	return err.Error()
}
