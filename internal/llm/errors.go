package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from a completion provider.
type APIError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed: %d %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the provider.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the provider, i.e. the API
// key was rejected.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}
