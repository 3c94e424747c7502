package apiclient

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
)

// APIError is returned for any non-2xx response. It unwraps to the sentinel
// matching its status code so callers can use errors.Is.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	// Path is the API path the request was sent to.
	Path string `json:"-"`

	sentinel error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status >= 400 && status < 500:
		return apperrors.ErrInvalidRequest
	default:
		return apperrors.ErrInternal
	}
}
