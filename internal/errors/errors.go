package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoAccessToken      = errors.New("no access token")
	ErrOpaqueToken        = errors.New("access token is opaque")

	// Session errors
	ErrNotStarted          = errors.New("session not started")
	ErrOperationInProgress = errors.New("session operation already in progress")
	ErrControllerClosed    = errors.New("session controller closed")
	ErrRemoteLogout        = errors.New("remote logout failed")

	// Query errors
	ErrQueryDisabled = errors.New("query disabled")

	// API errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
