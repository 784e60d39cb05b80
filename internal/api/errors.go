package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors raised before any network I/O happens.
var (
	// ErrNotAuthenticated means no session token is available for an
	// authenticated call.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyTitle rejects space creation with a blank title client-side.
	ErrEmptyTitle = errors.New("space title must not be empty")
	// ErrIdentityConflict means the signaling endpoint refused the join
	// because this identity is already present in the channel. Callers
	// should advise retrying after a short delay.
	ErrIdentityConflict = errors.New("identity already in channel")
)

// Error is a failure reported by the remote API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsAuthError reports whether err is a 401/403 from the server or a local
// missing-token condition.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
