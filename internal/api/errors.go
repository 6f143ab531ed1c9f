package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingEventID is returned by update and delete before any request is
// issued when the event id is zero.
var ErrMissingEventID = errors.New("event ID is required")

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("Failed to %s: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("Failed to %s: %d %s", e.Op, e.StatusCode, body)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 404
}
