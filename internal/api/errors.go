package api

import (
	"errors"
	"fmt"
)

// ErrAuthentication is matched by errors.Is for any 401 response.
var ErrAuthentication = errors.New("Authentication failed")

// APIError is returned when the backend responds with a non-2xx status.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is reports whether a 401 APIError matches ErrAuthentication.
func (e *APIError) Is(target error) bool {
	return target == ErrAuthentication && e.Status == 401
}

// statusMessage is the fallback message when the body carries none.
func statusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
