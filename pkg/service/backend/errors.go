package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sitelog/sitelog/pkg/domain/model"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	// Message is the backend supplied explanation. It may be empty.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.StatusCode)
}

// Is lets a 404 match model.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return e.StatusCode == http.StatusNotFound && target == error(model.ErrNotFound)
}

// AsAPIError extracts the APIError carried by err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// FailureReason describes why an upload failed. It prefers the backend message,
// then the status code, then the innermost transport error.
func FailureReason(err error) string {
	if apiErr, ok := AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Upload failed with status %d", apiErr.StatusCode)
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
