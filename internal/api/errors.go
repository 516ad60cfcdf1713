package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrValidation marks failures caught before any request is sent.
	ErrValidation = errors.New("validation error")
	// ErrAuth marks an invalidated session; it is intercepted centrally and
	// should force a logout rather than surface as an ordinary failure.
	ErrAuth = errors.New("session invalid")
	// ErrForbidden marks a resource the caller may not act on.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks transport or server failures worth retrying manually.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes call context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "request failure"
	}
	return strings.Join(parts, ": ")
}

func markerForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrTransient
	}
}
