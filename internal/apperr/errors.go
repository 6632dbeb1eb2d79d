package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers both "absent" and "owned by another tenant".
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when no tenant identity is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInternal wraps storage and unexpected failures.
	ErrInternal = errors.New("internal failure")
)

// NotFound returns an ErrNotFound wrapped with the entity kind, e.g. "template not found".
func NotFound(kind string) error {
	return fmt.Errorf("%s %w", kind, ErrNotFound)
}

// Internal wraps cause so that errors.Is(err, ErrInternal) holds while keeping the cause for logs.
func Internal(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &internalError{op: op, cause: cause}
}

type internalError struct {
	op    string
	cause error
}

func (e *internalError) Error() string { return e.op + ": " + e.cause.Error() }

func (e *internalError) Unwrap() []error { return []error{ErrInternal, e.cause} }

// Issue is a single validation problem. Field names a top-level document field,
// Path a location inside the variables.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// ValidationError reports one or more rejected inputs.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		loc := is.Field
		if loc == "" {
			loc = is.Path
		}
		if loc == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, loc+": "+is.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends an issue and returns the receiver for chaining.
func (e *ValidationError) Add(is Issue) *ValidationError {
	e.Issues = append(e.Issues, is)
	return e
}

// OrNil returns nil when no issues were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-issue ValidationError for a top-level field.
func Invalid(field, message string) error {
	return &ValidationError{Issues: []Issue{{Field: field, Message: message}}}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// AsValidation extracts a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
