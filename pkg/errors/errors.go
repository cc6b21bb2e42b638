package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a caller cannot be verified
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when request validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUpstream wraps a failure reported by the mapping store or source table
type ErrUpstream struct {
	Store string
	Err   error
}

func (e *ErrUpstream) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error", e.Store)
	}
	return fmt.Sprintf("%s error: %s", e.Store, e.Err.Error())
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// ErrCatalog carries the error array of a catalog GraphQL response
type ErrCatalog struct {
	Messages []string
	// Codes holds extensions.code values, e.g. THROTTLED
	Codes []string
}

func (e *ErrCatalog) Error() string {
	return fmt.Sprintf("graphQL errors: %s", strings.Join(e.Messages, "; "))
}

// Throttled reports whether the catalog rejected the request for rate limiting
func (e *ErrCatalog) Throttled() bool {
	for _, c := range e.Codes {
		if strings.EqualFold(c, "THROTTLED") {
			return true
		}
	}
	for _, m := range e.Messages {
		if strings.Contains(strings.ToLower(m), "throttled") {
			return true
		}
	}
	return false
}
