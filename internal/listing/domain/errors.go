package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrInvalidImageID  = errors.New("invalid image id")
	ErrNoImages        = errors.New("no image ids provided")
)

// FieldError is a single field constraint violation, surfaced to clients as a
// field+message pair.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failed field check of a create or update.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
