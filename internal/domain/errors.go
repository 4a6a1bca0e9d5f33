package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when an entity or payload fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidCourseKey is returned when a course id string cannot be parsed.
	ErrInvalidCourseKey = errors.New("invalid course key")
)
