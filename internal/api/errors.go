package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/forum-notifier/internal/api/shared"
	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/notification"
	"github.com/phrazzld/forum-notifier/internal/platform/rabbitmq"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, shared.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, notification.ErrInvalidPayload),
		errors.Is(err, domain.ErrInvalidCourseKey):
		return http.StatusBadRequest

	case errors.Is(err, rabbitmq.ErrNotConfirmed),
		errors.Is(err, rabbitmq.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, shared.ErrBodyTooLarge):
		return "Request body too large"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body required"

	case errors.Is(err, domain.ErrInvalidCourseKey):
		return "Invalid course_id"

	case errors.Is(err, notification.ErrInvalidPayload):
		return SanitizeValidationError(err)

	case errors.Is(err, rabbitmq.ErrNotConfirmed),
		errors.Is(err, rabbitmq.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		return "Task queue unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError reduces a validator error to the failing field and
// rule.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example: "Key: 'Payload.ThreadID' Error:Field validation for 'ThreadID' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Invalid notification payload"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gt":
		return "must be positive"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
