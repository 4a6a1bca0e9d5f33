package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/api/shared"
	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/notification"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/task"
	"github.com/tidwall/sjson"
)

// Fields added to every task context submitted over HTTP.
const (
	FieldSubmittedBy = "submitted_by"
	FieldSubmittedAt = "submitted_at"
)

// Publisher publishes a task context to the task queue.
type Publisher interface {
	Publish(ctx context.Context, routingKey, taskType string, body []byte) (uuid.UUID, error)
}

// PublishResponse is returned once a task context has been queued.
type PublishResponse struct {
	EventID  string `json:"event_id"`
	TaskType string `json:"task_type"`
	Status   string `json:"status"`
}

// NotificationHandler accepts task contexts over HTTP.
type NotificationHandler struct {
	publisher  Publisher
	routingKey string
	logger     *slog.Logger
	now        func() time.Time
}

// NewNotificationHandler creates a handler that publishes with routingKey.
func NewNotificationHandler(publisher Publisher, routingKey string, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		publisher:  publisher,
		routingKey: routingKey,
		logger:     logger.With("component", "notification_handler"),
		now:        time.Now,
	}
}

// SubmitDiscussionNotification handles POST /v1/notifications/discussion.
// The body is a response notification task context; it is validated, stamped
// with the submitting service and time, and queued.
func (h *NotificationHandler) SubmitDiscussionNotification(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	body, err := shared.ReadBody(w, r, shared.MaxBodyBytes)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	payload, err := notification.ParsePayload(body)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if _, err := domain.ParseCourseKey(payload.CourseID); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	service, _ := shared.GetService(r.Context())
	body, err = stamp(body, service, h.now())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	id, err := h.publisher.Publish(r.Context(), h.routingKey, task.TaskTypeResponseNotification, body)
	if err != nil {
		h.respondWithError(w, r, fmt.Errorf("publish task context: %w", err))
		return
	}

	log.Info("queued response notification",
		"event_id", id,
		"service", service,
		"thread_id", payload.ThreadID,
		"course_id", payload.CourseID)

	shared.RespondWithJSON(w, r, http.StatusAccepted, PublishResponse{
		EventID:  id.String(),
		TaskType: task.TaskTypeResponseNotification,
		Status:   "queued",
	})
}

func (h *NotificationHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// stamp records who submitted the context and when.
func stamp(body []byte, service string, at time.Time) ([]byte, error) {
	out, err := sjson.SetBytes(body, FieldSubmittedAt, at.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("stamp task context: %w", err)
	}
	if service != "" {
		if out, err = sjson.SetBytes(out, FieldSubmittedBy, service); err != nil {
			return nil, fmt.Errorf("stamp task context: %w", err)
		}
	}
	return out, nil
}
