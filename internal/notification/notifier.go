package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/ace"
	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/emailctx"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/requestctx"
	"github.com/phrazzld/forum-notifier/internal/store"
)

// DefaultLanguage is used when a course has no language and none is configured.
const DefaultLanguage = "en"

// Reasons reported in Result.
const (
	ReasonSent          = "sent"
	ReasonNotSubscribed = "not_subscribed"
	ReasonAlreadySent   = "already_sent"
)

// Constructor errors
var (
	ErrNilUserStore   = errors.New("user store cannot be nil")
	ErrNilSiteStore   = errors.New("site store cannot be nil")
	ErrNilCourseStore = errors.New("course overview store cannot be nil")
	ErrNilDiscussions = errors.New("subscription checker cannot be nil")
	ErrNilSender      = errors.New("message sender cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
)

// SubscriptionChecker reports whether a user follows a thread.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID int64, courseID, threadID string) (bool, error)
}

// MessageSender renders and delivers a personalized message.
type MessageSender interface {
	Send(ctx context.Context, msg *ace.Message) error
}

// DeliveryGuard claims a notification so it is sent at most once.
type DeliveryGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Result describes what a notification attempt did.
type Result struct {
	Sent      bool
	Reason    string
	MessageID uuid.UUID
}

// Dependencies groups what ResponseNotifier needs. Guard is optional.
type Dependencies struct {
	Users       store.UserStore
	Sites       store.SiteStore
	Courses     store.CourseOverviewStore
	Discussions SubscriptionChecker
	Sender      MessageSender
	Guard       DeliveryGuard
	Settings    emailctx.Settings
	// DefaultLanguage is used for courses without a language.
	DefaultLanguage string
}

// ResponseNotifier emails thread authors about responses to their threads.
type ResponseNotifier struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewResponseNotifier validates deps and creates a notifier.
func NewResponseNotifier(deps Dependencies, log *slog.Logger) (*ResponseNotifier, error) {
	switch {
	case deps.Users == nil:
		return nil, ErrNilUserStore
	case deps.Sites == nil:
		return nil, ErrNilSiteStore
	case deps.Courses == nil:
		return nil, ErrNilCourseStore
	case deps.Discussions == nil:
		return nil, ErrNilDiscussions
	case deps.Sender == nil:
		return nil, ErrNilSender
	case log == nil:
		return nil, ErrNilLogger
	}
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = DefaultLanguage
	}

	return &ResponseNotifier{
		deps:   deps,
		logger: log.With("component", "response_notifier"),
	}, nil
}

// SendACEMessage handles one task context: if the thread author still follows
// the thread, it emails them about the new response. Missing site, user or
// course records are errors.
func (n *ResponseNotifier) SendACEMessage(ctx context.Context, raw []byte) (Result, error) {
	payload, err := ParsePayload(raw)
	if err != nil {
		return Result{}, err
	}

	courseKey, err := domain.ParseCourseKey(payload.CourseID)
	if err != nil {
		return Result{}, err
	}

	log := logger.FromContextOrDefault(ctx, n.logger).With(
		"course_id", courseKey.String(),
		"thread_id", payload.ThreadID,
		"thread_author_id", payload.ThreadAuthorID,
	)

	site, err := n.deps.Sites.GetByID(ctx, payload.SiteID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve site: %w", err)
	}

	campaign := emailctx.NewCampaignTrackingInfo(CampaignSource)

	subscribed, err := n.ShouldSendMessage(ctx, payload, courseKey)
	if err != nil {
		return Result{}, err
	}
	if !subscribed {
		log.Info("thread author is not subscribed, skipping notification")
		return Result{Reason: ReasonNotSubscribed}, nil
	}

	author, err := n.deps.Users.GetByID(ctx, payload.ThreadAuthorID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve thread author: %w", err)
	}

	ctx = requestctx.Emulate(ctx, site, author)

	msgCtx, err := BuildMessageContext(n.deps.Settings, payload, courseKey, site, author, campaign)
	if err != nil {
		return Result{}, err
	}

	language, err := n.courseLanguage(ctx, courseKey)
	if err != nil {
		return Result{}, err
	}

	message := ResponseNotificationType.Personalize(
		ace.Recipient{Username: author.Username, Email: author.Email},
		language,
		msgCtx,
	)

	guardKey := deliveryKey(payload)
	if guardKey != "" && n.deps.Guard != nil {
		acquired, err := n.deps.Guard.Acquire(ctx, guardKey)
		switch {
		case err != nil:
			// The guard only suppresses duplicates; sending still proceeds.
			log.Warn("delivery guard unavailable", "error", err)
			guardKey = ""
		case !acquired:
			log.Info("notification already sent, skipping", "guard_key", guardKey)
			return Result{Reason: ReasonAlreadySent}, nil
		}
	}

	log.Info("Sending forum comment email notification",
		"message_id", message.ID,
		"context", msgCtx)

	if err := n.deps.Sender.Send(ctx, message); err != nil {
		if guardKey != "" && n.deps.Guard != nil {
			if releaseErr := n.deps.Guard.Release(ctx, guardKey); releaseErr != nil {
				log.Warn("failed to release delivery guard", "error", releaseErr)
			}
		}
		return Result{}, fmt.Errorf("send response notification: %w", err)
	}

	return Result{Sent: true, Reason: ReasonSent, MessageID: message.ID}, nil
}

// ShouldSendMessage reports whether the thread author still follows the thread.
func (n *ResponseNotifier) ShouldSendMessage(
	ctx context.Context,
	payload *Payload,
	courseKey domain.CourseKey,
) (bool, error) {
	subscribed, err := n.deps.Discussions.IsSubscribed(
		ctx,
		payload.ThreadAuthorID,
		courseKey.String(),
		payload.ThreadID,
	)
	if err != nil {
		return false, fmt.Errorf("check thread subscription: %w", err)
	}
	return subscribed, nil
}

func (n *ResponseNotifier) courseLanguage(ctx context.Context, courseKey domain.CourseKey) (string, error) {
	course, err := n.deps.Courses.GetByCourseKey(ctx, courseKey)
	if err != nil {
		return "", fmt.Errorf("resolve course language: %w", err)
	}
	return course.EffectiveLanguage(n.deps.DefaultLanguage), nil
}

// deliveryKey identifies one response to one author. Contexts without a
// comment id cannot be deduplicated.
func deliveryKey(payload *Payload) string {
	if payload.CommentID == "" {
		return ""
	}
	return fmt.Sprintf("response:%s:%d", payload.CommentID, payload.ThreadAuthorID)
}
