package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/forum-notifier/internal/api/middleware"
	"github.com/phrazzld/forum-notifier/internal/auth"
)

// DefaultHealthTimeout bounds the health checks of a single request.
const DefaultHealthTimeout = 2 * time.Second

// RouterConfig holds everything the HTTP routes depend on.
type RouterConfig struct {
	Logger       *slog.Logger
	Tokens       auth.TokenService
	Publisher    Publisher
	RoutingKey   string
	HealthChecks map[string]HealthCheck
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.HealthChecks, DefaultHealthTimeout, cfg.Logger)
	notifications := NewNotificationHandler(cfg.Publisher, cfg.RoutingKey, cfg.Logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(cfg.Tokens)

	r.Get("/health", health.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/notifications/discussion", notifications.SubmitDiscussionNotification)
	})

	return r
}
