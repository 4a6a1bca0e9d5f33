package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/forum-notifier/internal/ace"
	"github.com/phrazzld/forum-notifier/internal/api"
	"github.com/phrazzld/forum-notifier/internal/auth"
	"github.com/phrazzld/forum-notifier/internal/config"
	"github.com/phrazzld/forum-notifier/internal/discussion"
	"github.com/phrazzld/forum-notifier/internal/emailctx"
	"github.com/phrazzld/forum-notifier/internal/events"
	"github.com/phrazzld/forum-notifier/internal/notification"
	"github.com/phrazzld/forum-notifier/internal/platform/mailer"
	"github.com/phrazzld/forum-notifier/internal/platform/postgres"
	"github.com/phrazzld/forum-notifier/internal/platform/rabbitmq"
	"github.com/phrazzld/forum-notifier/internal/platform/redis"
	"github.com/phrazzld/forum-notifier/internal/redact"
	"github.com/phrazzld/forum-notifier/internal/task"
)

// shutdownTimeout bounds the HTTP server's graceful shutdown.
const shutdownTimeout = 10 * time.Second

// application holds the wired dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client
	amqp   *rabbitmq.Connection

	taskRunner *task.TaskRunner
	consumer   *rabbitmq.Consumer
	router     http.Handler
}

// newApplication wires every component. The returned application owns db.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.redis, err = redis.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	app.amqp, err = rabbitmq.Connect(cfg.Queue.URL)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	if err := app.wire(); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

func (app *application) wire() error {
	cfg, logger := app.config, app.logger

	// Notification pipeline
	discussions := discussion.NewClient(
		cfg.Discussion.BaseURL,
		cfg.Discussion.APIKey,
		time.Duration(cfg.Discussion.TimeoutSeconds)*time.Second,
	)
	channel := mailer.NewSMTPChannel(cfg.Email, cfg.Platform.Name, logger)
	sender := ace.NewSender(ace.NewRenderer(notification.Templates()), channel, logger)
	guard := redis.NewDeliveryGuard(app.redis, time.Duration(cfg.Redis.DeliveryTTLHours)*time.Hour)

	notifier, err := notification.NewResponseNotifier(notification.Dependencies{
		Users:           postgres.NewPostgresUserStore(app.db),
		Sites:           postgres.NewPostgresSiteStore(app.db),
		Courses:         postgres.NewPostgresCourseOverviewStore(app.db),
		Discussions:     discussions,
		Sender:          sender,
		Guard:           guard,
		Settings:        emailctx.SettingsFromConfig(cfg.Platform),
		DefaultLanguage: cfg.Platform.DefaultLanguage,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}

	// Task processing
	factory := task.NewResponseNotificationTaskFactory(notifier, logger)
	app.taskRunner = task.NewTaskRunner(
		postgres.NewPostgresTaskStore(app.db, factory),
		task.TaskRunnerConfig{
			QueueSize:    cfg.Task.QueueSize,
			WorkerCount:  cfg.Task.WorkerCount,
			StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		},
		logger,
	)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		logger.Error("task failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", redact.Error(err))
	})

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(
		task.TaskTypeResponseNotification,
		factory,
		app.taskRunner,
		logger,
	))

	// Broker
	consumeCh, err := app.amqp.Channel()
	if err != nil {
		return err
	}
	if err := rabbitmq.DeclareQueue(consumeCh, cfg.Queue.RoutingKey); err != nil {
		return err
	}
	app.consumer = rabbitmq.NewConsumer(consumeCh, emitter, cfg.Queue.Prefetch, logger)

	publishCh, err := app.amqp.Channel()
	if err != nil {
		return err
	}
	publisher, err := rabbitmq.NewPublisher(publishCh, logger)
	if err != nil {
		return err
	}

	// HTTP
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.router = api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Tokens:     tokens,
		Publisher:  publisher,
		RoutingKey: cfg.Queue.RoutingKey,
		HealthChecks: map[string]api.HealthCheck{
			"database": app.db.PingContext,
			"redis":    func(ctx context.Context) error { return app.redis.Ping(ctx).Err() },
			"broker":   func(context.Context) error { return app.amqp.Ping() },
		},
	})

	return nil
}

// Run starts the task runner, the consumer and the HTTP server, and blocks
// until ctx is cancelled or one of them fails.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- app.consumer.Run(ctx, app.config.Queue.RoutingKey)
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.startHTTPServer(ctx)
	}()

	var runErr error
	serverDone := false
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down")
	case err := <-consumerErr:
		if err != nil {
			runErr = fmt.Errorf("consumer stopped: %w", err)
		}
	case err := <-serverErr:
		serverDone = true
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}
	cancel()

	// The HTTP server drains before its dependencies are torn down.
	if !serverDone {
		if err := <-serverErr; err != nil && runErr == nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	return runErr
}

// startHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func (app *application) startHTTPServer(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.logger.Info("server shutdown completed")
	return nil
}

// cleanup releases everything the application owns.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.amqp != nil {
		if err := app.amqp.Close(); err != nil {
			app.logger.Error("error closing broker connection", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
