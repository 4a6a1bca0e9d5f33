// Package main runs the forum notifier: it consumes response notification
// task contexts from the broker, emails thread authors who still follow their
// threads, and accepts task contexts over HTTP from services that cannot
// publish to the broker themselves.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/phrazzld/forum-notifier/internal/auth"
	"github.com/phrazzld/forum-notifier/internal/config"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/platform/postgres"
)

// options are the command line flags.
type options struct {
	migrate    string
	issueToken string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("forum-notifier", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.migrate, "migrate", "",
		fmt.Sprintf("run a migration command and exit (%v)", postgres.MigrationCommands))
	fs.StringVar(&opts.issueToken, "issue-token", "",
		"print a service token for the named publisher and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.migrate != "" && !slices.Contains(postgres.MigrationCommands, opts.migrate) {
		return options{}, fmt.Errorf("unknown migration command %q (expected one of %v)",
			opts.migrate, postgres.MigrationCommands)
	}
	if opts.migrate != "" && opts.issueToken != "" {
		return options{}, fmt.Errorf("-migrate and -issue-token cannot be combined")
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("forum-notifier: %v", err)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.issueToken != "" {
		return issueToken(ctx, cfg.Auth, opts.issueToken, os.Stdout)
	}

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, opts.migrate, appLogger)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"routing_key", cfg.Queue.RoutingKey,
		"workers", cfg.Task.WorkerCount)

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// issueToken writes a service token for service to w.
func issueToken(ctx context.Context, cfg config.AuthConfig, service string, w io.Writer) error {
	tokens, err := auth.NewTokenService(cfg)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(ctx, service)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
