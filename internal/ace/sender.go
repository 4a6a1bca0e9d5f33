package ace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/requestctx"
)

// Channel delivers rendered email.
type Channel interface {
	Deliver(ctx context.Context, email *RenderedEmail) error
}

// Sender renders messages and delivers them over a channel.
type Sender struct {
	renderer *Renderer
	channel  Channel
	logger   *slog.Logger
}

// NewSender creates a Sender.
func NewSender(renderer *Renderer, channel Channel, logger *slog.Logger) *Sender {
	return &Sender{
		renderer: renderer,
		channel:  channel,
		logger:   logger.With("component", "ace_sender"),
	}
}

// Send renders msg using the theme of the site emulated in ctx and delivers it.
func (s *Sender) Send(ctx context.Context, msg *Message) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"message_id", msg.ID,
		"message_type", msg.Type.String(),
		"recipient", msg.Recipient.Username,
		"language", msg.Language,
	)

	email, err := s.renderer.Render(msg, requestctx.Theme(ctx))
	if err != nil {
		log.Error("failed to render message", "error", err)
		return fmt.Errorf("render message %s: %w", msg.ID, err)
	}

	if err := s.channel.Deliver(ctx, email); err != nil {
		log.Error("failed to deliver message", "error", err)
		return fmt.Errorf("deliver message %s: %w", msg.ID, err)
	}

	log.Info("message sent")
	return nil
}
