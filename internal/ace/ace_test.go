package ace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testType = MessageType{AppLabel: "discussion", Name: "response_notification"}

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"discussion/response_notification/subject.txt": {Data: []byte("Response to {{.thread_title}}\n")},
		"discussion/response_notification/body.txt":    {Data: []byte("Hi {{.username}}, see {{.post_link}}")},
		"discussion/response_notification/body.html":   {Data: []byte(`<a href="{{.post_link}}">{{.thread_title}}</a>`)},
		"discussion/response_notification/fr/subject.txt": {
			Data: []byte("Réponse à {{.thread_title}}"),
		},
		"discussion/response_notification/red-theme/body.html": {
			Data: []byte(`<div class="red">{{.thread_title}}</div>`),
		},
	}
}

func testContext() map[string]any {
	return map[string]any{
		"thread_title": "Week 1 <help>",
		"username":     "author",
		"post_link":    "https://example.com/thread?a=1&b=2",
	}
}

func TestPersonalize(t *testing.T) {
	ctx := testContext()
	msg := testType.Personalize(Recipient{Username: "author", Email: "a@example.com"}, "en", ctx)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, testType, msg.Type)
	assert.Equal(t, "en", msg.Language)
	assert.Equal(t, "author", msg.Recipient.Username)

	ctx["thread_title"] = "changed"
	assert.Equal(t, "Week 1 <help>", msg.Context["thread_title"])

	other := testType.Personalize(msg.Recipient, "en", ctx)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestRenderer_Render(t *testing.T) {
	renderer := NewRenderer(testTemplates())

	t.Run("default templates", func(t *testing.T) {
		msg := testType.Personalize(Recipient{Username: "author"}, "en", testContext())

		email, err := renderer.Render(msg, "")
		require.NoError(t, err)

		assert.Equal(t, msg.ID, email.MessageID)
		assert.Equal(t, "Response to Week 1 <help>", email.Subject)
		assert.Equal(t, "Hi author, see https://example.com/thread?a=1&b=2", email.TextBody)
		assert.Equal(t,
			`<a href="https://example.com/thread?a=1&amp;b=2">Week 1 &lt;help&gt;</a>`,
			email.HTMLBody)
	})

	t.Run("language override with default fallback", func(t *testing.T) {
		msg := testType.Personalize(Recipient{Username: "author"}, "fr-ca", testContext())

		email, err := renderer.Render(msg, "")
		require.NoError(t, err)

		assert.Equal(t, "Réponse à Week 1 <help>", email.Subject)
		assert.Contains(t, email.TextBody, "Hi author")
	})

	t.Run("theme override", func(t *testing.T) {
		msg := testType.Personalize(Recipient{Username: "author"}, "fr", testContext())

		email, err := renderer.Render(msg, "red-theme")
		require.NoError(t, err)

		assert.Equal(t, `<div class="red">Week 1 &lt;help&gt;</div>`, email.HTMLBody)
		assert.Equal(t, "Réponse à Week 1 <help>", email.Subject)
	})

	t.Run("unknown message type", func(t *testing.T) {
		msg := MessageType{AppLabel: "discussion", Name: "missing"}.Personalize(Recipient{}, "en", nil)

		_, err := renderer.Render(msg, "")
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("missing body", func(t *testing.T) {
		r := NewRenderer(fstest.MapFS{
			"discussion/response_notification/subject.txt": {Data: []byte("subject")},
		})
		_, err := r.Render(testType.Personalize(Recipient{}, "en", nil), "")
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("broken template", func(t *testing.T) {
		r := NewRenderer(fstest.MapFS{
			"discussion/response_notification/subject.txt": {Data: []byte("{{.broken")},
			"discussion/response_notification/body.txt":    {Data: []byte("body")},
		})
		_, err := r.Render(testType.Personalize(Recipient{}, "en", nil), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse subject.txt")
	})
}

func TestCandidateDirs(t *testing.T) {
	assert.Equal(t, []string{
		"discussion/response_notification/dark/pt-br",
		"discussion/response_notification/dark/pt",
		"discussion/response_notification/dark",
		"discussion/response_notification/pt-br",
		"discussion/response_notification/pt",
		"discussion/response_notification",
	}, candidateDirs(testType, "dark", "pt-br"))

	assert.Equal(t, []string{"discussion/response_notification"}, candidateDirs(testType, "", ""))
}

// MockChannel records delivered email.
type MockChannel struct {
	DeliverFn func(ctx context.Context, email *RenderedEmail) error
	Delivered []*RenderedEmail
}

func (c *MockChannel) Deliver(ctx context.Context, email *RenderedEmail) error {
	c.Delivered = append(c.Delivered, email)
	if c.DeliverFn != nil {
		return c.DeliverFn(ctx, email)
	}
	return nil
}

func TestSender_Send(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("renders with the emulated site theme", func(t *testing.T) {
		channel := &MockChannel{}
		sender := NewSender(NewRenderer(testTemplates()), channel, logger)

		site := &domain.Site{ID: 1, Domain: "example.com", Configuration: map[string]any{"theme": "red-theme"}}
		ctx := requestctx.Emulate(context.Background(), site, nil)

		err := sender.Send(ctx, testType.Personalize(Recipient{Username: "author"}, "en", testContext()))
		require.NoError(t, err)

		require.Len(t, channel.Delivered, 1)
		assert.Contains(t, channel.Delivered[0].HTMLBody, `class="red"`)
	})

	t.Run("delivery failure", func(t *testing.T) {
		channel := &MockChannel{
			DeliverFn: func(ctx context.Context, email *RenderedEmail) error {
				return errors.New("connection refused")
			},
		}
		sender := NewSender(NewRenderer(testTemplates()), channel, logger)

		err := sender.Send(context.Background(), testType.Personalize(Recipient{}, "en", testContext()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("render failure skips delivery", func(t *testing.T) {
		channel := &MockChannel{}
		sender := NewSender(NewRenderer(fstest.MapFS{}), channel, logger)

		err := sender.Send(context.Background(), testType.Personalize(Recipient{}, "en", nil))
		assert.ErrorIs(t, err, ErrTemplateNotFound)
		assert.Empty(t, channel.Delivered)
	})
}
