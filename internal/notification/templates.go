package notification

import (
	"embed"
	"io/fs"

	"github.com/phrazzld/forum-notifier/internal/ace"
)

// ResponseNotificationType is the message sent to thread authors.
var ResponseNotificationType = ace.MessageType{AppLabel: "discussion", Name: "response_notification"}

//go:embed templates
var templatesFS embed.FS

// Templates returns the built-in email templates, laid out for ace.Renderer.
func Templates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// ALLOW-PANIC: the embedded directory always exists
		panic(err)
	}
	return sub
}
