package ace

import (
	"maps"

	"github.com/google/uuid"
)

// MessageType identifies a kind of message and the templates that render it.
type MessageType struct {
	AppLabel string
	Name     string
}

// String returns "app_label.name".
func (t MessageType) String() string {
	return t.AppLabel + "." + t.Name
}

// Recipient is the addressee of a message.
type Recipient struct {
	Username string
	Email    string
}

// Message is a personalized instance of a MessageType.
type Message struct {
	ID        uuid.UUID
	Type      MessageType
	Recipient Recipient
	Language  string
	Context   map[string]any
}

// Personalize creates a message for recipient in lang. The context is copied;
// later changes to ctx do not affect the message.
func (t MessageType) Personalize(recipient Recipient, lang string, ctx map[string]any) *Message {
	return &Message{
		ID:        uuid.New(),
		Type:      t,
		Recipient: recipient,
		Language:  lang,
		Context:   maps.Clone(ctx),
	}
}

// RenderedEmail is a message ready for delivery.
type RenderedEmail struct {
	MessageID uuid.UUID
	Type      MessageType
	To        Recipient
	Subject   string
	TextBody  string
	HTMLBody  string
}
