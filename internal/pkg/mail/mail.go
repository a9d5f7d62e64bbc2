package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload for a single recipient.
type Message struct {
	// From is the sender address, optionally with a display name.
	From string
	// To is the recipient address.
	To string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the HTML body. When both bodies are set the message is
	// multipart/alternative.
	HTMLBody string
}

// Mail abstracts an email provider (SMTP, third-party API, etc).
type Mail interface {
	io.Closer
	// Send dispatches msg and blocks until the provider accepts or rejects it.
	Send(ctx context.Context, msg Message) error
}
