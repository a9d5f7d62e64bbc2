// Package messaging consumes commands from a message broker.
//
// Every driver delivers a broker-agnostic Message to a Handler and then
// acknowledges it, whatever the handler returned. A handler error or panic is
// logged and never causes a redelivery.
package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrHandlerRequired is returned when Consume is called with a nil handler.
var ErrHandlerRequired = errors.New("messaging: handler is required")

// Consumer receives messages from a source (subject, topic, subscription).
type Consumer interface {
	io.Closer

	// Consume blocks, dispatching messages to handler until ctx is done or
	// the broker connection fails.
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one received message.
type Handler func(ctx context.Context, msg Message) error

// Message is a broker-agnostic received message.
type Message struct {
	// ID is the broker message id when the broker assigns one.
	ID string
	// Source is the subject, topic or subscription the message came from.
	Source string
	// Body is the payload.
	Body []byte
	// Headers carries header or attribute values, first value per key.
	Headers map[string]string
	// Timestamp is the broker time, or the receive time when unavailable.
	Timestamp time.Time
}

// Header returns the header value for key, or "".
func (m Message) Header(key string) string {
	return m.Headers[key]
}
