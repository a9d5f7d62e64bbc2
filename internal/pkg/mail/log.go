package mail

import (
	"context"
	"log/slog"
)

// Log writes messages to the structured log instead of delivering them.
type Log struct {
	logger *slog.Logger
}

// NewLog builds a Log driver. A nil logger uses slog.Default at send time.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Send logs msg at info level.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := Check(msg); err != nil {
		return err
	}

	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "mail: message captured by log driver",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
		"html_body", msg.HTMLBody,
	)
	return nil
}

// Close implements io.Closer.
func (*Log) Close() error {
	return nil
}
