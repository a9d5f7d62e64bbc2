package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/mailbite/internal/pkg/stacktrace"
)

// deliver runs handler for msg and then acks it. The handler outcome is
// logged and returned for the caller's bookkeeping; it never blocks the ack.
func deliver(ctx context.Context, driver string, msg Message, handler Handler, ack func() error) error {
	herr := callHandlerWithRecover(ctx, driver, func() error {
		return handler(ctx, msg)
	})
	if herr != nil {
		slog.WarnContext(ctx, "messaging: handler failed, message dropped",
			"driver", driver, "source", msg.Source, "message_id", msg.ID, "error", herr)
	}

	if err := ack(); err != nil {
		slog.ErrorContext(ctx, "messaging: ack failed",
			"driver", driver, "source", msg.Source, "message_id", msg.ID, "error", err)
		return fmt.Errorf("messaging: %s ack: %w", driver, err)
	}
	return herr
}

func callHandlerWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return fn()
}
