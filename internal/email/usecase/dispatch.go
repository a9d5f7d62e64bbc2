package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
)

// send runs the transport on the worker pool. The caller stops waiting when
// ctx ends but the send itself carries on.
func (s *Usecase) send(ctx context.Context, env entity.Envelope) error {
	done, err := s.pool.Submit(ctx, func(ctx context.Context) error {
		return s.transport.Send(ctx, env)
	})
	if err != nil {
		return entity.NewError(entity.KindUnexpected, "", fmt.Errorf("schedule send: %w", err))
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		default:
		}
		return entity.NewError(entity.KindUnexpected, "", fmt.Errorf("stopped waiting for send: %w", context.Cause(ctx)))
	}
}

func (s *Usecase) finish(
	ctx context.Context,
	span trace.Span,
	channel string,
	start time.Time,
	res entity.DispatchResult,
	to, templateName string,
) {
	span.SetAttributes(
		attribute.Int64("dispatch.id", res.ID),
		attribute.String("dispatch.kind", res.Kind.String()),
	)
	if s.metrics != nil {
		s.metrics.Observe(channel, res.Kind.String(), s.clock.Now().Sub(start))
	}

	if res.Succeeded {
		slog.InfoContext(ctx, "email dispatched", "dispatch_id", res.ID, "channel", channel, "template", templateName)
		return
	}

	span.SetStatus(codes.Error, res.Detail)
	level := slog.LevelError
	if res.Kind == entity.KindValidation {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "email dispatch failed",
		"dispatch_id", res.ID,
		"channel", channel,
		"kind", res.Kind.String(),
		"recipient", to,
		"template", templateName,
		"detail", res.Detail,
	)
}
