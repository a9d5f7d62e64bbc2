package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
	"github.com/shandysiswandi/mailbite/internal/pkg/messaging"
	"github.com/shandysiswandi/mailbite/internal/pkg/uid"
)

const keyOfCorrelationID string = "cID"

const (
	kindPlain     = "plain"
	kindTemplated = "templated"
)

var (
	errUnknownKind    = errors.New("email: unknown command kind")
	errDispatchFailed = errors.New("email: dispatch failed")
)

// EmailCommand is the broker payload for one dispatch.
type EmailCommand struct {
	Kind             string `json:"kind"`
	To               string `json:"to"`
	Subject          string `json:"subject"`
	Content          string `json:"content"`
	Username         string `json:"username"`
	VerificationCode string `json:"verificationCode"`
	Template         string `json:"template"`
	IdempotencyKey   string `json:"idempotencyKey"`
}

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	idem idempotency.Idempotency
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// Dispatch handles one email command. Malformed payloads and repeated
// idempotency keys are dropped without dispatching.
func (h *MQHandler) Dispatch(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("email.inbound.mq").Start(ctx, "Dispatch")
	defer span.End()

	var cmd EmailCommand
	if err := json.Unmarshal(msg.Body, &cmd); err != nil {
		slog.ErrorContext(ctx, "failed to parse email command", "message_id", msg.ID, "error", err)
		return nil
	}

	run := func(ctx context.Context) error {
		return h.dispatch(ctx, cmd)
	}

	if cmd.IdempotencyKey == "" || h.idem == nil {
		return run(ctx)
	}

	err := h.idem.Exec(ctx, cmd.IdempotencyKey, run)
	if idempotency.IsDuplicate(err) {
		slog.InfoContext(ctx, "skip repeated email command", "idempotency_key", cmd.IdempotencyKey, "reason", err.Error())
		return nil
	}
	return err
}

func (h *MQHandler) dispatch(ctx context.Context, cmd EmailCommand) error {
	var res entity.DispatchResult

	switch cmd.Kind {
	case kindPlain:
		res = h.uc.DispatchPlain(ctx, entity.PlainEmailRequest{
			To:      cmd.To,
			Subject: cmd.Subject,
			Content: cmd.Content,
		})
	case kindTemplated:
		res = h.uc.DispatchTemplated(ctx, entity.TemplatedEmailRequest{
			To:               cmd.To,
			Username:         cmd.Username,
			VerificationCode: cmd.VerificationCode,
			Subject:          cmd.Subject,
		}, cmd.Template)
	default:
		return fmt.Errorf("%w: %q", errUnknownKind, cmd.Kind)
	}

	if !res.Succeeded {
		return fmt.Errorf("%w: id=%d kind=%s", errDispatchFailed, res.ID, res.Kind)
	}
	return nil
}
