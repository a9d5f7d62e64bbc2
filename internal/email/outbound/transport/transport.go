// Package transport turns a rendered envelope into a mail.Message and hands
// it to the configured mail driver.
package transport

import (
	"context"
	"errors"
	"net"
	"net/textproto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
	"github.com/shandysiswandi/mailbite/internal/pkg/mail"
)

// Transport sends one envelope per call. It never retries.
type Transport struct {
	client mail.Mail
	from   string
	ins    instrument.Instrumentation
}

// New builds a Transport that sends as from.
func New(client mail.Mail, from string, ins instrument.Instrumentation) *Transport {
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &Transport{client: client, from: from, ins: ins}
}

// Send blocks until the driver accepts or rejects env. Failures are
// *entity.Error values classified by Classify.
func (t *Transport) Send(ctx context.Context, env entity.Envelope) error {
	ctx, span := t.ins.Tracer("email.outbound.transport").Start(ctx, "Send")
	defer span.End()
	span.SetAttributes(attribute.Bool("mail.html", env.Message.IsHTML))

	msg := mail.Message{
		From:    t.from,
		To:      env.To,
		Subject: env.Subject,
	}
	if env.Message.IsHTML {
		msg.HTMLBody = env.Message.Body
	} else {
		msg.TextBody = env.Message.Body
	}

	err := mail.Check(msg)
	if err == nil {
		err = t.client.Send(ctx, msg)
	}
	if err != nil {
		kind := Classify(err)
		span.SetAttributes(attribute.String("mail.error_kind", kind.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.NewError(kind, "", err)
	}

	return nil
}

// Classify maps a driver error onto a transport error kind.
func Classify(err error) entity.ErrorKind {
	if err == nil {
		return entity.KindNone
	}

	var (
		netErr   net.Error
		protoErr *textproto.Error
	)
	switch {
	case errors.Is(err, mail.ErrMalformedMessage):
		return entity.KindTransportFormat
	case errors.Is(err, mail.ErrDelivery), errors.As(err, &netErr), errors.As(err, &protoErr):
		return entity.KindTransportConnection
	default:
		return entity.KindUnexpected
	}
}
