package usecase

import (
	"context"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
)

// DispatchPlain validates in and sends its content as a text body.
func (s *Usecase) DispatchPlain(ctx context.Context, in entity.PlainEmailRequest) entity.DispatchResult {
	ctx, span := s.startSpan(ctx, "DispatchPlain")
	defer span.End()

	start := s.clock.Now()
	id := s.uid.Generate()

	res := entity.Success(id)
	if err := s.dispatchPlain(ctx, in); err != nil {
		res = entity.Failure(id, err)
	}

	s.finish(ctx, span, ChannelPlain, start, res, in.To, "")
	return res
}

func (s *Usecase) dispatchPlain(ctx context.Context, in entity.PlainEmailRequest) error {
	in, err := s.validatePlain(in)
	if err != nil {
		return err
	}

	return s.send(ctx, entity.Envelope{
		To:      in.To,
		Subject: in.Subject,
		Message: entity.RenderedMessage{IsHTML: false, Body: in.Content},
	})
}
