package usecase

import (
	"context"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
)

// DispatchTemplated validates in, renders templateName and sends the HTML
// result. An empty templateName uses the configured default.
func (s *Usecase) DispatchTemplated(ctx context.Context, in entity.TemplatedEmailRequest, templateName string) entity.DispatchResult {
	ctx, span := s.startSpan(ctx, "DispatchTemplated")
	defer span.End()

	start := s.clock.Now()
	id := s.uid.Generate()
	templateName = s.templateName(templateName)

	res := entity.Success(id)
	if err := s.dispatchTemplated(ctx, in, templateName); err != nil {
		res = entity.Failure(id, err)
	}

	s.finish(ctx, span, ChannelTemplated, start, res, in.To, templateName)
	return res
}

func (s *Usecase) dispatchTemplated(ctx context.Context, in entity.TemplatedEmailRequest, templateName string) error {
	in, msg, err := s.render(ctx, in, templateName)
	if err != nil {
		return err
	}

	return s.send(ctx, entity.Envelope{To: in.To, Subject: in.Subject, Message: msg})
}

// Preview validates and renders without sending.
func (s *Usecase) Preview(ctx context.Context, in entity.TemplatedEmailRequest, templateName string) (entity.RenderedMessage, error) {
	ctx, span := s.startSpan(ctx, "Preview")
	defer span.End()

	_, msg, err := s.render(ctx, in, s.templateName(templateName))
	return msg, err
}

func (s *Usecase) render(
	ctx context.Context,
	in entity.TemplatedEmailRequest,
	templateName string,
) (entity.TemplatedEmailRequest, entity.RenderedMessage, error) {
	in, err := s.validateTemplated(in)
	if err != nil {
		return in, entity.RenderedMessage{}, err
	}

	tc := entity.NewTemplateContext().
		Set(entity.VarUsername, in.Username).
		Set(entity.VarVerificationCode, in.VerificationCode).
		Set(entity.VarValidityPeriod, s.cfg.ValidityMinutes).
		Set(entity.VarSubject, in.Subject)

	msg, err := s.renderer.Render(ctx, templateName, tc)
	if err != nil {
		if entity.KindOf(err) != entity.KindTemplateRender {
			err = entity.NewError(entity.KindTemplateRender, "", err)
		}
		return in, entity.RenderedMessage{}, err
	}
	return in, msg, nil
}

func (s *Usecase) templateName(name string) string {
	if name == "" {
		return s.cfg.TemplateName
	}
	return name
}
