package usecase

import (
	"errors"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/validator"
)

func (s *Usecase) validatePlain(in entity.PlainEmailRequest) (entity.PlainEmailRequest, error) {
	if err := s.validator.Validate(in); err != nil {
		return in, validationError(err)
	}
	return in, nil
}

func (s *Usecase) validateTemplated(in entity.TemplatedEmailRequest) (entity.TemplatedEmailRequest, error) {
	if err := s.validator.Validate(in); err != nil {
		return in, validationError(err)
	}
	if in.Username == "" {
		in.Username = in.To
	}
	return in, nil
}

// validationError keeps the first failing field's message for the caller.
func validationError(err error) error {
	var verr validator.V10ValidationError
	if errors.As(err, &verr) && len(verr) > 0 {
		return entity.NewError(entity.KindValidation, verr.First().Message, err)
	}
	return entity.NewError(entity.KindUnexpected, "", err)
}
