package inbound

import (
	"context"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
)

type uc interface {
	DispatchPlain(ctx context.Context, in entity.PlainEmailRequest) entity.DispatchResult
	DispatchTemplated(ctx context.Context, in entity.TemplatedEmailRequest, templateName string) entity.DispatchResult
}
