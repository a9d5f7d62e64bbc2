package inbound

import (
	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Send delivers a plain-text email.
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	res := h.uc.DispatchPlain(r.Context(), entity.PlainEmailRequest{
		To:      req.To,
		Subject: req.Subject,
		Content: req.Content,
	})

	return toResponse(res), nil
}

// SendHTML delivers a verification-code email rendered from a template.
func (h *HTTPEndpoint) SendHTML(r *router.Request) (any, error) {
	var req SendHTMLRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	res := h.uc.DispatchTemplated(r.Context(), entity.TemplatedEmailRequest{
		To:               req.To,
		Username:         req.Username,
		VerificationCode: req.VerificationCode,
		Subject:          req.Subject,
	}, req.Template)

	return toResponse(res), nil
}
