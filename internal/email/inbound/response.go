package inbound

import (
	"net/http"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/router"
)

const (
	msgSent   = "Email sent successfully"
	msgFailed = "Failed to send email"
)

// toResponse maps a dispatch result onto the wire envelope. Only validation
// failures echo their detail; everything else stays in the logs.
func toResponse(res entity.DispatchResult) router.Response {
	switch {
	case res.Succeeded:
		return router.Response{Code: http.StatusOK, Message: msgSent}
	case res.Kind == entity.KindValidation:
		return router.Response{Code: http.StatusBadRequest, Message: res.Detail}
	default:
		return router.Response{Code: http.StatusInternalServerError, Message: msgFailed}
	}
}
