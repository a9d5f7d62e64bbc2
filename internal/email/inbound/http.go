package inbound

import (
	"github.com/shandysiswandi/mailbite/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/email/send", end.Send)
	r.POST("/api/email/sendHtml", end.SendHTML)
}
