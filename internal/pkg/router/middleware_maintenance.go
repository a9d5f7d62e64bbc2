package router

import (
	"net/http"

	"github.com/shandysiswandi/mailbite/internal/pkg/config"
	"github.com/shandysiswandi/mailbite/internal/pkg/goerror"
)

// middlewareMaintenance answers 503 for routes listed in app.maintenance.endpoints.
// The list is re-read per request so a config reload takes effect immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
				if endpoint == route {
					writeError(w, goerror.NewUnavailable())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
