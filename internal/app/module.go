package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/mailbite/internal/email"
)

func (a *App) emailDependency() email.Dependency {
	return email.Dependency{
		Ctx:         a.ctx,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		UUID:        a.uuid,
		Clock:       a.clock,
		Goroutine:   a.goroutine,
		Pool:        a.pool,
		Validator:   a.validator,
		Router:      a.router,
		Mail:        a.mail,
		Storage:     a.storage,
		Consumer:    a.consumer,
		Idempotency: a.idemp,
		Metrics:     a.metrics,
	}
}

func (a *App) initModules() {
	if err := email.New(a.emailDependency()); err != nil {
		slog.Error("failed to init module email", "error", err)
		os.Exit(1)
	}
}
