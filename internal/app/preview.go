package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/mailbite/internal/email"
	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/config"
	"github.com/shandysiswandi/mailbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
	"github.com/shandysiswandi/mailbite/internal/pkg/mail"
	"github.com/shandysiswandi/mailbite/internal/pkg/storage"
	"github.com/shandysiswandi/mailbite/internal/pkg/uid"
	"github.com/shandysiswandi/mailbite/internal/pkg/validator"
)

// PreviewRequest is a verification email to render without sending.
type PreviewRequest struct {
	To               string
	Username         string
	VerificationCode string
	Subject          string
	Template         string
}

// Preview renders req with the configured template store and returns the
// HTML body. Nothing is sent.
func Preview(ctx context.Context, opts Options, req PreviewRequest) (string, error) {
	cfg, err := config.NewViper(ConfigPath(opts.ConfigPath))
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	defer cfg.Close()

	v, err := validator.NewV10Validator()
	if err != nil {
		return "", err
	}

	snow, err := uid.NewSnowflake(cfg.GetInt64("app.node_id"))
	if err != nil {
		return "", err
	}

	var st storage.Storage
	if driver := cfg.GetString("storage.driver"); driver != "" && cfg.GetString("modules.email.template.source") == email.SourceStorage {
		st, err = storage.NewFromDriver(ctx, driver, storageOptions(cfg))
		if err != nil {
			return "", err
		}
		defer st.Close()
	}

	pool := goroutine.NewPool(1)
	defer func() {
		_ = pool.Close()
		pool.Wait()
	}()

	uc, err := email.NewUsecase(email.Dependency{
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		UID:        snow,
		Pool:       pool,
		Validator:  v,
		Mail:       mail.NewLog(slog.Default()),
		Storage:    st,
	})
	if err != nil {
		return "", err
	}

	msg, err := uc.Preview(ctx, entity.TemplatedEmailRequest{
		To:               req.To,
		Username:         req.Username,
		VerificationCode: req.VerificationCode,
		Subject:          req.Subject,
	}, req.Template)
	if err != nil {
		return "", err
	}
	return msg.Body, nil
}
