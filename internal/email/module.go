package email

import (
	"context"
	"errors"
	"strings"

	"github.com/shandysiswandi/mailbite/internal/email/inbound"
	"github.com/shandysiswandi/mailbite/internal/email/outbound/template"
	"github.com/shandysiswandi/mailbite/internal/email/outbound/transport"
	"github.com/shandysiswandi/mailbite/internal/email/usecase"
	"github.com/shandysiswandi/mailbite/internal/pkg/clock"
	"github.com/shandysiswandi/mailbite/internal/pkg/config"
	"github.com/shandysiswandi/mailbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
	"github.com/shandysiswandi/mailbite/internal/pkg/mail"
	"github.com/shandysiswandi/mailbite/internal/pkg/messaging"
	"github.com/shandysiswandi/mailbite/internal/pkg/metrics"
	"github.com/shandysiswandi/mailbite/internal/pkg/router"
	"github.com/shandysiswandi/mailbite/internal/pkg/storage"
	"github.com/shandysiswandi/mailbite/internal/pkg/uid"
	"github.com/shandysiswandi/mailbite/internal/pkg/validator"
)

// Template sources for modules.email.template.source.
const (
	SourceEmbed   = "embed"
	SourceDir     = "dir"
	SourceStorage = "storage"
)

// ErrMissingDependency is returned when the worker pool or mail driver is absent.
var ErrMissingDependency = errors.New("email: worker pool and mail driver are required")

type Dependency struct {
	Ctx         context.Context
	Config      config.Config
	Instrument  instrument.Instrumentation
	UID         uid.NumberID
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Pool        *goroutine.Pool
	Validator   validator.Validator
	Router      *router.Router
	Mail        mail.Mail
	Storage     storage.Storage
	Consumer    messaging.Consumer
	Idempotency idempotency.Idempotency
	Metrics     *metrics.Dispatch
}

// New builds the email usecase and registers its HTTP and broker entry points.
func New(dep Dependency) error {
	uc, err := NewUsecase(dep)
	if err != nil {
		return err
	}

	if dep.Router != nil {
		inbound.RegisterHTTPEndpoint(dep.Router, uc)
	}
	if dep.Ctx != nil && dep.Goroutine != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Consumer, dep.UUID, uc, dep.Idempotency, dep.Instrument)
	}

	return nil
}

// NewUsecase assembles the dispatch pipeline without registering endpoints.
func NewUsecase(dep Dependency) (*usecase.Usecase, error) {
	if dep.Pool == nil || dep.Mail == nil {
		return nil, ErrMissingDependency
	}

	cfg := usecase.ConfigFrom(dep.Config)

	ucDep := usecase.Dependency{
		Config:     cfg,
		Validator:  dep.Validator,
		Renderer:   NewRenderer(dep.Config, dep.Storage, dep.Instrument),
		Transport:  transport.New(dep.Mail, cfg.From, dep.Instrument),
		Pool:       dep.Pool,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	}
	if dep.Metrics != nil {
		ucDep.Metrics = dep.Metrics
	}

	return usecase.New(ucDep)
}

// NewRenderer builds the template renderer from modules.email.template.*.
// Directory and storage sources fall back to the embedded templates.
func NewRenderer(cfg config.Config, st storage.Storage, ins instrument.Instrumentation) *template.Renderer {
	embedded := template.NewEmbedStore()

	var store template.Store = embedded
	switch strings.ToLower(cfg.GetString("modules.email.template.source")) {
	case SourceDir:
		store = template.ChainStore{template.NewDirStore(cfg.GetString("modules.email.template.dir")), embedded}
	case SourceStorage:
		if st != nil {
			store = template.ChainStore{
				template.NewObjectStore(st, cfg.GetString("modules.email.template.bucket"), cfg.GetString("modules.email.template.prefix")),
				embedded,
			}
		}
	}

	return template.New(template.Options{
		Store:      store,
		Cache:      cfg.GetBool("modules.email.template.cache"),
		Instrument: ins,
	})
}
