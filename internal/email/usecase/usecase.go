package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/clock"
	"github.com/shandysiswandi/mailbite/internal/pkg/config"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
	"github.com/shandysiswandi/mailbite/internal/pkg/uid"
	"github.com/shandysiswandi/mailbite/internal/pkg/validator"
)

// Channels label dispatch metrics.
const (
	ChannelPlain     = "plain"
	ChannelTemplated = "templated"
)

// Config is read once at startup.
type Config struct {
	From            string `validate:"required" label:"Sender address"`
	TemplateName    string `validate:"required" label:"Template name"`
	ValidityMinutes int    `validate:"gte=1" label:"Verification code validity"`
}

// ConfigFrom reads the email settings from cfg.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		From:            cfg.GetString("mail.from"),
		TemplateName:    cfg.GetString("modules.email.template_name"),
		ValidityMinutes: cfg.GetInt("modules.email.verification_code_validity_minutes"),
	}
}

type renderer interface {
	Render(ctx context.Context, name string, tc *entity.TemplateContext) (entity.RenderedMessage, error)
}

type transport interface {
	Send(ctx context.Context, env entity.Envelope) error
}

type workerPool interface {
	Submit(ctx context.Context, fn func(ctx context.Context) error) (<-chan error, error)
}

// Recorder receives one observation per finished dispatch.
type Recorder interface {
	Observe(channel, kind string, elapsed time.Duration)
}

type Dependency struct {
	Config     Config
	Validator  validator.Validator
	Renderer   renderer
	Transport  transport
	Pool       workerPool
	UID        uid.NumberID
	Clock      clock.Clocker
	Metrics    Recorder
	Instrument instrument.Instrumentation
}

// Usecase coordinates validation, rendering and sending of one email per
// call. It holds no per-request state.
type Usecase struct {
	cfg       Config
	validator validator.Validator
	renderer  renderer
	transport transport
	pool      workerPool
	uid       uid.NumberID
	clock     clock.Clocker
	metrics   Recorder
	ins       instrument.Instrumentation
}

var errMissingDependency = errors.New("email: missing dependency")

// New checks cfg and wires the collaborators.
func New(dep Dependency) (*Usecase, error) {
	if dep.Validator == nil || dep.Renderer == nil || dep.Transport == nil || dep.Pool == nil || dep.UID == nil {
		return nil, errMissingDependency
	}
	if err := dep.Validator.Validate(dep.Config); err != nil {
		return nil, fmt.Errorf("email: config: %w", err)
	}

	uc := &Usecase{
		cfg:       dep.Config,
		validator: dep.Validator,
		renderer:  dep.Renderer,
		transport: dep.Transport,
		pool:      dep.Pool,
		uid:       dep.UID,
		clock:     dep.Clock,
		metrics:   dep.Metrics,
		ins:       dep.Instrument,
	}
	if uc.clock == nil {
		uc.clock = clock.New()
	}
	if uc.ins == nil {
		uc.ins = instrument.NewNoop()
	}
	return uc, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("email.usecase").Start(ctx, name)
}
