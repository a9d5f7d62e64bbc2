package mail

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DriverSMTP selects the SMTP backend.
	DriverSMTP = "smtp"
	// DriverResend selects the Resend API backend.
	DriverResend = "resend"
	// DriverLog selects the log backend.
	DriverLog = "log"
)

// FactoryOptions groups config for supported mail backends.
type FactoryOptions struct {
	SMTP   SMTPConfig
	Resend ResendConfig
	Logger *slog.Logger
}

// NewFromDriver constructs a Mail implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP:
		return NewSMTP(opts.SMTP)
	case DriverResend:
		return NewResend(opts.Resend)
	case DriverLog:
		return NewLog(opts.Logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrConfig, driver)
	}
}
