package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port.
	Port int
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// SSL forces implicit TLS. Port 465 implies it.
	SSL bool
	// InsecureSkipVerify disables certificate checks for local relays.
	InsecureSkipVerify bool
}

// SMTP is a Mail implementation backed by gomail.
type SMTP struct {
	host string
	send func(msgs ...*gomail.Message) error
}

// NewSMTP constructs an SMTP mail sender. A connection is dialed per message.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("%w: smtp host and port are required", ErrConfig)
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.SSL {
		d.SSL = true
	}
	if cfg.InsecureSkipVerify {
		//nolint:gosec // opt-in for local relays
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true}
	}

	return &SMTP{host: cfg.Host, send: d.DialAndSend}, nil
}

// NewSMTPWithSender builds an SMTP driver that hands messages to sender
// instead of dialing a server.
func NewSMTPWithSender(host string, sender gomail.Sender) *SMTP {
	return &SMTP{host: host, send: func(msgs ...*gomail.Message) error {
		return gomail.Send(sender, msgs...)
	}}
}

// Send builds the MIME message and delivers it. The dial itself is not
// interruptible, so ctx is only checked before it starts.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := Check(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	if err := s.send(m); err != nil {
		return deliveryError("smtp "+s.host, err)
	}
	return nil
}

// Close implements io.Closer.
func (*SMTP) Close() error {
	return nil
}
