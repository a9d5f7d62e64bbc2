package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"
)

// emptyBodyFallback stands in for an empty message. The API rejects a payload
// with neither html nor text, while SMTP delivers an empty body.
const emptyBodyFallback = " "

// ResendConfig configures the Resend API driver.
type ResendConfig struct {
	// APIKey authenticates against the Resend API.
	APIKey string
	// BaseURL overrides the API endpoint. Empty keeps the default.
	BaseURL string
	// HTTPClient overrides the transport. Nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// Resend is a Mail implementation backed by the Resend HTTP API.
type Resend struct {
	client *resend.Client
}

// NewResend constructs a Resend mail sender.
func NewResend(cfg ResendConfig) (*Resend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: resend api key is required", ErrConfig)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	client := resend.NewCustomClient(hc, cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: resend base url: %w", ErrConfig, err)
		}
		client.BaseURL = u
	}

	return &Resend{client: client}, nil
}

// Send submits msg to the API.
func (r *Resend) Send(ctx context.Context, msg Message) error {
	if err := Check(msg); err != nil {
		return err
	}

	text := msg.TextBody
	if text == "" && msg.HTMLBody == "" {
		text = emptyBodyFallback
	}

	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    text,
	})
	if err != nil {
		return deliveryError("resend", err)
	}
	return nil
}

// Close implements io.Closer.
func (*Resend) Close() error {
	return nil
}
