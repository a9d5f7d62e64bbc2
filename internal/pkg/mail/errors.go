package mail

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
)

var (
	// ErrMalformedMessage marks a message that cannot be encoded or addressed.
	ErrMalformedMessage = errors.New("mail: malformed message")
	// ErrDelivery marks a failure talking to the provider.
	ErrDelivery = errors.New("mail: delivery failed")
	// ErrConfig marks an unusable driver configuration.
	ErrConfig = errors.New("mail: invalid configuration")
)

// Check verifies that msg can be addressed and its headers encoded.
func Check(msg Message) error {
	if _, err := netmail.ParseAddress(msg.From); err != nil {
		return fmt.Errorf("%w: from %q: %w", ErrMalformedMessage, msg.From, err)
	}
	if _, err := netmail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("%w: to %q: %w", ErrMalformedMessage, msg.To, err)
	}
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("%w: subject contains a line break", ErrMalformedMessage)
	}
	return nil
}

func deliveryError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDelivery, provider, err)
}
