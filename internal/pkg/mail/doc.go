// Package mail defines the contract for delivering one email message and
// provides the SMTP, Resend and log drivers behind it.
//
// Drivers report failures as ErrMalformedMessage when the message itself
// cannot be sent as built, and as ErrDelivery when the provider could not be
// reached or refused the message. Callers classify with errors.Is.
package mail
