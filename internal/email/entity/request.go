package entity

// PlainEmailRequest asks for a plain-text message to one recipient.
type PlainEmailRequest struct {
	To      string `validate:"required" label:"Recipient"`
	Subject string
	Content string
}

// TemplatedEmailRequest asks for a verification-code message rendered from a
// template.
type TemplatedEmailRequest struct {
	To               string `validate:"required" label:"Recipient"`
	VerificationCode string `validate:"required" label:"Verification code"`
	Username         string
	Subject          string
}

// RenderedMessage is a body ready for transport.
type RenderedMessage struct {
	IsHTML bool
	Body   string
}

// Envelope is what the transport sends.
type Envelope struct {
	To      string
	Subject string
	Message RenderedMessage
}
