package inbound

type SendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type SendHTMLRequest struct {
	To               string `json:"to"`
	Username         string `json:"username"`
	VerificationCode string `json:"verificationCode"`
	Subject          string `json:"subject"`
	// Template overrides the configured default template.
	Template string `json:"template"`
}
