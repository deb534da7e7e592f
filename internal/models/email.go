package models

// OutboundEmail is a fully personalized message ready for the mail
// transport. HTMLBody is empty for recipients that prefer plain text.
type OutboundEmail struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}
