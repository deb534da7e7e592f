package mailer

import (
	"context"

	"github.com/mailgun/mailgun-go/v3"
	"github.com/pkg/errors"

	"mailblast/internal/models"
)

// MailgunOption configures the mailgun transport.
type MailgunOption func(t *mailgunTransport)

// SetReplyTo sets the Reply-To header on every outbound message.
func SetReplyTo(replyTo string) MailgunOption {
	return func(t *mailgunTransport) {
		t.replyTo = replyTo
	}
}

type mailgunTransport struct {
	mg      mailgun.Mailgun
	replyTo string
}

// NewMailgunTransport creates a Transport backed by mailgun.
func NewMailgunTransport(client mailgun.Mailgun, options ...MailgunOption) Transport {
	t := &mailgunTransport{
		mg: client,
	}

	for _, option := range options {
		option(t)
	}

	return t
}

func (t *mailgunTransport) Send(ctx context.Context, email *models.OutboundEmail) error {
	msg := t.mg.NewMessage(email.From, email.Subject, email.TextBody, email.To)

	if email.HTMLBody != "" {
		msg.SetHtml(email.HTMLBody)
	}
	if t.replyTo != "" {
		msg.SetReplyTo(t.replyTo)
	}

	_, _, err := t.mg.Send(ctx, msg)
	return errors.Wrapf(err, "failed to send message to %s", email.To)
}
