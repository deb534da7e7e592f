package mailer

import (
	"context"

	"github.com/sirupsen/logrus"

	"mailblast/internal/models"
)

type logTransport struct {
	log logrus.FieldLogger
}

// NewLogTransport returns a Transport that only logs messages. Used in
// development when no mailgun credentials are configured.
func NewLogTransport(log logrus.FieldLogger) Transport {
	return &logTransport{log: log}
}

func (t *logTransport) Send(_ context.Context, email *models.OutboundEmail) error {
	t.log.
		WithField("to", email.To).
		WithField("subject", email.Subject).
		Info("email send (log transport)")
	return nil
}
