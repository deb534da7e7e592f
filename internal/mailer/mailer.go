package mailer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mailblast/internal/models"
)

// Transport delivers one message. Implementations carry their own
// timeouts; Send never blocks indefinitely.
type Transport interface {
	Send(ctx context.Context, email *models.OutboundEmail) error
}

// ISPRestrictions is the externally configured send-rate ceiling: at
// most MaxBatch sends, then hold until MinBatchPeriod has elapsed since
// the batch started. A zero MaxBatch means unrestricted sending.
type ISPRestrictions struct {
	MaxBatch       int
	MinBatchPeriod time.Duration
}

// Unrestricted reports whether no throttling applies.
func (r ISPRestrictions) Unrestricted() bool {
	return r.MaxBatch <= 0
}

// RateLimited forwards sends to the underlying transport while
// enforcing ISP restrictions. Not safe for concurrent use; the worker
// processes one dispatch task at a time.
type RateLimited struct {
	transport    Transport
	restrictions ISPRestrictions

	sent       int
	batchStart time.Time

	now   func() time.Time
	sleep func(time.Duration)
	log   logrus.FieldLogger
}

// NewRateLimited wraps transport with the given restrictions.
func NewRateLimited(transport Transport, restrictions ISPRestrictions, log logrus.FieldLogger) *RateLimited {
	if log == nil {
		log = logrus.New()
	}
	return &RateLimited{
		transport:    transport,
		restrictions: restrictions,
		now:          time.Now,
		sleep:        time.Sleep,
		log:          log,
	}
}

// Send delivers the email, pausing first if the current batch is full
// and its minimum period has not yet elapsed. A send attempt counts
// against the batch whether or not the transport succeeds.
func (m *RateLimited) Send(ctx context.Context, email *models.OutboundEmail) error {
	if !m.restrictions.Unrestricted() {
		m.throttle()
	}

	err := m.transport.Send(ctx, email)
	m.sent++
	return err
}

func (m *RateLimited) throttle() {
	if m.sent == 0 {
		m.batchStart = m.now()
		return
	}

	if m.sent < m.restrictions.MaxBatch {
		return
	}

	elapsed := m.now().Sub(m.batchStart)
	if wait := m.restrictions.MinBatchPeriod - elapsed; wait > 0 {
		m.log.
			WithField("batch_size", m.restrictions.MaxBatch).
			WithField("wait", wait).
			Info("batch limit reached, pausing before next send")
		m.sleep(wait)
	}

	m.sent = 0
	m.batchStart = m.now()
}
