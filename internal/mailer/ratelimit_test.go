package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailblast/internal/models"
)

type recordingTransport struct {
	sent []*models.OutboundEmail
	err  error
}

func (t *recordingTransport) Send(ctx context.Context, email *models.OutboundEmail) error {
	t.sent = append(t.sent, email)
	return t.err
}

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func newTestMailer(transport Transport, r ISPRestrictions) (*RateLimited, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewRateLimited(transport, r, nil)
	m.now = clock.Now
	m.sleep = clock.Sleep
	return m, clock
}

func testEmail() *models.OutboundEmail {
	return &models.OutboundEmail{
		From:     "news@example.com",
		To:       "test@example.com",
		Subject:  "Hi",
		TextBody: "body",
	}
}

func TestSendPausesBetweenFullBatches(t *testing.T) {
	transport := &recordingTransport{}
	m, clock := newTestMailer(transport, ISPRestrictions{
		MaxBatch:       2,
		MinBatchPeriod: 5 * time.Second,
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Send(context.Background(), testEmail()))
	}

	assert.Len(t, transport.sent, 5)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, clock.sleeps)
}

func TestSendSkipsPauseWhenPeriodAlreadyElapsed(t *testing.T) {
	transport := &recordingTransport{}
	m, clock := newTestMailer(transport, ISPRestrictions{
		MaxBatch:       2,
		MinBatchPeriod: 5 * time.Second,
	})

	require.NoError(t, m.Send(context.Background(), testEmail()))
	require.NoError(t, m.Send(context.Background(), testEmail()))

	// Sending was slow enough that the batch period passed on its own.
	clock.now = clock.now.Add(6 * time.Second)

	require.NoError(t, m.Send(context.Background(), testEmail()))
	assert.Empty(t, clock.sleeps)
}

func TestSendPausesOnlyForRemainderOfPeriod(t *testing.T) {
	transport := &recordingTransport{}
	m, clock := newTestMailer(transport, ISPRestrictions{
		MaxBatch:       2,
		MinBatchPeriod: 5 * time.Second,
	})

	require.NoError(t, m.Send(context.Background(), testEmail()))
	require.NoError(t, m.Send(context.Background(), testEmail()))

	clock.now = clock.now.Add(2 * time.Second)

	require.NoError(t, m.Send(context.Background(), testEmail()))
	assert.Equal(t, []time.Duration{3 * time.Second}, clock.sleeps)
}

func TestUnrestrictedNeverSleeps(t *testing.T) {
	transport := &recordingTransport{}
	m, clock := newTestMailer(transport, ISPRestrictions{})

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Send(context.Background(), testEmail()))
	}

	assert.Len(t, transport.sent, 10)
	assert.Empty(t, clock.sleeps)
}

func TestFailedSendStillCountsAgainstBatch(t *testing.T) {
	transport := &recordingTransport{err: errors.New("smtp 421")}
	m, clock := newTestMailer(transport, ISPRestrictions{
		MaxBatch:       2,
		MinBatchPeriod: 5 * time.Second,
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, m.Send(context.Background(), testEmail()))
	}

	assert.Equal(t, []time.Duration{5 * time.Second}, clock.sleeps)
}
