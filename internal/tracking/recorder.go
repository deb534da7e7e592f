package tracking

import (
	"context"

	"github.com/sirupsen/logrus"

	"mailblast/internal/metrics"
	"mailblast/internal/models"
	"mailblast/internal/repository"
)

// Recorder turns dispatch events into append-only send-outcome rows and
// metric increments. A recording failure is logged, never propagated:
// the dispatch loop must not stall on the tracking path. The cost of a
// lost record is a benign duplicate attempt on the next resume.
type Recorder struct {
	outcomes repository.OutcomeRepository
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

// NewRecorder creates a recorder. metrics may be nil.
func NewRecorder(outcomes repository.OutcomeRepository, m *metrics.Metrics, log logrus.FieldLogger) *Recorder {
	if log == nil {
		log = logrus.New()
	}
	return &Recorder{
		outcomes: outcomes,
		metrics:  m,
		log:      log,
	}
}

func (r *Recorder) OnRecipientSent(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient) {
	r.record(ctx, campaign, recipient, models.OutcomeStatusSent, "")
	if r.metrics != nil {
		r.metrics.RecipientsSent.Inc()
	}
}

func (r *Recorder) OnRecipientSkipped(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, reason string) {
	r.record(ctx, campaign, recipient, models.OutcomeStatusSkipped, reason)
	if r.metrics != nil {
		r.metrics.RecipientsSkipped.Inc()
	}
}

func (r *Recorder) OnRecipientFailed(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, err error) {
	r.record(ctx, campaign, recipient, models.OutcomeStatusFailed, err.Error())
	if r.metrics != nil {
		r.metrics.RecipientsFailed.Inc()
	}
}

func (r *Recorder) OnCampaignRequeued(_ context.Context, _ *models.Campaign) {
	if r.metrics != nil {
		r.metrics.CampaignsRequeued.Inc()
	}
}

func (r *Recorder) OnCampaignFinished(_ context.Context, _ *models.Campaign, status models.CampaignStatus) {
	if r.metrics == nil {
		return
	}
	switch status {
	case models.CampaignStatusSent:
		r.metrics.CampaignsSent.Inc()
	case models.CampaignStatusFailed:
		r.metrics.CampaignsFailed.Inc()
	}
}

func (r *Recorder) record(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, status models.OutcomeStatus, detail string) {
	outcome := &models.SendOutcome{
		CampaignID:   campaign.ID,
		SubscriberID: recipient.SubscriberID,
		Status:       status,
		Detail:       detail,
	}

	if err := r.outcomes.Record(ctx, outcome); err != nil {
		r.log.
			WithField("campaign_id", campaign.ID).
			WithField("subscriber_id", recipient.SubscriberID).
			WithError(err).
			Error("failed to record send outcome")
	}
}
