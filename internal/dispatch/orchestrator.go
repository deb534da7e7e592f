package dispatch

import (
	"context"
	"net/mail"
	"time"

	"github.com/paulbellamy/ratecounter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mailblast/internal/models"
	"mailblast/internal/placeholder"
	"mailblast/internal/precache"
	"mailblast/internal/repository"
)

// CampaignStore is the campaign persistence contract the orchestrator
// needs: status-gated lookup plus status transitions.
type CampaignStore interface {
	FindByIDAndStatus(ctx context.Context, id int, status models.CampaignStatus) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, campaign *models.Campaign, status models.CampaignStatus) error
}

// RecipientProvider supplies eligible recipients, excluding subscribers
// already processed for the campaign.
type RecipientProvider interface {
	RecipientsForCampaign(ctx context.Context, campaign *models.Campaign) ([]*models.Recipient, error)
}

// Precacher renders and serves campaign-level content.
type Precacher interface {
	Precache(ctx context.Context, campaign *models.Campaign) (bool, error)
	Get(ctx context.Context, campaignID int) (*precache.Entry, error)
}

// Mailer delivers one personalized message.
type Mailer interface {
	Send(ctx context.Context, email *models.OutboundEmail) error
}

// Requeuer re-publishes a dispatch task so a cut-short campaign resumes
// on a later invocation.
type Requeuer interface {
	PublishDispatch(campaignID int) error
}

// Stats contains dispatch statistics.
type Stats struct {
	SendRate int `json:"send_rate"`
}

// Option configures the orchestrator.
type Option func(o *Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithMaxProcessTime sets the per-invocation time budget. Zero disables
// time-boxing.
func WithMaxProcessTime(max time.Duration) Option {
	return func(o *Orchestrator) {
		o.maxProcessTime = max
	}
}

// WithFromAddress sets the sender address on outbound messages.
func WithFromAddress(from string) Option {
	return func(o *Orchestrator) {
		o.fromAddress = from
	}
}

// WithSubscribers registers event subscribers invoked at the dispatch
// extension points.
func WithSubscribers(subscribers ...EventSubscriber) Option {
	return func(o *Orchestrator) {
		o.subscribers = append(o.subscribers, subscribers...)
	}
}

// Orchestrator drives one campaign from submitted through per-recipient
// sends to sent/failed, yielding back to the queue when the time budget
// runs out.
type Orchestrator struct {
	campaigns  CampaignStore
	recipients RecipientProvider
	precache   Precacher
	registry   *placeholder.Registry
	mailer     Mailer
	requeue    Requeuer

	subscribers    []EventSubscriber
	fromAddress    string
	maxProcessTime time.Duration
	newLimiter     func() *TimeLimiter

	rate *ratecounter.RateCounter
	log  logrus.FieldLogger
}

// New creates an orchestrator with explicit collaborator injection.
func New(
	campaigns CampaignStore,
	recipients RecipientProvider,
	pre Precacher,
	registry *placeholder.Registry,
	mailer Mailer,
	requeue Requeuer,
	options ...Option,
) *Orchestrator {
	o := &Orchestrator{
		campaigns:  campaigns,
		recipients: recipients,
		precache:   pre,
		registry:   registry,
		mailer:     mailer,
		requeue:    requeue,
		rate:       ratecounter.NewRateCounter(time.Minute),
		log:        logrus.New(),
	}

	for _, option := range options {
		option(o)
	}

	if o.newLimiter == nil {
		o.newLimiter = func() *TimeLimiter {
			return NewTimeLimiter(o.maxProcessTime)
		}
	}

	return o
}

// Dispatch processes one campaign-dispatch task. Domain-level failures
// (campaign missing, wrong status, precache failure, per-recipient
// faults) are absorbed and recorded; only infrastructure errors are
// returned, and they leave the campaign resumable.
func (o *Orchestrator) Dispatch(ctx context.Context, campaignID int) error {
	log := o.log.WithField("campaign_id", campaignID)

	campaign, err := o.campaigns.FindByIDAndStatus(ctx, campaignID, models.CampaignStatusSubmitted)
	if errors.Is(err, repository.ErrNotFound) {
		// A redelivered task can find the campaign still marked sending:
		// a worker crash mid-dispatch, or a requeue whose status reset
		// failed. Resuming is safe; the outcome exclusion keeps already
		// processed recipients out.
		campaign, err = o.campaigns.FindByIDAndStatus(ctx, campaignID, models.CampaignStatusSending)
	}
	if errors.Is(err, repository.ErrNotFound) {
		// Re-submission is a deliberate operator action; never retry.
		log.Warn("campaign not found or not dispatchable, skipping")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to load campaign %d", campaignID)
	}

	if campaign.Embargoed(time.Now()) {
		log.WithField("send_start", campaign.SendStart).Info("campaign send window not open, requeueing")
		return errors.Wrap(o.requeue.PublishDispatch(campaignID), "failed to requeue embargoed campaign")
	}

	if err := o.campaigns.UpdateStatus(ctx, campaign, models.CampaignStatusSending); err != nil {
		return errors.Wrapf(err, "failed to mark campaign %d sending", campaignID)
	}

	entry, err := o.precacheContent(ctx, campaign)
	if err != nil {
		// Without rendered content no recipient can be personalized;
		// this is terminal for the campaign.
		log.WithError(err).Error("precache failed, marking campaign failed")
		o.finish(ctx, campaign, models.CampaignStatusFailed, log)
		return nil
	}

	recipients, err := o.recipients.RecipientsForCampaign(ctx, campaign)
	if err != nil {
		// Infrastructure fault: put the campaign back so a redelivery
		// can pick it up again.
		o.revert(ctx, campaign, log)
		return errors.Wrapf(err, "failed to load recipients for campaign %d", campaignID)
	}

	if len(recipients) == 0 {
		// An empty send is a successful send.
		o.finish(ctx, campaign, models.CampaignStatusSent, log)
		return nil
	}

	limiter := o.newLimiter()
	limiter.Start()

	processed := 0
	for _, recipient := range recipients {
		o.processRecipient(ctx, campaign, entry, recipient, log)
		processed++

		if limiter.ShouldStop() {
			break
		}
	}

	if processed < len(recipients) {
		return o.requeueCampaign(ctx, campaign, processed, len(recipients), log)
	}

	o.finish(ctx, campaign, models.CampaignStatusSent, log)
	return nil
}

// Stats returns the current send-rate statistics.
func (o *Orchestrator) Stats() Stats {
	return Stats{SendRate: int(o.rate.Rate())}
}

func (o *Orchestrator) precacheContent(ctx context.Context, campaign *models.Campaign) (*precache.Entry, error) {
	if _, err := o.precache.Precache(ctx, campaign); err != nil {
		return nil, err
	}

	entry, err := o.precache.Get(ctx, campaign.ID)
	if errors.Is(err, precache.ErrNotCached) {
		// The TTL lapsed between the existence check and the read;
		// render once more before giving up.
		if _, err := o.precache.Precache(ctx, campaign); err != nil {
			return nil, err
		}
		return o.precache.Get(ctx, campaign.ID)
	}
	return entry, err
}

// processRecipient handles one recipient end to end. All failures are
// absorbed here: one recipient never aborts the campaign.
func (o *Orchestrator) processRecipient(ctx context.Context, campaign *models.Campaign, entry *precache.Entry, recipient *models.Recipient, log logrus.FieldLogger) {
	rlog := log.WithField("subscriber_id", recipient.SubscriberID)

	if !validAddress(recipient.Email) {
		rlog.WithField("email", recipient.Email).Info("invalid address, skipping recipient")
		o.notifySkipped(ctx, campaign, recipient, SkipReasonInvalidAddress)
		return
	}

	email := o.personalize(campaign, entry, recipient)

	if err := o.mailer.Send(ctx, email); err != nil {
		rlog.WithError(err).Error("failed to send to recipient")
		o.notifyFailed(ctx, campaign, recipient, err)
		return
	}

	o.rate.Incr(1)
	o.notifySent(ctx, campaign, recipient)
}

// personalize runs the placeholder pass over the precached content for
// one recipient. Subject and text body always render in text format;
// the html body renders only for recipients that asked for it.
func (o *Orchestrator) personalize(campaign *models.Campaign, entry *precache.Entry, recipient *models.Recipient) *models.OutboundEmail {
	textCtx := &placeholder.Context{
		CampaignID: campaign.ID,
		Subject:    entry.Subject,
		Recipient:  recipient,
		Format:     placeholder.FormatText,
		Locale:     recipient.Locale,
	}

	email := &models.OutboundEmail{
		From:     o.fromAddress,
		To:       recipient.Email,
		Subject:  o.registry.Expand(entry.Subject, textCtx),
		TextBody: o.registry.Expand(entry.TextBody, textCtx),
	}

	if recipient.HTMLEmail && entry.HTMLBody != "" {
		htmlCtx := &placeholder.Context{
			CampaignID: campaign.ID,
			Subject:    entry.Subject,
			Recipient:  recipient,
			Format:     placeholder.FormatHTML,
			Locale:     recipient.Locale,
		}
		email.HTMLBody = o.registry.Expand(entry.HTMLBody, htmlCtx)
	}

	return email
}

// requeueCampaign puts a cut-short campaign back in the submitted state
// and publishes a fresh dispatch task; the next invocation re-queries
// eligible recipients and naturally skips the ones already processed.
func (o *Orchestrator) requeueCampaign(ctx context.Context, campaign *models.Campaign, processed, total int, log logrus.FieldLogger) error {
	if err := o.campaigns.UpdateStatus(ctx, campaign, models.CampaignStatusSubmitted); err != nil {
		return errors.Wrapf(err, "failed to reset campaign %d for requeue", campaign.ID)
	}

	if err := o.requeue.PublishDispatch(campaign.ID); err != nil {
		return errors.Wrapf(err, "failed to requeue campaign %d", campaign.ID)
	}

	log.
		WithField("processed", processed).
		WithField("remaining", total-processed).
		Info("time budget exhausted, campaign requeued")

	for _, s := range o.subscribers {
		s.OnCampaignRequeued(ctx, campaign)
	}
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, campaign *models.Campaign, status models.CampaignStatus, log logrus.FieldLogger) {
	if err := o.campaigns.UpdateStatus(ctx, campaign, status); err != nil {
		log.WithError(err).WithField("status", status).Error("failed to persist final campaign status")
	} else {
		log.WithField("status", status).Info("campaign dispatch finished")
	}

	for _, s := range o.subscribers {
		s.OnCampaignFinished(ctx, campaign, status)
	}
}

func (o *Orchestrator) revert(ctx context.Context, campaign *models.Campaign, log logrus.FieldLogger) {
	if err := o.campaigns.UpdateStatus(ctx, campaign, models.CampaignStatusSubmitted); err != nil {
		log.WithError(err).Error("failed to revert campaign to submitted")
	}
}

func (o *Orchestrator) notifySent(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient) {
	for _, s := range o.subscribers {
		s.OnRecipientSent(ctx, campaign, recipient)
	}
}

func (o *Orchestrator) notifySkipped(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, reason string) {
	for _, s := range o.subscribers {
		s.OnRecipientSkipped(ctx, campaign, recipient, reason)
	}
}

func (o *Orchestrator) notifyFailed(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, err error) {
	for _, s := range o.subscribers {
		s.OnRecipientFailed(ctx, campaign, recipient, err)
	}
}

// validAddress does a syntactic check on a bare email address.
func validAddress(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
