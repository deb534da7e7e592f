package dispatch

import (
	"context"

	"mailblast/internal/models"
)

// Skip reasons passed to OnRecipientSkipped.
const (
	SkipReasonInvalidAddress = "invalid_address"
)

// EventSubscriber receives dispatch events at the orchestrator's
// extension points. Subscribers are invoked in registration order,
// synchronously; outcome recording and tracking hooks plug in here.
type EventSubscriber interface {
	OnRecipientSent(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient)
	OnRecipientSkipped(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, reason string)
	OnRecipientFailed(ctx context.Context, campaign *models.Campaign, recipient *models.Recipient, err error)
	OnCampaignRequeued(ctx context.Context, campaign *models.Campaign)
	OnCampaignFinished(ctx context.Context, campaign *models.Campaign, status models.CampaignStatus)
}
