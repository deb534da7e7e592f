package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mailblast/internal/models"
	"mailblast/internal/repository"
)

// DispatchPublisher enqueues campaign-dispatch tasks.
type DispatchPublisher interface {
	PublishDispatch(campaignID int) error
}

// CampaignService exposes the admin operations around dispatch:
// inspecting a campaign and submitting it for sending. Authoring CRUD
// lives elsewhere.
type CampaignService struct {
	campaigns repository.CampaignRepository
	publisher DispatchPublisher
	log       logrus.FieldLogger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(campaigns repository.CampaignRepository, publisher DispatchPublisher, log logrus.FieldLogger) *CampaignService {
	if log == nil {
		log = logrus.New()
	}
	return &CampaignService{
		campaigns: campaigns,
		publisher: publisher,
		log:       log,
	}
}

// GetCampaign retrieves a campaign by ID
func (s *CampaignService) GetCampaign(ctx context.Context, id int) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "campaign", ID: id}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get campaign %d", id)
	}
	return campaign, nil
}

// SubmitCampaign marks a draft campaign submitted and enqueues its
// dispatch task. The dispatch engine takes over from there.
func (s *CampaignService) SubmitCampaign(ctx context.Context, id int) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	if !campaign.CanSubmit() {
		return nil, &BusinessLogicError{
			Message: "campaign cannot be submitted: status is " + string(campaign.Status),
		}
	}

	if err := s.campaigns.UpdateStatus(ctx, campaign, models.CampaignStatusSubmitted); err != nil {
		return nil, errors.Wrapf(err, "failed to submit campaign %d", id)
	}

	if err := s.publisher.PublishDispatch(campaign.ID); err != nil {
		return nil, errors.Wrapf(err, "campaign %d submitted but dispatch task not published", id)
	}

	s.log.WithField("campaign_id", campaign.ID).Info("campaign submitted for dispatch")
	return campaign, nil
}
