package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"mailblast/internal/models"
)

const campaignColumns = `id, uuid, admin_id, subject, html_body, text_body, footer, status, send_start, send_end, created_at, updated_at`

type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id int) (*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE id = $1
	`

	return r.scanCampaign(r.db.QueryRowContext(ctx, query, id))
}

// FindByIDAndStatus retrieves a campaign only if it holds the status
func (r *campaignRepository) FindByIDAndStatus(ctx context.Context, id int, status models.CampaignStatus) (*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE id = $1 AND status = $2
	`

	return r.scanCampaign(r.db.QueryRowContext(ctx, query, id, status))
}

// UpdateStatus persists a status transition and touches updated_at
func (r *campaignRepository) UpdateStatus(ctx context.Context, campaign *models.Campaign, status models.CampaignStatus) error {
	query := `
		UPDATE campaigns
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, campaign.ID, status); err != nil {
		return errors.Wrapf(err, "failed to update campaign %d status to %s", campaign.ID, status)
	}

	campaign.Status = status
	campaign.Touch()
	return nil
}

func (r *campaignRepository) scanCampaign(row *sql.Row) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	err := row.Scan(
		&campaign.ID,
		&campaign.UUID,
		&campaign.AdminID,
		&campaign.Subject,
		&campaign.HTMLBody,
		&campaign.TextBody,
		&campaign.Footer,
		&campaign.Status,
		&campaign.SendStart,
		&campaign.SendEnd,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan campaign")
	}

	return campaign, nil
}
