package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"mailblast/internal/models"
)

type outcomeRepository struct {
	db *sql.DB
}

// NewOutcomeRepository creates a new send-outcome repository
func NewOutcomeRepository(db *sql.DB) OutcomeRepository {
	return &outcomeRepository{db: db}
}

// Record appends one per-recipient outcome row
func (r *outcomeRepository) Record(ctx context.Context, outcome *models.SendOutcome) error {
	query := `
		INSERT INTO send_outcomes (campaign_id, subscriber_id, status, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		outcome.CampaignID,
		outcome.SubscriberID,
		outcome.Status,
		outcome.Detail,
	).Scan(&outcome.ID, &outcome.CreatedAt)

	return errors.Wrapf(err, "failed to record outcome for campaign %d subscriber %d",
		outcome.CampaignID, outcome.SubscriberID)
}
