package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"mailblast/internal/models"
)

type recipientRepository struct {
	db *sql.DB
}

// NewRecipientProvider creates the postgres-backed recipient provider.
func NewRecipientProvider(db *sql.DB) RecipientProvider {
	return &recipientRepository{db: db}
}

// RecipientsForCampaign returns the confirmed, non-blacklisted
// subscribers of the campaign's lists that have no send outcome for the
// campaign yet, in subscriber-id order. Ordering is a convenience, not a
// contract: resumption relies on the outcome exclusion, never on
// ordinal position.
func (r *recipientRepository) RecipientsForCampaign(ctx context.Context, campaign *models.Campaign) ([]*models.Recipient, error) {
	query := `
		SELECT DISTINCT s.id, s.email, s.locale, s.html_email, s.tracking_id
		FROM subscribers s
		JOIN list_subscribers ls ON ls.subscriber_id = s.id
		JOIN campaign_lists cl ON cl.list_id = ls.list_id
		WHERE cl.campaign_id = $1
		  AND s.confirmed
		  AND NOT s.blacklisted
		  AND NOT EXISTS (
			SELECT 1 FROM send_outcomes o
			WHERE o.campaign_id = $1 AND o.subscriber_id = s.id
		  )
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, campaign.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query recipients for campaign %d", campaign.ID)
	}
	defer rows.Close()

	recipients := []*models.Recipient{}
	ids := []int{}
	for rows.Next() {
		recipient := &models.Recipient{}
		err := rows.Scan(
			&recipient.SubscriberID,
			&recipient.Email,
			&recipient.Locale,
			&recipient.HTMLEmail,
			&recipient.TrackingID,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan recipient")
		}
		recipients = append(recipients, recipient)
		ids = append(ids, recipient.SubscriberID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate recipients")
	}

	if len(recipients) == 0 {
		return recipients, nil
	}

	if err := r.loadAttributes(ctx, recipients, ids); err != nil {
		return nil, err
	}

	return recipients, nil
}

// loadAttributes bulk-loads the ad-hoc attribute bags for a recipient
// batch in one query.
func (r *recipientRepository) loadAttributes(ctx context.Context, recipients []*models.Recipient, ids []int) error {
	query := `
		SELECT subscriber_id, name, value
		FROM subscriber_attributes
		WHERE subscriber_id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "failed to query subscriber attributes")
	}
	defer rows.Close()

	byID := make(map[int]*models.Recipient, len(recipients))
	for _, recipient := range recipients {
		byID[recipient.SubscriberID] = recipient
	}

	for rows.Next() {
		var (
			subscriberID int
			name         string
			value        sql.NullString
		)
		if err := rows.Scan(&subscriberID, &name, &value); err != nil {
			return errors.Wrap(err, "failed to scan subscriber attribute")
		}

		recipient, ok := byID[subscriberID]
		if !ok {
			continue
		}
		if recipient.Attributes == nil {
			recipient.Attributes = map[string]string{}
		}
		recipient.Attributes[name] = value.String
	}

	return errors.Wrap(rows.Err(), "failed to iterate subscriber attributes")
}
