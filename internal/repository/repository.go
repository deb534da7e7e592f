package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"mailblast/internal/models"
)

// ErrNotFound is returned when a lookup matches no row, including
// find-by-status lookups where the row exists in another status.
var ErrNotFound = errors.New("not found")

// CampaignRepository defines campaign data access operations
type CampaignRepository interface {
	GetByID(ctx context.Context, id int) (*models.Campaign, error)
	// FindByIDAndStatus returns the campaign only when it currently
	// holds the given status; ErrNotFound otherwise.
	FindByIDAndStatus(ctx context.Context, id int, status models.CampaignStatus) (*models.Campaign, error)
	// UpdateStatus persists the transition and touches the campaign's
	// modification timestamp.
	UpdateStatus(ctx context.Context, campaign *models.Campaign, status models.CampaignStatus) error
}

// RecipientProvider supplies the eligible recipients for a campaign.
// The query excludes subscribers that already have a send outcome for
// the campaign, which is what makes resumption idempotent.
type RecipientProvider interface {
	RecipientsForCampaign(ctx context.Context, campaign *models.Campaign) ([]*models.Recipient, error)
}

// OutcomeRepository records per-recipient send outcomes. Rows are
// append-only and never mutated.
type OutcomeRepository interface {
	Record(ctx context.Context, outcome *models.SendOutcome) error
}

// ListRepository resolves the names of the lists a subscriber is on.
type ListRepository interface {
	ListsForSubscriber(ctx context.Context, subscriberID int) ([]string, error)
}

// DB is a wrapper around *sql.DB to allow passing in a transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
