package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailblast/internal/models"
)

func campaignRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "uuid", "admin_id", "subject", "html_body", "text_body", "footer",
		"status", "send_start", "send_end", "created_at", "updated_at",
	})
}

func TestFindByIDAndStatusReturnsCampaign(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM campaigns").
		WithArgs(1, models.CampaignStatusSubmitted).
		WillReturnRows(campaignRows().AddRow(
			1, "c0ffee", 5, "Test Subject", "<p>Hi</p>", "Hi", "", "submitted", nil, nil, now, now,
		))

	repo := NewCampaignRepository(db)
	campaign, err := repo.FindByIDAndStatus(context.Background(), 1, models.CampaignStatusSubmitted)

	require.NoError(t, err)
	assert.Equal(t, 1, campaign.ID)
	assert.Equal(t, models.CampaignStatusSubmitted, campaign.Status)
	assert.Nil(t, campaign.SendStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDAndStatusMapsNoRowsToNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM campaigns").
		WithArgs(1, models.CampaignStatusSubmitted).
		WillReturnRows(campaignRows())

	repo := NewCampaignRepository(db)
	_, err = repo.FindByIDAndStatus(context.Background(), 1, models.CampaignStatusSubmitted)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusPersistsAndMutatesCampaign(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE campaigns").
		WithArgs(1, models.CampaignStatusSending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	campaign := &models.Campaign{ID: 1, Status: models.CampaignStatusSubmitted}

	repo := NewCampaignRepository(db)
	require.NoError(t, repo.UpdateStatus(context.Background(), campaign, models.CampaignStatusSending))

	assert.Equal(t, models.CampaignStatusSending, campaign.Status)
	assert.False(t, campaign.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusLeavesCampaignOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE campaigns").
		WithArgs(1, models.CampaignStatusSending).
		WillReturnError(assert.AnError)

	campaign := &models.Campaign{ID: 1, Status: models.CampaignStatusSubmitted}

	repo := NewCampaignRepository(db)
	err = repo.UpdateStatus(context.Background(), campaign, models.CampaignStatusSending)

	assert.Error(t, err)
	assert.Equal(t, models.CampaignStatusSubmitted, campaign.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
