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

func TestRecordFillsGeneratedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery("INSERT INTO send_outcomes").
		WithArgs(7, 10, models.OutcomeStatusSent, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(99, created))

	outcome := &models.SendOutcome{
		CampaignID:   7,
		SubscriberID: 10,
		Status:       models.OutcomeStatusSent,
	}

	repo := NewOutcomeRepository(db)
	require.NoError(t, repo.Record(context.Background(), outcome))

	assert.Equal(t, 99, outcome.ID)
	assert.Equal(t, created, outcome.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWrapsInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO send_outcomes").
		WillReturnError(assert.AnError)

	outcome := &models.SendOutcome{
		CampaignID:   7,
		SubscriberID: 10,
		Status:       models.OutcomeStatusFailed,
		Detail:       "mailgun: 400",
	}

	repo := NewOutcomeRepository(db)
	err = repo.Record(context.Background(), outcome)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "campaign 7")
	assert.NoError(t, mock.ExpectationsWereMet())
}
