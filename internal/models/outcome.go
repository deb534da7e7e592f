package models

import "time"

// OutcomeStatus represents the result of processing one recipient
type OutcomeStatus string

const (
	OutcomeStatusSent    OutcomeStatus = "sent"
	OutcomeStatusSkipped OutcomeStatus = "skipped"
	OutcomeStatusFailed  OutcomeStatus = "failed"
)

// SendOutcome is the per-recipient delivery record for a campaign.
// Outcome rows are append-only; the eligible-recipients query excludes
// subscribers that already have one, which is what makes an interrupted
// dispatch resumable without duplicate delivery.
type SendOutcome struct {
	ID           int           `json:"id" db:"id"`
	CampaignID   int           `json:"campaign_id" db:"campaign_id"`
	SubscriberID int           `json:"subscriber_id" db:"subscriber_id"`
	Status       OutcomeStatus `json:"status" db:"status"`
	Detail       string        `json:"detail,omitempty" db:"detail"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}
