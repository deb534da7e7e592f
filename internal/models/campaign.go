package models

import (
	"time"
)

// CampaignStatus represents valid campaign statuses
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusSubmitted CampaignStatus = "submitted"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// Campaign represents a composed message submitted for bulk delivery.
// During a dispatch run the content fields are read-only; Status is the
// only field the dispatch engine mutates.
type Campaign struct {
	ID       int            `json:"id" db:"id"`
	UUID     string         `json:"uuid" db:"uuid"`
	AdminID  int            `json:"admin_id" db:"admin_id"`
	Subject  string         `json:"subject" db:"subject"`
	HTMLBody string         `json:"html_body" db:"html_body"`
	TextBody string         `json:"text_body" db:"text_body"`
	Footer   string         `json:"footer" db:"footer"`
	Status   CampaignStatus `json:"status" db:"status"`

	SendStart *time.Time `json:"send_start,omitempty" db:"send_start"`
	SendEnd   *time.Time `json:"send_end,omitempty" db:"send_end"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanSubmit checks if the campaign can be handed to the dispatch queue
func (c *Campaign) CanSubmit() bool {
	return c.Status == CampaignStatusDraft
}

// Embargoed reports whether the campaign's send window has not opened yet.
func (c *Campaign) Embargoed(now time.Time) bool {
	return c.SendStart != nil && c.SendStart.After(now)
}

// Touch updates the modification timestamp. Called explicitly at the
// status transition points instead of relying on entity lifecycle hooks.
func (c *Campaign) Touch() {
	c.UpdatedAt = time.Now()
}
