package models

import "strings"

// Recipient is one eligible subscriber for a campaign dispatch pass.
// Immutable for the duration of the pass.
type Recipient struct {
	SubscriberID int    `json:"subscriber_id" db:"subscriber_id"`
	Email        string `json:"email" db:"email"`
	Locale       string `json:"locale" db:"locale"`
	HTMLEmail    bool   `json:"html_email" db:"html_email"`
	TrackingID   string `json:"tracking_id" db:"tracking_id"`

	// Attributes is the recipient's ad-hoc scalar data bag
	// (first name, city, ...), keyed by attribute name.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attribute does a case-insensitive lookup in the recipient's data bag.
// An empty string and a missing key are the same "absent" signal.
func (r *Recipient) Attribute(name string) (string, bool) {
	for k, v := range r.Attributes {
		if strings.EqualFold(k, name) {
			if v == "" {
				return "", false
			}
			return v, true
		}
	}
	return "", false
}
