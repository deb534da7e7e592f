package precache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mailblast/internal/models"
)

// ErrNotCached is returned when a campaign's rendered content is not in
// the cache, typically because the TTL lapsed between precache and read.
var ErrNotCached = errors.New("campaign content not cached")

// Entry holds the campaign-level content rendered once per campaign.
// The per-recipient path only runs placeholder substitution over these
// strings; it never re-renders the campaign itself.
type Entry struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// Service renders and caches campaign content.
type Service struct {
	cache     Cache
	ttl       time.Duration
	wrapWidth int
	log       logrus.FieldLogger
}

// NewService creates a precache service. wrapWidth bounds text-body line
// length; zero disables wrapping.
func NewService(cache Cache, ttl time.Duration, wrapWidth int, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		cache:     cache,
		ttl:       ttl,
		wrapWidth: wrapWidth,
		log:       log,
	}
}

// Precache renders the campaign's shared content and stores it under the
// campaign id. Returns true when the content was already cached. The
// existence check and set are not atomic; two workers racing here render
// the same content twice, which wastes work but stays correct because
// both renderings are identical for an unedited campaign.
func (s *Service) Precache(ctx context.Context, c *models.Campaign) (bool, error) {
	key := cacheKey(c.ID)

	cached, err := s.cache.Has(ctx, key)
	if err != nil {
		return false, errors.Wrapf(err, "precache existence check for campaign %d", c.ID)
	}
	if cached {
		return true, nil
	}

	entry := s.render(c)

	data, err := json.Marshal(entry)
	if err != nil {
		return false, errors.Wrapf(err, "marshal precache entry for campaign %d", c.ID)
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		return false, errors.Wrapf(err, "store precache entry for campaign %d", c.ID)
	}

	s.log.WithField("campaign_id", c.ID).Debug("campaign content precached")
	return false, nil
}

// Get fetches the rendered content for a campaign.
func (s *Service) Get(ctx context.Context, campaignID int) (*Entry, error) {
	data, found, err := s.cache.Get(ctx, cacheKey(campaignID))
	if err != nil {
		return nil, errors.Wrapf(err, "read precache entry for campaign %d", campaignID)
	}
	if !found {
		return nil, ErrNotCached
	}

	entry := &Entry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, errors.Wrapf(err, "decode precache entry for campaign %d", campaignID)
	}
	return entry, nil
}

func (s *Service) render(c *models.Campaign) *Entry {
	entry := &Entry{
		Subject:  c.Subject,
		HTMLBody: c.HTMLBody,
		TextBody: wordWrap(c.TextBody, s.wrapWidth),
	}

	if c.Footer != "" {
		entry.HTMLBody += "<br/><br/>" + c.Footer
		entry.TextBody += "\n\n" + wordWrap(c.Footer, s.wrapWidth)
	}

	return entry
}

func cacheKey(campaignID int) string {
	return fmt.Sprintf("campaign:%d:content", campaignID)
}
