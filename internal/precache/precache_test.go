package precache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailblast/internal/models"
)

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:       7,
		Subject:  "Monthly news",
		HTMLBody: "<p>Hello [FIRSTNAME]</p>",
		TextBody: "Hello [FIRSTNAME]",
		Footer:   "[SIGNATURE]",
	}
}

func TestPrecacheRendersOnce(t *testing.T) {
	svc := NewService(NewMemoryCache(), time.Hour, 0, nil)
	ctx := context.Background()

	cached, err := svc.Precache(ctx, testCampaign())
	require.NoError(t, err)
	assert.False(t, cached, "first call renders")

	cached, err = svc.Precache(ctx, testCampaign())
	require.NoError(t, err)
	assert.True(t, cached, "second call within TTL is a no-op")
}

func TestPrecacheGetReturnsRenderedContent(t *testing.T) {
	svc := NewService(NewMemoryCache(), time.Hour, 0, nil)
	ctx := context.Background()

	_, err := svc.Precache(ctx, testCampaign())
	require.NoError(t, err)

	entry, err := svc.Get(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, "Monthly news", entry.Subject)
	assert.Equal(t, "<p>Hello [FIRSTNAME]</p><br/><br/>[SIGNATURE]", entry.HTMLBody)
	assert.Equal(t, "Hello [FIRSTNAME]\n\n[SIGNATURE]", entry.TextBody)
}

func TestGetMissReturnsErrNotCached(t *testing.T) {
	svc := NewService(NewMemoryCache(), time.Hour, 0, nil)

	_, err := svc.Get(context.Background(), 99)

	assert.ErrorIs(t, err, ErrNotCached)
}

func TestPrecacheEntryExpires(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Now()
	cache.now = func() time.Time { return now }

	svc := NewService(cache, time.Minute, 0, nil)
	ctx := context.Background()

	_, err := svc.Precache(ctx, testCampaign())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, err = svc.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNotCached)

	cached, err := svc.Precache(ctx, testCampaign())
	require.NoError(t, err)
	assert.False(t, cached, "expired entry is re-rendered")
}

func TestPrecacheWrapsTextBody(t *testing.T) {
	campaign := testCampaign()
	campaign.TextBody = "one two three four five six"
	campaign.Footer = ""

	svc := NewService(NewMemoryCache(), time.Hour, 13, nil)
	ctx := context.Background()

	_, err := svc.Precache(ctx, campaign)
	require.NoError(t, err)

	entry, err := svc.Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "one two three\nfour five six", entry.TextBody)
}

func TestWordWrap(t *testing.T) {
	assert.Equal(t, "short", wordWrap("short", 20))
	assert.Equal(t, "a b\nc d", wordWrap("a b c d", 3))
	assert.Equal(t, "keep\nexisting\nbreaks", wordWrap("keep\nexisting\nbreaks", 10))
	assert.Equal(t, "reallylongword\nnext", wordWrap("reallylongword next", 5))
	assert.Equal(t, "unwrapped text", wordWrap("unwrapped text", 0))
}
