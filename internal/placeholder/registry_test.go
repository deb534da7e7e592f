package placeholder

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"mailblast/internal/i18n"
	"mailblast/internal/models"
)

func testRecipient() *models.Recipient {
	return &models.Recipient{
		SubscriberID: 42,
		Email:        "jane@example.com",
		Locale:       "en",
		HTMLEmail:    true,
		TrackingID:   "abc-123",
		Attributes: map[string]string{
			"FIRSTNAME": "Jane",
			"City":      "Nairobi",
			"COMPANY":   "",
		},
	}
}

func testSettings() Settings {
	return Settings{
		UnsubscribeURL: "http://x.test/unsubscribe",
		PreferencesURL: "http://x.test/preferences?page=1",
		ForwardURL:     "http://x.test/forward",
		WebsiteURL:     "http://x.test",
		Domain:         "x.test",
		Signature:      "Powered by mailblast",
	}
}

type stubLists struct {
	names []string
	err   error
}

func (s *stubLists) ListsForSubscriber(_ context.Context, _ int) ([]string, error) {
	return s.names, s.err
}

func testRegistry(lists ListProvider) *Registry {
	return DefaultRegistry(testSettings(), lists, i18n.NewCatalog("en"), []string{"FIRSTNAME", "CITY", "COMPANY"}, nil)
}

func textContext() *Context {
	return &Context{
		CampaignID: 7,
		Subject:    "News",
		Recipient:  testRecipient(),
		Format:     FormatText,
		Locale:     "en",
	}
}

func htmlContext() *Context {
	ctx := textContext()
	ctx.Format = FormatHTML
	return ctx
}

func TestExpandUnknownTagPassesThrough(t *testing.T) {
	r := testRegistry(nil)

	out := r.Expand("before [NOT_A_REAL_TAG] after", textContext())

	assert.Equal(t, "before [NOT_A_REAL_TAG] after", out)
}

func TestExpandFirstMatchingResolverWins(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(staticResolver{name: "GREETING", value: "first"})
	r.Register(staticResolver{name: "GREETING", value: "second"})

	assert.Equal(t, "first", r.Expand("[GREETING]", textContext()))
}

func TestExpandAttributeValue(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "Hello Jane", r.Expand("Hello [FIRSTNAME]", textContext()))
	// Case-insensitive key matching against the data bag.
	assert.Equal(t, "Nairobi", r.Expand("[CITY]", textContext()))
}

func TestExpandAttributeEmptyFallsBackToDefault(t *testing.T) {
	r := testRegistry(nil)
	r.SetDefault("COMPANY", "your company")

	// Empty string and missing are the same "absent" signal.
	assert.Equal(t, "your company", r.Expand("[COMPANY]", textContext()))
}

func TestExpandAttributeEmptyWithoutDefault(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "", r.Expand("[COMPANY]", textContext()))
}

func TestExpandAttributeEscapedInHTML(t *testing.T) {
	r := testRegistry(nil)
	ctx := htmlContext()
	ctx.Recipient.Attributes["FIRSTNAME"] = "Jack & Jill"

	assert.Equal(t, "Jack &amp; Jill", r.Expand("[FIRSTNAME]", ctx))
}

func TestExpandUnsubscribeText(t *testing.T) {
	r := testRegistry(nil)

	out := r.Expand("[UNSUBSCRIBE]", textContext())

	assert.Equal(t, "http://x.test/unsubscribe?uid=abc-123", out)
}

func TestExpandUnsubscribeHTML(t *testing.T) {
	r := testRegistry(nil)

	out := r.Expand("[UNSUBSCRIBE]", htmlContext())

	assert.Equal(t, `<a href="http://x.test/unsubscribe?uid=abc-123">Unsubscribe</a>`, out)
}

func TestExpandPreferencesExistingQueryString(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "http://x.test/preferences?page=1&uid=abc-123",
		r.Expand("[PREFERENCESURL]", textContext()))

	out := r.Expand("[PREFERENCESURL]", htmlContext())
	assert.Equal(t, "http://x.test/preferences?page=1&amp;uid=abc-123", out)
	assert.NotContains(t, strings.ReplaceAll(out, "&amp;", ""), "&")
}

func TestExpandForwardVariants(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "http://x.test/forward?uid=abc-123&mid=7",
		r.Expand("[FORWARDURL]", textContext()))

	// Parameterized id and label.
	out := r.Expand("[FORWARD:99:Share this]", htmlContext())
	assert.Equal(t, `<a href="http://x.test/forward?uid=abc-123&amp;mid=99">Share this</a>`, out)
}

func TestExpandListsJoinsPerFormat(t *testing.T) {
	lists := &stubLists{names: []string{"News & views", "Offers"}}
	r := testRegistry(lists)

	assert.Equal(t, "News & views\nOffers", r.Expand("[LISTS]", textContext()))
	assert.Equal(t, "News &amp; views<br/>Offers", r.Expand("[LISTS]", htmlContext()))
}

func TestExpandListsLookupErrorDegradesToEmpty(t *testing.T) {
	lists := &stubLists{err: errors.New("db down")}
	r := testRegistry(lists)

	assert.Equal(t, "", r.Expand("[LISTS]", textContext()))
}

func TestExpandListsEmptyUsesTranslatedLabel(t *testing.T) {
	r := testRegistry(&stubLists{})

	assert.Equal(t, "You are not subscribed to any lists", r.Expand("[LISTS]", textContext()))
}

func TestExpandRecipientTags(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "jane@example.com / abc-123 / News / x.test",
		r.Expand("[EMAIL] / [USERID] / [SUBJECT] / [DOMAIN]", textContext()))
}

func TestExpandSignature(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "Powered by mailblast", r.Expand("[SIGNATURE]", textContext()))
}

func TestExpandTagNamesAreCaseSensitive(t *testing.T) {
	r := testRegistry(nil)

	assert.Equal(t, "[email]", r.Expand("[email]", textContext()))
}

// staticResolver is a fixed-name, fixed-value resolver for registry
// ordering tests.
type staticResolver struct {
	name  string
	value string
}

func (s staticResolver) Match(tag Tag) bool {
	return tag.Name == s.name
}

func (s staticResolver) Resolve(_ *Context, _ Tag) (string, bool) {
	return s.value, true
}
