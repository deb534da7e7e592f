package placeholder

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"mailblast/internal/i18n"
)

// Settings carries the configuration the URL and signature resolvers
// interpolate. Missing values degrade to empty output, never to errors.
type Settings struct {
	UnsubscribeURL string
	PreferencesURL string
	ForwardURL     string
	WebsiteURL     string
	Domain         string
	Signature      string
}

// ListProvider supplies the names of the lists a subscriber belongs to.
type ListProvider interface {
	ListsForSubscriber(ctx context.Context, subscriberID int) ([]string, error)
}

// DefaultRegistry builds the standard resolver set in its canonical
// order. The attribute resolver goes last so named tags always win.
func DefaultRegistry(s Settings, lists ListProvider, tr i18n.Translator, attributeNames []string, log logrus.FieldLogger) *Registry {
	r := NewRegistry(log)

	r.Register(&unsubscribeResolver{settings: s, tr: tr})
	r.Register(&preferencesResolver{settings: s, tr: tr})
	r.Register(&forwardResolver{settings: s, tr: tr})
	r.Register(&listsResolver{lists: lists, tr: tr, log: r.log})
	r.Register(&signatureResolver{settings: s})
	r.Register(&recipientResolver{})
	r.Register(&siteResolver{settings: s})
	r.Register(&attributeResolver{names: attributeNames})

	return r
}

// trackedURL appends the recipient's tracking id, and optionally the
// campaign id, to a base URL.
func trackedURL(base string, ctx *Context, withCampaign bool) string {
	if base == "" {
		return ""
	}
	params := []Param{{Key: "uid", Value: ctx.Recipient.TrackingID}}
	if withCampaign {
		params = append(params, Param{Key: "mid", Value: strconv.Itoa(ctx.CampaignID)})
	}
	return AppendParams(base, params, ctx.Format)
}

type unsubscribeResolver struct {
	settings Settings
	tr       i18n.Translator
}

func (r *unsubscribeResolver) Match(tag Tag) bool {
	return tag.Name == "UNSUBSCRIBE" || tag.Name == "UNSUBSCRIBEURL"
}

func (r *unsubscribeResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	u := trackedURL(r.settings.UnsubscribeURL, ctx, false)
	if u == "" {
		return "", true
	}
	if tag.Name == "UNSUBSCRIBEURL" {
		return u, true
	}
	return ctx.Anchor(u, r.tr.Translate(ctx.Locale, "tag.unsubscribe")), true
}

type preferencesResolver struct {
	settings Settings
	tr       i18n.Translator
}

func (r *preferencesResolver) Match(tag Tag) bool {
	return tag.Name == "PREFERENCES" || tag.Name == "PREFERENCESURL"
}

func (r *preferencesResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	u := trackedURL(r.settings.PreferencesURL, ctx, false)
	if u == "" {
		return "", true
	}
	if tag.Name == "PREFERENCESURL" {
		return u, true
	}
	return ctx.Anchor(u, r.tr.Translate(ctx.Locale, "tag.preferences")), true
}

// forwardResolver handles [FORWARD], [FORWARD:<id>] and
// [FORWARD:<id>:<label>], plus the bare-URL variant [FORWARDURL].
// The optional id overrides the campaign id in the forward link.
type forwardResolver struct {
	settings Settings
	tr       i18n.Translator
}

func (r *forwardResolver) Match(tag Tag) bool {
	return tag.Name == "FORWARD" || tag.Name == "FORWARDURL"
}

func (r *forwardResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	base := r.settings.ForwardURL
	if base == "" {
		return "", true
	}

	mid := strconv.Itoa(ctx.CampaignID)
	if tag.Arg != "" {
		mid = tag.Arg
	}

	u := AppendParams(base, []Param{
		{Key: "uid", Value: ctx.Recipient.TrackingID},
		{Key: "mid", Value: mid},
	}, ctx.Format)

	if tag.Name == "FORWARDURL" {
		return u, true
	}

	label := tag.Label
	if label == "" {
		label = r.tr.Translate(ctx.Locale, "tag.forward")
	}
	return ctx.Anchor(u, label), true
}

type listsResolver struct {
	lists ListProvider
	tr    i18n.Translator
	log   logrus.FieldLogger
}

func (r *listsResolver) Match(tag Tag) bool {
	return tag.Name == "LISTS"
}

func (r *listsResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	if r.lists == nil {
		return "", true
	}

	names, err := r.lists.ListsForSubscriber(context.Background(), ctx.Recipient.SubscriberID)
	if err != nil {
		// Lookup failures degrade to empty output rather than
		// aborting the whole expansion pass.
		r.log.
			WithField("subscriber_id", ctx.Recipient.SubscriberID).
			WithError(err).
			Warn("failed to resolve subscriber lists")
		return "", true
	}

	if len(names) == 0 {
		return ctx.Escape(r.tr.Translate(ctx.Locale, "tag.lists.none")), true
	}
	return ctx.Join(names), true
}

type signatureResolver struct {
	settings Settings
}

func (r *signatureResolver) Match(tag Tag) bool {
	return tag.Name == "SIGNATURE"
}

func (r *signatureResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	return ctx.Escape(r.settings.Signature), true
}

// recipientResolver covers the tags derived from the recipient record
// itself and the campaign being rendered.
type recipientResolver struct{}

func (r *recipientResolver) Match(tag Tag) bool {
	switch tag.Name {
	case "EMAIL", "USERID", "SUBJECT", "FORWARDEDBY":
		return true
	}
	return false
}

func (r *recipientResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	switch tag.Name {
	case "EMAIL":
		return ctx.Escape(ctx.Recipient.Email), true
	case "USERID":
		return ctx.Recipient.TrackingID, true
	case "SUBJECT":
		return ctx.Escape(ctx.Subject), true
	case "FORWARDEDBY":
		if ctx.ForwardedBy == nil {
			return "", true
		}
		return ctx.Escape(ctx.ForwardedBy.Email), true
	}
	return "", true
}

type siteResolver struct {
	settings Settings
}

func (r *siteResolver) Match(tag Tag) bool {
	return tag.Name == "WEBSITE" || tag.Name == "DOMAIN"
}

func (r *siteResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	if tag.Name == "WEBSITE" {
		return r.settings.WebsiteURL, true
	}
	return ctx.Escape(r.settings.Domain), true
}

// attributeResolver matches per-recipient custom fields. It claims a tag
// when the name is a known attribute or present in the recipient's data
// bag; absent and empty values both report "no value" so the registry
// can fall back to a configured default.
type attributeResolver struct {
	names []string
}

func (r *attributeResolver) Match(tag Tag) bool {
	for _, n := range r.names {
		if strings.EqualFold(n, tag.Name) {
			return true
		}
	}
	return false
}

func (r *attributeResolver) Resolve(ctx *Context, tag Tag) (string, bool) {
	value, ok := ctx.Recipient.Attribute(tag.Name)
	if !ok {
		return "", false
	}
	return ctx.Escape(value), true
}
