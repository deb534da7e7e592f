package placeholder

import (
	"html"
	"strings"

	"mailblast/internal/models"
)

// Format selects how resolved tag values are rendered.
type Format int

const (
	// FormatText emits unescaped plain text; multi-value output joins
	// with newlines.
	FormatText Format = iota
	// FormatHTML escapes interpolated free text and joins multi-value
	// output with <br/>.
	FormatHTML
)

// Context is the ephemeral per-(campaign, recipient) value passed to
// every resolver. Constructed fresh for each personalization call and
// never persisted.
type Context struct {
	CampaignID int
	Subject    string
	Recipient  *models.Recipient
	Format     Format
	Locale     string

	// ForwardedBy is set when the message is being rendered for a
	// forward-to-a-friend send.
	ForwardedBy *models.Recipient
}

// Escape escapes free text for the context's output format.
func (c *Context) Escape(s string) string {
	if c.Format == FormatHTML {
		return html.EscapeString(s)
	}
	return s
}

// Join joins multi-value output for the context's output format, escaping
// each value in HTML mode.
func (c *Context) Join(values []string) string {
	if c.Format == FormatHTML {
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = html.EscapeString(v)
		}
		return strings.Join(escaped, "<br/>")
	}
	return strings.Join(values, "\n")
}

// Anchor renders value as a link labelled label in HTML mode, and as the
// bare URL in text mode.
func (c *Context) Anchor(url, label string) string {
	if c.Format == FormatHTML {
		return `<a href="` + url + `">` + html.EscapeString(label) + `</a>`
	}
	return url
}
