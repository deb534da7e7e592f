package i18n

import "fmt"

// Translator resolves localized labels for placeholder resolvers.
type Translator interface {
	Translate(locale, key string, args ...interface{}) string
}

// Catalog is a map-backed Translator with a fallback locale. Lookups
// that miss both the requested and the fallback locale return the key
// itself so a missing translation never blanks out campaign content.
type Catalog struct {
	fallback string
	messages map[string]map[string]string
}

// NewCatalog creates a catalog seeded with the built-in english labels.
func NewCatalog(fallback string) *Catalog {
	c := &Catalog{
		fallback: fallback,
		messages: map[string]map[string]string{},
	}

	c.Add("en", map[string]string{
		"tag.unsubscribe": "Unsubscribe",
		"tag.preferences": "Update your preferences",
		"tag.forward":     "Forward this message",
		"tag.lists.none":  "You are not subscribed to any lists",
		"tag.forwarded":   "Forwarded by %s",
	})

	return c
}

// Add registers or extends the message set for a locale.
func (c *Catalog) Add(locale string, messages map[string]string) {
	existing, ok := c.messages[locale]
	if !ok {
		c.messages[locale] = messages
		return
	}
	for k, v := range messages {
		existing[k] = v
	}
}

func (c *Catalog) Translate(locale, key string, args ...interface{}) string {
	msg, ok := c.lookup(locale, key)
	if !ok {
		msg, ok = c.lookup(c.fallback, key)
	}
	if !ok {
		msg = key
	}

	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	msgs, ok := c.messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := msgs[key]
	return msg, ok
}
