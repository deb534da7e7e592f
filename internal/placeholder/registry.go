package placeholder

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// tagPattern matches [NAME], [NAME:arg] and [NAME:arg:label]. Tag names
// are case-sensitive; brackets do not nest.
var tagPattern = regexp.MustCompile(`\[([A-Za-z0-9_]+)(?::([^:\[\]]*))?(?::([^\[\]]*))?\]`)

// Tag is one parsed placeholder occurrence.
type Tag struct {
	Name  string
	Arg   string
	Label string
	Raw   string
}

// Resolver expands one family of placeholder tags.
//
// Match reports whether the resolver handles the tag. Resolve returns the
// replacement text, already escaped and joined for the context's output
// format. ok=false means the resolver matched but has no value for this
// recipient; the registry then falls back to the registered default for
// the tag name, or an empty string.
type Resolver interface {
	Match(tag Tag) bool
	Resolve(ctx *Context, tag Tag) (value string, ok bool)
}

// Registry holds an ordered list of resolvers built at startup. The
// first resolver whose Match returns true wins; there is no fallback
// chaining for a tag occurrence. Unrecognized tags pass through
// verbatim.
type Registry struct {
	resolvers []Resolver
	defaults  map[string]string
	log       logrus.FieldLogger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	return &Registry{
		defaults: map[string]string{},
		log:      log,
	}
}

// Register appends a resolver. Registration order is resolution order.
func (r *Registry) Register(res Resolver) *Registry {
	r.resolvers = append(r.resolvers, res)
	return r
}

// SetDefault registers the fallback value substituted when a resolver
// matches a tag but reports no value (attribute defaults, typically).
// Names are matched case-insensitively.
func (r *Registry) SetDefault(name, value string) {
	r.defaults[strings.ToLower(name)] = value
}

// Expand replaces every recognized tag in text with its resolved value.
func (r *Registry) Expand(text string, ctx *Context) string {
	return tagPattern.ReplaceAllStringFunc(text, func(raw string) string {
		tag := parseTag(raw)

		for _, res := range r.resolvers {
			if !res.Match(tag) {
				continue
			}

			value, ok := res.Resolve(ctx, tag)
			if ok {
				return value
			}

			// Matched but no value: fall back to the registered
			// default, escaped as free text.
			if def, found := r.defaults[strings.ToLower(tag.Name)]; found {
				return ctx.Escape(def)
			}
			return ""
		}

		return raw
	})
}

func parseTag(raw string) Tag {
	m := tagPattern.FindStringSubmatch(raw)
	if m == nil {
		return Tag{Raw: raw}
	}
	return Tag{
		Name:  m[1],
		Arg:   m[2],
		Label: m[3],
		Raw:   raw,
	}
}
