package placeholder

import (
	"net/url"
	"strings"
)

// Param is one query parameter to append to a URL.
type Param struct {
	Key   string
	Value string
}

// AppendParam appends key=value to base, choosing "?" when the URL has no
// query string yet and "&" otherwise. In HTML mode the "&" separator is
// escaped as "&amp;". The value is query-escaped in both modes.
func AppendParam(base, key, value string, f Format) string {
	sep := "?"
	if strings.Contains(base, "?") {
		if f == FormatHTML {
			sep = "&amp;"
		} else {
			sep = "&"
		}
	}
	return base + sep + key + "=" + url.QueryEscape(value)
}

// AppendParams appends params in order. Each append applies the
// existing-query check against the URL as extended by the previous
// param, so the second and later params always see a non-empty query.
func AppendParams(base string, params []Param, f Format) string {
	out := base
	for _, p := range params {
		out = AppendParam(out, p.Key, p.Value, f)
	}
	return out
}
