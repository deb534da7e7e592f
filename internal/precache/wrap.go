package precache

import "strings"

// wordWrap greedily wraps text at width columns, preserving existing
// line breaks. Words longer than the width stay on their own line
// unbroken.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if len(line) <= width {
			out = append(out, line)
			continue
		}

		var (
			current string
			words   = strings.Fields(line)
		)
		for _, word := range words {
			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= width:
				current += " " + word
			default:
				out = append(out, current)
				current = word
			}
		}
		out = append(out, current)
	}

	return strings.Join(out, "\n")
}
