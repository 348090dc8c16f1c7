package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes and escapes what remains,
// so the result is safe to place in an HTML text node.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML from a value received from the promotion service.
// Use for: table cells, flash messages.
func Text(input string) string {
	return StrictPolicy.Sanitize(input)
}

// TextSlice sanitizes each string in a slice, removing all HTML.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = Text(input)
	}
	return sanitized
}
