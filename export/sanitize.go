package export

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Strict policy: no tags, no attributes. Free text goes straight into
// document markup, so anything tag-shaped is stripped before it gets there.
var sanitizePolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from free text and trims surrounding
// whitespace. Idempotent: already-sanitized text passes through unchanged.
func SanitizeText(text string) string {
	return strings.TrimSpace(sanitizePolicy.Sanitize(text))
}
