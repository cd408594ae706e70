package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var reNonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeFilename lowercases, replaces every non-alphanumeric character
// with a hyphen, and truncates to 50 characters.
func SanitizeFilename(name string) string {
	s := reNonAlnum.ReplaceAllString(name, "-")
	s = strings.ToLower(s)
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// Filename builds the attachment name: sanitized base, ISO date, extension.
func Filename(name string, at time.Time, ext string) string {
	if name == "" {
		name = "audit-report"
	}
	return fmt.Sprintf("%s-%s.%s", SanitizeFilename(name), at.Format("2006-01-02"), ext)
}
