package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTextStripsMarkup(t *testing.T) {
	assert.Equal(t, "Check the fire exits", SanitizeText("<p>Check the <b>fire</b> exits</p>"))
	assert.Equal(t, "Safe", SanitizeText("<script>alert('x')</script>Safe"))
	assert.Equal(t, "plain text", SanitizeText("  plain text  "))
	assert.Equal(t, "", SanitizeText("   "))
}

func TestSanitizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"<p>Check the <b>fire</b> exits</p>",
		"<script>alert('x')</script>Safe",
		"  padded  ",
		"Is the exit clear?",
		"a < b && b > c",
		"<img src=x onerror=alert(1)>caption",
	}
	for _, in := range inputs {
		once := SanitizeText(in)
		assert.Equal(t, once, SanitizeText(once), "input %q", in)
	}
}
