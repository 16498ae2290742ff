package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy permits the basic formatting an admin may put in login page texts.
var policy = bluemonday.UGCPolicy()

// Sanitize strips scripts, event handlers and unsafe URLs from s.
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return policy.Sanitize(s)
}
