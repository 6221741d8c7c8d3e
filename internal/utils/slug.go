// internal/utils/slug.go
package utils

import (
	"regexp"
	"strings"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases s, turns whitespace runs into a hyphen and drops every
// character outside [a-z0-9-]. The same rule is applied to explicit slugs.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	return slugInvalid.ReplaceAllString(slug, "")
}
