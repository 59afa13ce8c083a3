// internal/utils/slug.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title and collapses everything non-alphanumeric into
// single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// MakeSlug appends a base36 timestamp suffix so two products with the same
// title never collide on the unique slug index.
func MakeSlug(title string) string {
	suffix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	slug := Slugify(title)
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
