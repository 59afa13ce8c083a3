// internal/utils/slug_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		slug  string
	}{
		{"ChatGPT Writing Assistant", "chatgpt-writing-assistant"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"100% Better Prompts!", "100-better-prompts"},
		{"émojis & ünïcode", "mojis-n-code"},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.slug, Slugify(tt.title), "title=%q", tt.title)
	}
}

func TestMakeSlug(t *testing.T) {
	slug := MakeSlug("My Prompt")
	assert.True(t, strings.HasPrefix(slug, "my-prompt-"))
	assert.Greater(t, len(slug), len("my-prompt-"))

	// Empty titles still produce a usable unique slug.
	assert.NotEmpty(t, MakeSlug("!!!"))
}
