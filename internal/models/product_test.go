// internal/models/product_test.go
package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakePreview(t *testing.T) {
	short := "You are a helpful assistant."
	assert.Equal(t, short, MakePreview(short))
	assert.Equal(t, short, MakePreview("  "+short+"  "))

	long := strings.Repeat("a", PreviewLength+50)
	preview := MakePreview(long)
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.LessOrEqual(t, len(preview), PreviewLength+3)

	exact := strings.Repeat("b", PreviewLength)
	assert.Equal(t, exact, MakePreview(exact))
}
