package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditedContentAppendsSingleMarker(t *testing.T) {
	once := EditedContent("hello team")
	assert.Equal(t, "hello team (edited)", once)

	twice := EditedContent(once)
	assert.Equal(t, once, twice)

	compounded := EditedContent("hello (edited) (edited)  ")
	assert.Equal(t, "hello (edited)", compounded)
	assert.Equal(t, 1, strings.Count(compounded, "(edited)"))
}
