package publish

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatThreadContent(t *testing.T) {
	got := FormatThreadContent([]string{"first", "second", "third"})
	assert.Equal(t, "first\n\n\n\nsecond\n\n\n\nthird", got)

	assert.Equal(t, "only", FormatThreadContent([]string{"only"}))
	assert.Equal(t, "", FormatThreadContent(nil))
}

func TestSplitLongContentShortPassesThrough(t *testing.T) {
	assert.Equal(t, []string{"short post"}, SplitLongContent("short post"))
	assert.Equal(t, []string{""}, SplitLongContent(""))
}

func TestSplitLongContentBreaksOnWordBoundaries(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 30))
	chunks := SplitLongContent(content)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), maxPostLength)
		assert.False(t, strings.HasPrefix(chunk, " "))
		assert.False(t, strings.HasSuffix(chunk, " "))
	}

	// No words lost or mangled.
	assert.Equal(t, strings.Fields(content), strings.Fields(strings.Join(chunks, " ")))
}

func TestSplitLongContentHardSplitsOversizedWord(t *testing.T) {
	word := strings.Repeat("a", maxPostLength+50)
	chunks := SplitLongContent("intro " + word)
	require.Len(t, chunks, 3)

	assert.Equal(t, "intro", chunks[0])
	assert.Equal(t, strings.Repeat("a", maxPostLength), chunks[1])
	assert.Equal(t, strings.Repeat("a", 50), chunks[2])
}
