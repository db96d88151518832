package publish

import (
	"strings"
	"unicode/utf8"
)

// threadSeparator is the scheduling API's convention for tweet breaks
// inside a single draft body.
const threadSeparator = "\n\n\n\n"

// maxPostLength is the per-tweet character limit.
const maxPostLength = 280

// FormatThreadContent joins individual post bodies into one draft body
// using the API's four-newline thread break.
func FormatThreadContent(posts []string) string {
	return strings.Join(posts, threadSeparator)
}

// SplitLongContent breaks content into tweet-sized chunks on word
// boundaries. Words longer than the limit are split mid-word. Content
// already within the limit comes back as a single chunk.
func SplitLongContent(content string) []string {
	if utf8.RuneCountInString(content) <= maxPostLength {
		return []string{content}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(content) {
		wordLen := utf8.RuneCountInString(word)

		if wordLen > maxPostLength {
			flush()
			runes := []rune(word)
			for len(runes) > maxPostLength {
				chunks = append(chunks, string(runes[:maxPostLength]))
				runes = runes[maxPostLength:]
			}
			cur.WriteString(string(runes))
			curLen = len(runes)
			continue
		}

		if curLen > 0 && curLen+1+wordLen > maxPostLength {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wordLen
	}
	flush()

	return chunks
}
