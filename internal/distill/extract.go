package distill

import (
	"strings"

	"github.com/jonathan/content-agent/internal/llm"
)

// ExtractJSONObject pulls the first JSON object out of an LLM reply.
// Models wrap their output in markdown fences or prose often enough
// that a plain unmarshal of the whole reply is not reliable; instead
// the reply is scanned for the first balanced {...} region.
//
// The boolean is false when no balanced object exists in the text.
func ExtractJSONObject(text string) (string, bool) {
	text = llm.CleanJSONBlock(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
