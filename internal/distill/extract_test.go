package distill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "bare object returned unchanged",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "markdown fenced object",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "prose around the object",
			text: `Here is the result you asked for: {"a": 1} Hope that helps!`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "nested objects close at the right depth",
			text: `{"outer": {"inner": {"x": 1}}} trailing`,
			want: `{"outer": {"inner": {"x": 1}}}`,
			ok:   true,
		},
		{
			name: "no opening brace",
			text: "sorry, I cannot produce that",
			ok:   false,
		},
		{
			name: "unbalanced braces",
			text: `{"a": {"b": 1}`,
			ok:   false,
		},
		{
			name: "empty input",
			text: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
