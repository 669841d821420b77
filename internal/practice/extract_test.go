package practice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"title": "x"}`,
			want: `{"title": "x"}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"title\": \"x\"}\n```",
			want: `{"title": "x"}`,
		},
		{
			name: "plain fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "prose around object",
			in:   "Here is your story:\n{\"title\": \"x\"}\nHope you like it!",
			want: `{"title": "x"}`,
		},
		{
			name: "array payload",
			in:   "Sure! [1, 2, 3]",
			want: `[1, 2, 3]`,
		},
		{
			name: "nested braces",
			in:   "```json\n{\"a\": {\"b\": 2}}\n```",
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "no json at all",
			in:   "  sorry, cannot help  ",
			want: "sorry, cannot help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}
