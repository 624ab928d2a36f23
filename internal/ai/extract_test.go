package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "clean object",
			raw:  `{"id": 103}`,
			want: `{"id": 103}`,
			ok:   true,
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"id\": 103}\n```",
			want: `{"id": 103}`,
			ok:   true,
		},
		{
			name: "fenced without language tag",
			raw:  "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
			ok:   true,
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n```json\n{\"a\": true}\n```  \n",
			want: `{"a": true}`,
			ok:   true,
		},
		{
			name: "prose instead of json",
			raw:  "Sure! Here are your questions.",
			want: "Sure! Here are your questions.",
			ok:   false,
		},
		{
			name: "unterminated fence",
			raw:  "```json\n{\"id\": 103}",
			want: "```json\n{\"id\": 103}",
			ok:   false,
		},
		{
			name: "fenced prose",
			raw:  "```\nnot json\n```",
			want: "```\nnot json\n```",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Extraction applied to its own successful output must be a no-op.
func TestExtractJSONIdempotent(t *testing.T) {
	inputs := []string{
		`{"id": 103}`,
		"```json\n{\"questions\": []}\n```",
		"```\n42\n```",
	}
	for _, raw := range inputs {
		once, ok := ExtractJSON(raw)
		assert.True(t, ok)
		twice, ok := ExtractJSON(once)
		assert.True(t, ok)
		assert.Equal(t, once, twice)
	}
}
