package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBinaryScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
		wantErr bool
	}{
		{name: "json yes", content: `{"score": "yes"}`, want: true},
		{name: "json no", content: `{"score": "no"}`, want: false},
		{name: "json yes uppercase", content: `{"score": "YES"}`, want: true},
		{name: "json with whitespace", content: "  {\"score\": \"yes\"}\n", want: true},
		{name: "fenced json", content: "```json\n{\"score\": \"yes\"}\n```", want: true},
		{name: "fenced json no language tag", content: "```\n{\"score\": \"no\"}\n```", want: false},
		{name: "invalid score value defaults to no", content: `{"score": "maybe"}`, want: false},
		{name: "plain text yes fallback", content: "Yes, the document is relevant.", want: true},
		{name: "plain text no fallback", content: "No.", want: false},
		{name: "unrelated text defaults to no", content: "the document discusses fishing", want: false},
		{name: "empty response errors", content: "", wantErr: true},
		{name: "whitespace only errors", content: "   \n\t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBinaryScore(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBinaryScore_OversizedContent(t *testing.T) {
	// Content past the cap is truncated, not rejected.
	content := `yes, because ` + strings.Repeat("x", 32*1024)
	got, err := ParseBinaryScore(content)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"score": "yes"}`, stripCodeFence("```json\n{\"score\": \"yes\"}\n```"))
	assert.Equal(t, "plain", stripCodeFence("plain"))
}
