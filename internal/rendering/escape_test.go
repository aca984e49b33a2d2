package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain url", "https://example.com/a", "https://example.com/a"},
		{"empty", "", ""},
		{"raw ampersand", "https://example.com/?a=1&b=2", "https://example.com/?a=1&amp;b=2"},
		{"already escaped", "https://example.com/?a=1&amp;b=2", "https://example.com/?a=1&amp;b=2"},
		{"numeric entity", "https://example.com/&#39;x", "https://example.com/&#39;x"},
		{"quote", `https://example.com/"q"`, "https://example.com/&quot;q&quot;"},
		{"quote and entity", `a&amp;"b`, "a&amp;amp;&quot;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeAttr(tt.input))
		})
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Work", "Work"},
		{"R&D", "R&amp;D"},
		{"<Tools>", "&lt;Tools&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeText(tt.input))
		})
	}
}

func TestLooksEscaped(t *testing.T) {
	assert.True(t, looksEscaped("no ampersands"))
	assert.True(t, looksEscaped("a&lt;b&#x27;"))
	assert.False(t, looksEscaped("a & b"))
	assert.False(t, looksEscaped("a&;"))
	assert.False(t, looksEscaped("a&verylongentityname;"))
}
