package visualize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainLabel(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://go.dev/doc", "go.dev"},
		{"https://blog.golang.org/post", "golang.org"},
		{"https://news.bbc.co.uk/story", "bbc.co.uk"},
		{"https://WWW.Example.COM", "example.com"},
		{"http://localhost:8080/x", "localhost"},
		{"http://192.168.1.10/admin", "192.168.1.10"},
		{"not a url", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainLabel(tt.url))
		})
	}
}

func TestDomainColor(t *testing.T) {
	assert.Equal(t, DomainColor("go.dev"), DomainColor("go.dev"))
	assert.Regexp(t, `^rgb\(\d{1,3}, \d{1,3}, \d{1,3}\)$`, DomainColor("github.com"))
}
