package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scheme and www", "https://www.example.com/page1", "example.com"},
		{"multi-label public suffix collapses", "http://sub.example.co.uk", "co.uk"},
		{"bare host", "example.com", "example.com"},
		{"subdomain", "https://api.github.com/repos", "github.com"},
		{"port", "http://localhost:8080/health", "localhost"},
		{"quoted", `"https://www.youtube.com/watch?v=1"`, "youtube.com"},
		{"query without path", "https://shop.example.org?item=2", "example.org"},
		{"upper case", "HTTPS://WWW.Example.COM", "example.com"},
		{"trailing backslash", `example.com\`, "example.com"},
		{"surrounding whitespace", "  https://news.ycombinator.com  ", "ycombinator.com"},
		{"empty", "", InvalidDomain},
		{"only quotes", `""`, InvalidDomain},
		{"scheme only", "https://", InvalidDomain},
		{"path only", "/just/a/path", InvalidDomain},
		{"dots only", "...", InvalidDomain},
		{"url in query of scheme-less url", "example.com/redirect?to=https://evil.org/x", "example.com"},
		{"url in path of scheme-less url", "example.com/https://evil.org", "example.com"},
		{"url in query with scheme", "https://example.com/?next=http://evil.org", "example.com"},
		{"url after fragment", "example.com#https://evil.org", "example.com"},
		{"custom scheme", "git+ssh://git.example.net/repo", "example.net"},
		{"digit-led scheme is not a scheme", "1http://evil.org", "1http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.input))
		})
	}
}
