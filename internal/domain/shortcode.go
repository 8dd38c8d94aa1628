package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	DefaultPrefixBytes = 6
	DefaultMaxRetries  = 3
	MinPrefixBytes     = 6
)

// Generator derives short codes from a SHA-256 digest of the original URL.
// The same URL and attempt always produce the same code.
type Generator struct {
	PrefixBytes int
	MaxRetries  int
}

func NewGenerator(prefixBytes, maxRetries int) (*Generator, error) {
	if prefixBytes < MinPrefixBytes {
		return nil, fmt.Errorf("prefix bytes must be at least %d, got %d", MinPrefixBytes, prefixBytes)
	}
	if maxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", maxRetries)
	}
	if prefixBytes+maxRetries > sha256.Size {
		return nil, fmt.Errorf("prefix bytes plus retries exceed digest size %d", sha256.Size)
	}

	return &Generator{PrefixBytes: prefixBytes, MaxRetries: maxRetries}, nil
}

// Generate returns the primary code for url.
func (g *Generator) Generate(url string) string {
	return g.GenerateAt(url, 0)
}

// GenerateAt returns the code for the given collision attempt. Each attempt
// keeps one more byte of the digest than the previous one.
func (g *Generator) GenerateAt(url string, attempt int) string {
	sum := sha256.Sum256([]byte(url))

	n := g.PrefixBytes + attempt
	if n > len(sum) {
		n = len(sum)
	}
	return base64.RawURLEncoding.EncodeToString(sum[:n])
}

// CodeLength is the length of codes produced by Generate.
func (g *Generator) CodeLength() int {
	return base64.RawURLEncoding.EncodedLen(g.PrefixBytes)
}
