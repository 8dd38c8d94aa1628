package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input: original url is empty")
	ErrNotFound           = errors.New("short code not found")
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// Uniqueness violations reported by repositories on Create.
	ErrOriginalURLExists = errors.New("original url already shortened")
	ErrShortCodeExists   = errors.New("short code already exists")
)

// URL is the persisted mapping between an original URL and its short code.
// Records are created once and never mutated.
type URL struct {
	ID          int64     `db:"id" json:"id"`
	ShortCode   string    `db:"short_code" json:"shortCode"`
	OriginalURL string    `db:"original_url" json:"originalUrl"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

func NewURL(shortCode, originalURL string) (*URL, error) {
	if strings.TrimSpace(originalURL) == "" {
		return nil, ErrInvalidInput
	}
	if shortCode == "" {
		return nil, errors.New("invalid short code")
	}

	return &URL{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// DomainCount is one entry of the domain frequency table.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}
