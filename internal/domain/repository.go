package domain

import "context"

// URLRepository is the durable store. Create must reject a second record for
// the same original URL with ErrOriginalURLExists and a reused short code with
// ErrShortCodeExists. Lookups return ErrNotFound on a miss.
type URLRepository interface {
	Create(ctx context.Context, url *URL) (*URL, error)
	FindByOriginalURL(ctx context.Context, originalURL string) (*URL, error)
	FindByShortCode(ctx context.Context, shortCode string) (*URL, error)
	ListRecent(ctx context.Context, limit int) ([]*URL, error)
	Close() error
	HealthCheck(ctx context.Context) error
}
