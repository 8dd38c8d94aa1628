package domain

import (
	"context"
	"time"
)

// Cache defines the shared cache tier that sits between the in-process index
// and the durable store. A miss is reported as (nil, nil).
type Cache interface {
	// GetByCode retrieves a URL from cache by its short code
	GetByCode(ctx context.Context, shortCode string) (*URL, error)

	// GetByOriginal retrieves a URL from cache by its original URL
	GetByOriginal(ctx context.Context, originalURL string) (*URL, error)

	// Set stores a URL under both keys with the specified TTL
	Set(ctx context.Context, url *URL, ttl time.Duration) error

	// Ping checks if the cache is available
	Ping(ctx context.Context) error
}
