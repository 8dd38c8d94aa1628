package cache

import (
	"context"
	"time"

	"github.com/sp3dr4/dovelink/internal/domain"
)

// NoOpCache is a no-operation cache implementation that does nothing
// Used when the shared cache tier is disabled
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetByCode(_ context.Context, _ string) (*domain.URL, error) {
	return nil, nil
}

func (c *NoOpCache) GetByOriginal(_ context.Context, _ string) (*domain.URL, error) {
	return nil, nil
}

func (c *NoOpCache) Set(_ context.Context, _ *domain.URL, _ time.Duration) error {
	return nil
}

func (c *NoOpCache) Ping(_ context.Context) error {
	// Always available
	return nil
}
