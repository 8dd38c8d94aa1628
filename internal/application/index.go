package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sp3dr4/dovelink/internal/domain"
	"github.com/sp3dr4/dovelink/internal/pkg/metrics"
)

// URLIndex answers lookups in both directions from an in-process cache, then
// the shared cache tier, then the durable store. The store is authoritative:
// the in-process maps only ever hold pairs the store has confirmed.
//
// No lock is held while the shared cache or the store is called. The two maps
// are written together under one lock so a reader never sees half a pair.
type URLIndex struct {
	repo    domain.URLRepository
	shared  domain.Cache
	ttl     time.Duration
	metrics metrics.Registry
	logger  *slog.Logger

	mu         sync.RWMutex
	byOriginal map[string]string
	byCode     map[string]string
}

func NewURLIndex(repo domain.URLRepository, shared domain.Cache, ttl time.Duration, registry metrics.Registry, logger *slog.Logger) *URLIndex {
	return &URLIndex{
		repo:       repo,
		shared:     shared,
		ttl:        ttl,
		metrics:    registry,
		logger:     logger,
		byOriginal: make(map[string]string),
		byCode:     make(map[string]string),
	}
}

// LookupByOriginal returns the short code stored for originalURL.
func (x *URLIndex) LookupByOriginal(ctx context.Context, originalURL string) (string, bool, error) {
	x.mu.RLock()
	code, ok := x.byOriginal[originalURL]
	x.mu.RUnlock()
	if ok {
		x.metrics.RecordIndexLookup(metrics.OperationByOriginal, metrics.CacheStatusLocal)
		return code, true, nil
	}

	cached, err := x.shared.GetByOriginal(ctx, originalURL)
	if err != nil {
		x.logger.Warn("Shared cache lookup failed, falling back to store", "operation", metrics.OperationByOriginal, "error", err)
	} else if cached != nil && cached.OriginalURL == originalURL {
		x.remember(cached.OriginalURL, cached.ShortCode)
		x.metrics.RecordIndexLookup(metrics.OperationByOriginal, metrics.CacheStatusShared)
		return cached.ShortCode, true, nil
	}

	record, err := x.repo.FindByOriginalURL(ctx, originalURL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			x.metrics.RecordIndexLookup(metrics.OperationByOriginal, metrics.CacheStatusMiss)
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup by original url: %w", err)
	}

	x.remember(record.OriginalURL, record.ShortCode)
	x.fillShared(ctx, record)
	x.metrics.RecordIndexLookup(metrics.OperationByOriginal, metrics.CacheStatusStore)
	return record.ShortCode, true, nil
}

// LookupByCode returns the original URL stored for shortCode.
func (x *URLIndex) LookupByCode(ctx context.Context, shortCode string) (string, bool, error) {
	x.mu.RLock()
	originalURL, ok := x.byCode[shortCode]
	x.mu.RUnlock()
	if ok {
		x.metrics.RecordIndexLookup(metrics.OperationByCode, metrics.CacheStatusLocal)
		return originalURL, true, nil
	}

	cached, err := x.shared.GetByCode(ctx, shortCode)
	if err != nil {
		x.logger.Warn("Shared cache lookup failed, falling back to store", "operation", metrics.OperationByCode, "error", err)
	} else if cached != nil && cached.ShortCode == shortCode {
		x.remember(cached.OriginalURL, cached.ShortCode)
		x.metrics.RecordIndexLookup(metrics.OperationByCode, metrics.CacheStatusShared)
		return cached.OriginalURL, true, nil
	}

	record, err := x.repo.FindByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			x.metrics.RecordIndexLookup(metrics.OperationByCode, metrics.CacheStatusMiss)
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup by short code: %w", err)
	}

	x.remember(record.OriginalURL, record.ShortCode)
	x.fillShared(ctx, record)
	x.metrics.RecordIndexLookup(metrics.OperationByCode, metrics.CacheStatusStore)
	return record.OriginalURL, true, nil
}

// Insert persists the pair and caches it once the store accepted it. On a
// store error nothing is cached and the error is returned unchanged.
func (x *URLIndex) Insert(ctx context.Context, originalURL, shortCode string) (*domain.URL, error) {
	record, err := domain.NewURL(shortCode, originalURL)
	if err != nil {
		return nil, err
	}

	created, err := x.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	x.remember(created.OriginalURL, created.ShortCode)
	x.fillShared(ctx, created)
	return created, nil
}

// Warm loads the most recent records from the store into the in-process maps.
func (x *URLIndex) Warm(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	records, err := x.repo.ListRecent(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("warm index: %w", err)
	}

	x.mu.Lock()
	for _, r := range records {
		x.byOriginal[r.OriginalURL] = r.ShortCode
		x.byCode[r.ShortCode] = r.OriginalURL
	}
	x.mu.Unlock()

	return len(records), nil
}

// Len returns the number of cached pairs.
func (x *URLIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byCode)
}

// HealthCheck pings the store and the shared cache.
func (x *URLIndex) HealthCheck(ctx context.Context) error {
	if err := x.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := x.shared.Ping(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func (x *URLIndex) remember(originalURL, shortCode string) {
	x.mu.Lock()
	x.byOriginal[originalURL] = shortCode
	x.byCode[shortCode] = originalURL
	x.mu.Unlock()
}

// fillShared writes through to the shared tier. The store already holds the
// record, so a failure here only costs a later cache miss.
func (x *URLIndex) fillShared(ctx context.Context, record *domain.URL) {
	if err := x.shared.Set(ctx, record, x.ttl); err != nil {
		x.logger.Warn("Failed to populate shared cache", "short_code", record.ShortCode, "error", err)
	}
}
