package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sp3dr4/dovelink/internal/domain"
	"github.com/sp3dr4/dovelink/internal/infrastructure/cache"
	"github.com/sp3dr4/dovelink/internal/infrastructure/memory"
	"github.com/sp3dr4/dovelink/internal/pkg/metrics"
)

const testBaseURL = "http://localhost:8080"

// countingRepository wraps the memory store, counts calls and can inject
// failures.
type countingRepository struct {
	*memory.URLRepository

	creates     atomic.Int64
	findCalls   atomic.Int64
	createErr   error
	findErr     error
	createDelay time.Duration

	// When release is set, Create signals entered and blocks until release
	// is closed, then fails if its context is done.
	entered     chan struct{}
	release     chan struct{}
	enteredOnce sync.Once
}

func newCountingRepository() *countingRepository {
	return &countingRepository{URLRepository: memory.NewURLRepository()}
}

func (r *countingRepository) Create(ctx context.Context, url *domain.URL) (*domain.URL, error) {
	if r.createDelay > 0 {
		time.Sleep(r.createDelay)
	}
	if r.release != nil {
		r.enteredOnce.Do(func() { close(r.entered) })
		<-r.release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if r.createErr != nil {
		return nil, r.createErr
	}
	created, err := r.URLRepository.Create(ctx, url)
	if err == nil {
		r.creates.Add(1)
	}
	return created, err
}

func (r *countingRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*domain.URL, error) {
	r.findCalls.Add(1)
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.URLRepository.FindByOriginalURL(ctx, originalURL)
}

func (r *countingRepository) FindByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	r.findCalls.Add(1)
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.URLRepository.FindByShortCode(ctx, shortCode)
}

// mapCache is an in-memory stand-in for the shared Redis tier.
type mapCache struct {
	mu         sync.Mutex
	byCode     map[string]*domain.URL
	byOriginal map[string]*domain.URL
	err        error
	sets       int
}

func newMapCache() *mapCache {
	return &mapCache{
		byCode:     make(map[string]*domain.URL),
		byOriginal: make(map[string]*domain.URL),
	}
}

func (c *mapCache) GetByCode(_ context.Context, shortCode string) (*domain.URL, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.byCode[shortCode], nil
}

func (c *mapCache) GetByOriginal(_ context.Context, originalURL string) (*domain.URL, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.byOriginal[originalURL], nil
}

func (c *mapCache) Set(_ context.Context, url *domain.URL, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sets++
	copied := *url
	c.byCode[url.ShortCode] = &copied
	c.byOriginal[url.OriginalURL] = &copied
	return nil
}

func (c *mapCache) Ping(_ context.Context) error {
	return c.err
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIndex(repo domain.URLRepository, shared domain.Cache) *URLIndex {
	if shared == nil {
		shared = cache.NewNoOpCache()
	}
	return NewURLIndex(repo, shared, time.Hour, metrics.NewNoOpRegistry(), discardLogger())
}

func newTestService(index *URLIndex, generator *domain.Generator) *ShortenerService {
	if generator == nil {
		generator = &domain.Generator{PrefixBytes: domain.DefaultPrefixBytes, MaxRetries: domain.DefaultMaxRetries}
	}
	return NewShortenerService(index, NewDomainCounter(), generator, metrics.NewNoOpRegistry(), discardLogger(), testBaseURL)
}
