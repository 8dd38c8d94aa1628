package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sp3dr4/dovelink/internal/domain"
)

// URLRepository keeps records in two maps so both unique keys are enforced
// the way a SQL store would enforce them.
type URLRepository struct {
	byCode     map[string]*domain.URL
	byOriginal map[string]*domain.URL
	lastID     int64
	mu         sync.RWMutex
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		byCode:     make(map[string]*domain.URL),
		byOriginal: make(map[string]*domain.URL),
	}
}

func (r *URLRepository) Create(_ context.Context, url *domain.URL) (*domain.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOriginal[url.OriginalURL]; exists {
		return nil, domain.ErrOriginalURLExists
	}
	if _, exists := r.byCode[url.ShortCode]; exists {
		return nil, domain.ErrShortCodeExists
	}

	r.lastID++
	created := &domain.URL{
		ID:          r.lastID,
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
	}

	r.byCode[created.ShortCode] = created
	r.byOriginal[created.OriginalURL] = created

	copied := *created
	return &copied, nil
}

func (r *URLRepository) FindByOriginalURL(_ context.Context, originalURL string) (*domain.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.byOriginal[originalURL]
	if !exists {
		return nil, domain.ErrNotFound
	}

	copied := *url
	return &copied, nil
}

func (r *URLRepository) FindByShortCode(_ context.Context, shortCode string) (*domain.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.byCode[shortCode]
	if !exists {
		return nil, domain.ErrNotFound
	}

	copied := *url
	return &copied, nil
}

func (r *URLRepository) ListRecent(_ context.Context, limit int) ([]*domain.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]*domain.URL, 0, len(r.byCode))
	for _, url := range r.byCode {
		copied := *url
		urls = append(urls, &copied)
	}

	sort.Slice(urls, func(i, j int) bool { return urls[i].ID > urls[j].ID })

	if limit >= 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

// Len returns the number of stored records.
func (r *URLRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}

func (r *URLRepository) Close() error {
	return nil
}

func (r *URLRepository) HealthCheck(_ context.Context) error {
	return nil
}
