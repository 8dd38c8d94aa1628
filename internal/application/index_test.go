package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/dovelink/internal/domain"
)

func TestURLIndex_InsertThenLookup(t *testing.T) {
	repo := newCountingRepository()
	index := newTestIndex(repo, nil)
	ctx := context.Background()

	created, err := index.Insert(ctx, "https://example.com", "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", created.ShortCode)
	assert.Equal(t, 1, index.Len())

	code, ok, err := index.LookupByOriginal(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abcd1234", code)

	url, ok, err := index.LookupByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	// Both answered from memory.
	assert.Equal(t, int64(0), repo.findCalls.Load())
}

func TestURLIndex_StoreFallbackPopulatesCache(t *testing.T) {
	repo := newCountingRepository()
	ctx := context.Background()

	_, err := repo.URLRepository.Create(ctx, &domain.URL{ShortCode: "abcd1234", OriginalURL: "https://example.com", CreatedAt: time.Now()})
	require.NoError(t, err)

	index := newTestIndex(repo, nil)
	assert.Equal(t, 0, index.Len())

	url, ok, err := index.LookupByCode(ctx, "abcd1234")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", url)
	assert.Equal(t, int64(1), repo.findCalls.Load())

	// Both directions are now cached.
	code, ok, err := index.LookupByOriginal(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abcd1234", code)
	assert.Equal(t, int64(1), repo.findCalls.Load())
}

func TestURLIndex_MissDoesNotMutate(t *testing.T) {
	repo := newCountingRepository()
	shared := newMapCache()
	index := newTestIndex(repo, shared)
	ctx := context.Background()

	_, ok, err := index.LookupByCode(ctx, "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = index.LookupByOriginal(ctx, "https://missing.example")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 0, index.Len())
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, 0, shared.sets)
}

func TestURLIndex_StoreFailureLeavesCacheUntouched(t *testing.T) {
	repo := newCountingRepository()
	repo.createErr = fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
	shared := newMapCache()
	index := newTestIndex(repo, shared)

	_, err := index.Insert(context.Background(), "https://example.com", "abcd1234")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 0, index.Len())
	assert.Equal(t, 0, shared.sets)
}

func TestURLIndex_LookupPropagatesStoreErrors(t *testing.T) {
	repo := newCountingRepository()
	repo.findErr = fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable)
	index := newTestIndex(repo, nil)

	_, _, err := index.LookupByCode(context.Background(), "abcd1234")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, _, err = index.LookupByOriginal(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestURLIndex_SharedTier(t *testing.T) {
	ctx := context.Background()
	shared := newMapCache()
	require.NoError(t, shared.Set(ctx, &domain.URL{ShortCode: "shared12", OriginalURL: "https://shared.example"}, time.Hour))

	repo := newCountingRepository()
	index := newTestIndex(repo, shared)

	url, ok, err := index.LookupByCode(ctx, "shared12")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://shared.example", url)
	assert.Equal(t, int64(0), repo.findCalls.Load())
	assert.Equal(t, 1, index.Len())

	// Writes go through to the shared tier after the store accepted them.
	_, err = index.Insert(ctx, "https://new.example", "newcode1")
	require.NoError(t, err)
	cached, err := shared.GetByOriginal(ctx, "https://new.example")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "newcode1", cached.ShortCode)
}

func TestURLIndex_SharedTierFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepository()
	_, err := repo.URLRepository.Create(ctx, &domain.URL{ShortCode: "abcd1234", OriginalURL: "https://example.com", CreatedAt: time.Now()})
	require.NoError(t, err)

	shared := newMapCache()
	shared.err = errBoom
	index := newTestIndex(repo, shared)

	url, ok, err := index.LookupByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	_, err = index.Insert(ctx, "https://other.example", "other123")
	require.NoError(t, err, "shared tier failures must not fail a stored insert")

	assert.ErrorIs(t, index.HealthCheck(ctx), errBoom)
}

func TestURLIndex_Warm(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepository()
	for i := 0; i < 5; i++ {
		_, err := repo.URLRepository.Create(ctx, &domain.URL{
			ShortCode:   fmt.Sprintf("code%04d", i),
			OriginalURL: fmt.Sprintf("https://example.com/%d", i),
			CreatedAt:   time.Now(),
		})
		require.NoError(t, err)
	}

	index := newTestIndex(repo, nil)

	n, err := index.Warm(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, index.Len())

	url, ok, err := index.LookupByCode(ctx, "code0004")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/4", url)
	assert.Equal(t, int64(0), repo.findCalls.Load())

	n, err = index.Warm(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
