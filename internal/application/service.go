package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/sp3dr4/dovelink/internal/domain"
	"github.com/sp3dr4/dovelink/internal/pkg/logging"
	"github.com/sp3dr4/dovelink/internal/pkg/metrics"
)

// RedirectPath is the route prefix short URLs are served under.
const RedirectPath = "/api/r/"

type ShortenResult struct {
	ShortCode   string `json:"shortCode"`
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
	Created     bool   `json:"created"`
}

// ShortenerService turns URLs into codes and back, and keeps the domain
// popularity table.
type ShortenerService struct {
	index     *URLIndex
	counter   *DomainCounter
	generator *domain.Generator
	metrics   metrics.Registry
	logger    *slog.Logger
	baseURL   string

	inflight singleflight.Group
}

func NewShortenerService(
	index *URLIndex,
	counter *DomainCounter,
	generator *domain.Generator,
	registry metrics.Registry,
	logger *slog.Logger,
	baseURL string,
) *ShortenerService {
	return &ShortenerService{
		index:     index,
		counter:   counter,
		generator: generator,
		metrics:   registry,
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Shorten returns the short code for originalURL, creating it on first use.
// Repeated calls for the same URL return the same code. The URL is stored and
// keyed exactly as given; blank input is rejected.
func (s *ShortenerService) Shorten(ctx context.Context, originalURL string) (*ShortenResult, error) {
	if strings.TrimSpace(originalURL) == "" {
		s.metrics.RecordShorten(metrics.ShortenInvalid)
		return nil, domain.ErrInvalidInput
	}

	host := domain.ExtractDomain(originalURL)

	// Coalesced callers share one run, so it must not die with the first
	// caller's request.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.inflight.Do(originalURL, func() (any, error) {
		return s.shorten(shared, originalURL, host)
	})
	if err != nil {
		s.metrics.RecordShorten(metrics.ShortenFailed)
		return nil, err
	}

	result := *v.(*ShortenResult)

	// Counted per call, cache hits included.
	s.counter.Increment(host)

	if result.Created {
		s.metrics.RecordShorten(metrics.ShortenCreated)
	} else {
		s.metrics.RecordShorten(metrics.ShortenExisting)
	}

	return &result, nil
}

func (s *ShortenerService) shorten(ctx context.Context, originalURL, host string) (*ShortenResult, error) {
	log := logging.FromContextOr(ctx, s.logger)

	if code, ok, err := s.index.LookupByOriginal(ctx, originalURL); err != nil {
		return nil, err
	} else if ok {
		return s.result(originalURL, code, false), nil
	}

	for attempt := 0; attempt <= s.generator.MaxRetries; attempt++ {
		code := s.generator.GenerateAt(originalURL, attempt)

		_, err := s.index.Insert(ctx, originalURL, code)
		switch {
		case err == nil:
			s.metrics.IncURLsCreated()
			log.Info("Created short URL", "short_code", code, "domain", host)
			return s.result(originalURL, code, true), nil

		case errors.Is(err, domain.ErrOriginalURLExists):
			// Another writer stored this URL first; its code wins.
			return s.winner(ctx, originalURL)

		case errors.Is(err, domain.ErrShortCodeExists):
			// Both constraints can fail at once, so the URL may be stored already.
			if existing, ok, lookupErr := s.index.LookupByOriginal(ctx, originalURL); lookupErr != nil {
				return nil, lookupErr
			} else if ok {
				return s.result(originalURL, existing, false), nil
			}

			s.metrics.IncCodeCollisions()
			log.Warn("Short code collision", "domain", host, "attempt", attempt)

		default:
			return nil, err
		}
	}

	log.Error("Short code space exhausted", "domain", host, "attempts", s.generator.MaxRetries+1)
	return nil, fmt.Errorf("%w: %d attempts", domain.ErrCodeSpaceExhausted, s.generator.MaxRetries+1)
}

func (s *ShortenerService) winner(ctx context.Context, originalURL string) (*ShortenResult, error) {
	code, ok, err := s.index.LookupByOriginal(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: duplicate reported but record missing", domain.ErrStoreUnavailable)
	}
	return s.result(originalURL, code, false), nil
}

// Resolve returns the original URL for shortCode, or domain.ErrNotFound.
func (s *ShortenerService) Resolve(ctx context.Context, shortCode string) (string, error) {
	shortCode = strings.Trim(strings.TrimSpace(shortCode), `"`)
	if shortCode == "" {
		return "", domain.ErrNotFound
	}

	originalURL, ok, err := s.index.LookupByCode(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNotFound
	}

	s.metrics.IncURLsResolved()
	return originalURL, nil
}

// TopDomains returns the k most shortened domains.
func (s *ShortenerService) TopDomains(k int) []domain.DomainCount {
	return s.counter.TopK(k)
}

// ShortURL builds the public URL for a code.
func (s *ShortenerService) ShortURL(code string) string {
	return s.baseURL + RedirectPath + code
}

func (s *ShortenerService) HealthCheck(ctx context.Context) error {
	return s.index.HealthCheck(ctx)
}

func (s *ShortenerService) result(originalURL, code string, created bool) *ShortenResult {
	return &ShortenResult{
		ShortCode:   code,
		ShortURL:    s.ShortURL(code),
		OriginalURL: originalURL,
		Created:     created,
	}
}
