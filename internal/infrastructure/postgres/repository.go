package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sp3dr4/dovelink/internal/domain"
)

const (
	constraintShortCode   = "urls_short_code_key"
	constraintOriginalURL = "urls_original_url_key"
)

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Create(ctx context.Context, url *domain.URL) (*domain.URL, error) {
	query := `
		INSERT INTO urls (short_code, original_url, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, short_code, original_url, created_at
	`

	var result domain.URL
	err := r.db.QueryRowxContext(ctx, query, url.ShortCode, url.OriginalURL, url.CreatedAt).StructScan(&result)
	if err != nil {
		return nil, r.handlePostgreSQLError(err, "create URL")
	}

	slog.Debug("URL created successfully", "short_code", result.ShortCode, "id", result.ID)
	return &result, nil
}

func (r *URLRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*domain.URL, error) {
	var url domain.URL
	query := `SELECT id, short_code, original_url, created_at FROM urls WHERE original_url = $1`

	if err := r.db.GetContext(ctx, &url, query, originalURL); err != nil {
		return nil, r.handlePostgreSQLError(err, "find URL by original URL")
	}

	return &url, nil
}

func (r *URLRepository) FindByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	var url domain.URL
	query := `SELECT id, short_code, original_url, created_at FROM urls WHERE short_code = $1`

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		return nil, r.handlePostgreSQLError(err, "find URL by short code")
	}

	return &url, nil
}

func (r *URLRepository) ListRecent(ctx context.Context, limit int) ([]*domain.URL, error) {
	urls := []*domain.URL{}
	query := `SELECT id, short_code, original_url, created_at FROM urls ORDER BY id DESC LIMIT $1`

	if err := r.db.SelectContext(ctx, &urls, query, limit); err != nil {
		return nil, r.handlePostgreSQLError(err, "list recent URLs")
	}

	return urls, nil
}

// handlePostgreSQLError converts PostgreSQL-specific errors to domain errors
func (r *URLRepository) handlePostgreSQLError(err error, operation string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		slog.Error("PostgreSQL error",
			"operation", operation,
			"code", pqErr.Code,
			"message", pqErr.Message,
			"detail", pqErr.Detail,
		)

		switch pqErr.Code {
		case "23505": // unique_violation
			switch pqErr.Constraint {
			case constraintOriginalURL:
				return domain.ErrOriginalURLExists
			case constraintShortCode:
				return domain.ErrShortCodeExists
			}
			return fmt.Errorf("unique constraint violation: %s", pqErr.Detail)
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing: %s", pqErr.Column)
		case "23514": // check_violation
			return fmt.Errorf("check constraint violation: %s", pqErr.Detail)
		default:
			return fmt.Errorf("%w: %s [%s]: %s", domain.ErrStoreUnavailable, operation, pqErr.Code, pqErr.Message)
		}
	}

	// Anything else is a driver or network failure.
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, operation, err)
}

func (r *URLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *URLRepository) HealthCheck(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection is nil")
	}
	return r.db.PingContext(ctx)
}
