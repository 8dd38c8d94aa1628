package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/sp3dr4/dovelink/internal/domain"
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
		VALUES (:short_code, :original_url, :created_at)
	`

	result, err := r.db.NamedExecContext(ctx, query, url)
	if err != nil {
		return nil, handleSQLiteError(err, "create URL")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, handleSQLiteError(err, "read inserted id")
	}

	created := *url
	created.ID = id
	return &created, nil
}

func (r *URLRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*domain.URL, error) {
	var url domain.URL
	query := `SELECT id, short_code, original_url, created_at FROM urls WHERE original_url = ?`

	if err := r.db.GetContext(ctx, &url, query, originalURL); err != nil {
		return nil, handleSQLiteError(err, "find URL by original URL")
	}

	return &url, nil
}

func (r *URLRepository) FindByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	var url domain.URL
	query := `SELECT id, short_code, original_url, created_at FROM urls WHERE short_code = ?`

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		return nil, handleSQLiteError(err, "find URL by short code")
	}

	return &url, nil
}

func (r *URLRepository) ListRecent(ctx context.Context, limit int) ([]*domain.URL, error) {
	urls := []*domain.URL{}
	query := `SELECT id, short_code, original_url, created_at FROM urls ORDER BY id DESC LIMIT ?`

	if err := r.db.SelectContext(ctx, &urls, query, limit); err != nil {
		return nil, handleSQLiteError(err, "list recent URLs")
	}

	return urls, nil
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

// handleSQLiteError maps unique constraint failures onto domain errors. The
// driver only reports the offending column in the message text.
func handleSQLiteError(err error, operation string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "urls.original_url"):
			return domain.ErrOriginalURLExists
		case strings.Contains(msg, "urls.short_code"):
			return domain.ErrShortCodeExists
		}
		return fmt.Errorf("unique constraint violation: %s", msg)
	}

	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, operation, err)
}
