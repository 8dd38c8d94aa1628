package fx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/sp3dr4/dovelink/config"
	"github.com/sp3dr4/dovelink/internal/application"
	"github.com/sp3dr4/dovelink/internal/domain"
	cacheImpl "github.com/sp3dr4/dovelink/internal/infrastructure/cache"
	memoryRepo "github.com/sp3dr4/dovelink/internal/infrastructure/memory"
	"github.com/sp3dr4/dovelink/internal/infrastructure/migrations"
	postgresRepo "github.com/sp3dr4/dovelink/internal/infrastructure/postgres"
	redisCache "github.com/sp3dr4/dovelink/internal/infrastructure/redis"
	sqliteRepo "github.com/sp3dr4/dovelink/internal/infrastructure/sqlite"
	"github.com/sp3dr4/dovelink/internal/pkg/metrics"
)

// ProvideLogger creates and configures the application logger
func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)
	return logger
}

// ProvideRepository creates the appropriate repository based on configuration
func ProvideRepository(cfg *config.Config, logger *slog.Logger) (domain.URLRepository, error) {
	switch cfg.Database.Type {
	case "memory":
		logger.Info("Using in-memory repository")
		return memoryRepo.NewURLRepository(), nil

	case "sqlite":
		dbURL := cfg.GetDatabaseURL()
		logger.Info("Using SQLite repository", "path", dbURL)

		if err := os.MkdirAll(filepath.Dir(dbURL), 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		db, err := sqlx.Connect(migrations.DriverSQLite, dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}

		if err := migrations.Up(db.DB, migrations.DriverSQLite, "file://migrations/sqlite"); err != nil {
			_ = db.Close()
			return nil, err
		}

		return sqliteRepo.NewURLRepository(db), nil

	case "postgres":
		logger.Info("Using PostgreSQL repository")

		db, err := sqlx.Connect(migrations.DriverPostgres, cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}

		if err := migrations.Up(db.DB, migrations.DriverPostgres, "file://migrations/postgres"); err != nil {
			_ = db.Close()
			return nil, err
		}

		return postgresRepo.NewURLRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// ProvideRedisClient returns nil when the shared cache is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
}

// ProvideCache picks the shared cache tier for the URL index.
func ProvideCache(client *redis.Client, logger *slog.Logger) domain.Cache {
	if client == nil {
		logger.Info("Shared cache disabled")
		return cacheImpl.NewNoOpCache()
	}

	logger.Info("Using Redis shared cache", "addr", client.Options().Addr)
	return redisCache.NewRedisCache(client, logger)
}

func ProvideGenerator(cfg *config.Config) (*domain.Generator, error) {
	return domain.NewGenerator(cfg.App.ShortCodeBytes, cfg.App.CollisionRetries)
}

// ProvideMetricsRegistry returns a Prometheus registry, or a no-op one when
// metrics are disabled.
func ProvideMetricsRegistry(cfg *config.Config) (metrics.Registry, error) {
	if !cfg.Metrics.Enabled {
		return metrics.NewNoOpRegistry(), nil
	}
	return metrics.NewPrometheusRegistry(cfg.Metrics)
}

func ProvideURLIndex(
	repo domain.URLRepository,
	shared domain.Cache,
	cfg *config.Config,
	registry metrics.Registry,
	logger *slog.Logger,
) *application.URLIndex {
	return application.NewURLIndex(repo, shared, cfg.Cache.TTL, registry, logger)
}

func ProvideShortenerService(
	index *application.URLIndex,
	counter *application.DomainCounter,
	generator *domain.Generator,
	registry metrics.Registry,
	logger *slog.Logger,
	cfg *config.Config,
) *application.ShortenerService {
	return application.NewShortenerService(index, counter, generator, registry, logger, cfg.App.BaseURL)
}

// RepositoryParams holds the parameters needed for repository lifecycle management
type RepositoryParams struct {
	fx.In

	Repository domain.URLRepository
	Logger     *slog.Logger
}

// RegisterRepositoryHooks registers repository lifecycle hooks with FX
func RegisterRepositoryHooks(lc fx.Lifecycle, params RepositoryParams) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := params.Repository.Close(); err != nil {
				params.Logger.Error("Failed to close repository resources", "error", err)
				return err
			}
			params.Logger.Info("Repository resources closed successfully")
			return nil
		},
	})
}

// CacheParams holds the parameters needed for cache lifecycle management
type CacheParams struct {
	fx.In

	Client *redis.Client `optional:"true"`
	Index  *application.URLIndex
	Config *config.Config
	Logger *slog.Logger
}

// RegisterCacheHooks warms the URL index on start and closes the Redis
// client on stop.
func RegisterCacheHooks(lc fx.Lifecycle, params CacheParams) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Client != nil {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := params.Client.Ping(pingCtx).Err(); err != nil {
					// The store stays authoritative, so an unreachable Redis is not fatal.
					params.Logger.Warn("Redis not reachable at startup", "error", err)
				}
			}

			if params.Config.Cache.WarmSize == 0 {
				return nil
			}
			n, err := params.Index.Warm(ctx, params.Config.Cache.WarmSize)
			if err != nil {
				params.Logger.Warn("Failed to warm URL index", "error", err)
				return nil
			}
			params.Logger.Info("URL index warmed", "entries", n)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if params.Client == nil {
				return nil
			}
			if err := params.Client.Close(); err != nil {
				params.Logger.Error("Failed to close Redis client", "error", err)
				return err
			}
			params.Logger.Info("Redis client closed")
			return nil
		},
	})
}
