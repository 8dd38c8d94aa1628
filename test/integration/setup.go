package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	redisContainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sp3dr4/dovelink/internal/application"
	"github.com/sp3dr4/dovelink/internal/domain"
	"github.com/sp3dr4/dovelink/internal/infrastructure/migrations"
	postgresRepo "github.com/sp3dr4/dovelink/internal/infrastructure/postgres"
	redisCache "github.com/sp3dr4/dovelink/internal/infrastructure/redis"
	"github.com/sp3dr4/dovelink/internal/pkg/metrics"
)

const (
	testBaseURL = "http://localhost:8080"
	testTTL     = time.Hour
)

var (
	sharedContainer      *postgresContainer.PostgresContainer
	sharedRedisContainer *redisContainer.RedisContainer
	sharedDB             *sqlx.DB
	sharedRedis          *redis.Client
	containerOnce        sync.Once
	cleanupOnce          sync.Once
)

// TestEnvironment holds the test setup
type TestEnvironment struct {
	DB          *sqlx.DB
	RedisClient *redis.Client
	Repository  *postgresRepo.URLRepository
	Service     *application.ShortenerService
}

// SetupTestEnvironment starts shared PostgreSQL and Redis containers, runs
// migrations, and returns a ShortenerService backed by both.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	containerOnce.Do(func() {
		ctx := context.Background()

		container, err := postgresContainer.Run(ctx,
			"postgres:16-alpine",
			postgresContainer.WithDatabase("dovelink_test"),
			postgresContainer.WithUsername("test"),
			postgresContainer.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		sharedContainer = container

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get connection string: %v", err)
		}

		db, err := sqlx.Connect(migrations.DriverPostgres, connStr)
		if err != nil {
			t.Fatalf("failed to connect to database: %v", err)
		}
		sharedDB = db

		migrationsPath, err := filepath.Abs("../../migrations/postgres")
		if err != nil {
			t.Fatalf("failed to get migrations path: %v", err)
		}
		if err := migrations.Up(db.DB, migrations.DriverPostgres, "file://"+migrationsPath); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		rc, err := redisContainer.Run(ctx, "redis:7-alpine")
		if err != nil {
			t.Fatalf("failed to start redis container: %v", err)
		}
		sharedRedisContainer = rc

		redisURL, err := rc.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("failed to get redis connection string: %v", err)
		}
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			t.Fatalf("failed to parse redis url: %v", err)
		}
		sharedRedis = redis.NewClient(opts)
	})

	cleanDatabase(t, sharedDB)
	if err := sharedRedis.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	repo := postgresRepo.NewURLRepository(sharedDB)

	return &TestEnvironment{
		DB:          sharedDB,
		RedisClient: sharedRedis,
		Repository:  repo,
		Service:     newService(t, repo, redisCache.NewRedisCache(sharedRedis, testLogger())),
	}
}

// NewInstance builds a second service over the same store and cache, the way
// another replica of the process would see them.
func (env *TestEnvironment) NewInstance(t *testing.T) *application.ShortenerService {
	return newService(t, env.Repository, redisCache.NewRedisCache(env.RedisClient, testLogger()))
}

func newService(t *testing.T, repo domain.URLRepository, shared domain.Cache) *application.ShortenerService {
	t.Helper()

	logger := testLogger()
	registry := metrics.NewNoOpRegistry()

	generator, err := domain.NewGenerator(domain.DefaultPrefixBytes, domain.DefaultMaxRetries)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}

	index := application.NewURLIndex(repo, shared, testTTL, registry, logger)
	return application.NewShortenerService(index, application.NewDomainCounter(), generator, registry, logger, testBaseURL)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// CleanupSharedResources should be called once at the end of all tests
func CleanupSharedResources() {
	cleanupOnce.Do(func() {
		ctx := context.Background()
		if sharedDB != nil {
			_ = sharedDB.Close()
		}
		if sharedRedis != nil {
			_ = sharedRedis.Close()
		}
		if sharedContainer != nil {
			_ = sharedContainer.Terminate(ctx)
		}
		if sharedRedisContainer != nil {
			_ = sharedRedisContainer.Terminate(ctx)
		}
	})
}

// cleanDatabase truncates all tables to ensure test isolation
func cleanDatabase(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE urls RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}

// TestMain handles setup and teardown for the entire test suite
func TestMain(m *testing.M) {
	code := m.Run()

	CleanupSharedResources()

	// Exit with the same code as the tests
	os.Exit(code)
}

