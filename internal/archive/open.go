package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/internal/runtimeconfig"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

// NewDB wraps sqlDB with the bun dialect named by dialect ("sqlite" or
// "postgres", aliases accepted).
func NewDB(sqlDB *sql.DB, dialect string) (*bun.DB, error) {
	switch runtimeconfig.NormalizeDialect(dialect) {
	case "sqlite":
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrArchiveDialectUnknown, dialect)
	}
}

// Open connects to the archive described by cfg, creates the schema and
// returns the repository with a closer for the database. SQLite uses the
// bundled sqlite3 driver; postgres expects the host to register a driver
// named "postgres". provider may be nil.
func Open(ctx context.Context, cfg runtimeconfig.ArchiveConfig, provider interfaces.LoggerProvider) (Repository, func() error, error) {
	logger := logging.ArchiveLogger(provider)
	driver := "sqlite3"
	if runtimeconfig.NormalizeDialect(cfg.Dialect) == "postgres" {
		driver = "postgres"
	}
	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: open %s: %w", driver, err)
	}
	db, err := NewDB(sqlDB, cfg.Dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	if err := CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("archive: create schema: %w", err)
	}

	cacheService, serializer, err := newCache(cfg.CacheTTL)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("archive.opened",
		"dialect", runtimeconfig.NormalizeDialect(cfg.Dialect),
		"cache", cacheService != nil,
	)
	return NewBunRepositoryWithCache(db, cacheService, serializer), db.Close, nil
}

// newCache returns nil values when ttl is zero, which disables caching.
func newCache(ttl time.Duration) (cache.CacheService, cache.KeySerializer, error) {
	if ttl <= 0 {
		return nil, nil, nil
	}
	cfg := cache.DefaultConfig()
	cfg.TTL = ttl
	service, err := cache.NewCacheService(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: cache: %w", err)
	}
	return service, cache.NewDefaultKeySerializer(), nil
}
