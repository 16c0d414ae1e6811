// Package common wires storage backends and fetcher factories for the
// command binaries.
package common

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/user/listing-harvester/internal/adapter/chromedp_fetcher"
	"github.com/user/listing-harvester/internal/adapter/httpfetch"
	"github.com/user/listing-harvester/internal/adapter/postgres"
	redis_adapter "github.com/user/listing-harvester/internal/adapter/redis"
	"github.com/user/listing-harvester/internal/adapter/sqlite"
	"github.com/user/listing-harvester/internal/repository"
	"github.com/user/listing-harvester/pkg/config"
)

// Stores bundles the repositories a binary needs plus their teardown.
type Stores struct {
	Links       repository.LinkRepository
	Listings    repository.ListingRepository
	Checkpoints repository.CheckpointRepository

	sqliteDB *sql.DB
	pgPool   *pgxpool.Pool
	redis    *goredis.Client
}

// Close releases the underlying connections.
func (s *Stores) Close() {
	if s.sqliteDB != nil {
		s.sqliteDB.Close()
	}
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// BuildStores opens the configured storage backend and, when a Redis
// address is configured, the checkpoint counter store.
func BuildStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores := &Stores{}

	switch cfg.StorageBackend {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		stores.sqliteDB = db
		stores.Links = sqlite.NewLinkRepo(db, cfg.MaxAttempts)
		stores.Listings = sqlite.NewListingRepo(db)
	case "postgres":
		connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
		pool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		stores.pgPool = pool
		stores.Links = postgres.NewLinkRepo(pool, cfg.MaxAttempts)
		stores.Listings = postgres.NewListingRepo(pool)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			stores.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		stores.redis = rdb
		stores.Checkpoints = redis_adapter.NewCheckpointRepo(rdb)
	}

	return stores, nil
}

// BuildFetcherFactory picks the configured fetch client kind.
func BuildFetcherFactory(cfg *config.Config) repository.FetcherFactory {
	if cfg.Fetcher == "browser" {
		return chromedp_fetcher.NewFactory(cfg.FetchTimeout, cfg.SettleDelay, cfg.UserAgent)
	}
	return httpfetch.NewFactory(cfg.FetchTimeout, cfg.UserAgent)
}
