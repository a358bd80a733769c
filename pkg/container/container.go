package container

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepository "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	infraCache "library-backend/internal/infrastructure/cache"
	infraDatabase "library-backend/internal/infrastructure/database"
)

// Container wires configuration, the two database pools, the cache and the
// book domain into one dependency graph.
type Container struct {
	Config *config.Config

	DB   *infraDatabase.PostgresDB
	SpDB *infraDatabase.PostgresDB

	Cache *infraCache.RedisCache

	BookHandler *bookHandler.BookHandler
}

// NewContainer builds the full graph. Both pools must be reachable; the
// cache is pinged but a failure only logs, the service degrades to
// uncached reads.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbCfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	db := infraDatabase.NewPostgresDB(dbCfg)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	spCfg, err := config.LoadProcDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("load procedure database config: %w", err)
	}
	spDB := infraDatabase.NewPostgresDB(spCfg)
	if err := spDB.Connect(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect procedure database: %w", err)
	}

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, caching disabled until it recovers")
	}

	books := bookRepository.NewPostgresBookRepository(db.Pool)
	procs := bookRepository.NewProcBookRepository(infraDatabase.NewProcExecutor(spDB.Pool))
	svc := bookService.NewBookService(books, procs, redisCache)

	return &Container{
		Config:      cfg,
		DB:          db,
		SpDB:        spDB,
		Cache:       redisCache,
		BookHandler: bookHandler.NewBookHandler(svc),
	}, nil
}

// Cleanup releases every held connection.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if c.SpDB != nil {
		c.SpDB.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
