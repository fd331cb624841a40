// internal/catalog/factory.go
package catalog

import (
	"context"
	"fmt"
	"time"

	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/database"
	"yojanamitra/internal/common/logger"
)

// Built is a configured provider together with the connections it owns.
type Built struct {
	Provider Provider
	// Cache is set when the Redis catalog cache is enabled.
	Cache   *CachedProvider
	closers []func() error
}

func (b *Built) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New builds the provider selected by cfg.Catalog.Source, wrapped in the
// Redis cache when enabled.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Built, error) {
	b := &Built{}

	switch cfg.Catalog.Source {
	case "", config.CatalogSourceFile:
		b.Provider = NewFileProvider(cfg.Catalog.Path, log)

	case config.CatalogSourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pg.Close)
		if err := pg.Ping(ctx); err != nil {
			log.Warn("catalog database not reachable at startup", map[string]interface{}{"error": err.Error()})
		}
		b.Provider = NewPostgresProvider(pg.DB, cfg.Catalog.Table, log)

	case config.CatalogSourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		b.Provider = NewElasticsearchProvider(es.Client, cfg.Catalog.Index, log)

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	if cfg.Catalog.CacheEnabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.closers = append(b.closers, rdb.Close)
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("catalog cache not reachable at startup", map[string]interface{}{"error": err.Error()})
		}
		ttl := time.Duration(cfg.Catalog.CacheTTL) * time.Second
		b.Cache = NewCachedProvider(b.Provider, rdb.Client, ttl, log)
		b.Provider = b.Cache
	}

	log.Info("scheme catalog configured", map[string]interface{}{
		"source": cfg.Catalog.Source,
		"cache":  cfg.Catalog.CacheEnabled,
	})
	return b, nil
}

// StartRefresher runs the scheduled cache refresh in the background when a
// schedule and cache are both configured. It returns false otherwise.
func (b *Built) StartRefresher(ctx context.Context, schedule string, log logger.Logger) (bool, error) {
	if b.Cache == nil || schedule == "" {
		return false, nil
	}
	r, err := NewRefresher(b.Cache, schedule, log)
	if err != nil {
		return false, err
	}
	go r.Run(ctx)
	return true, nil
}
