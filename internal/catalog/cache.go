// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "yojanamitra/internal/common/errors"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/metrics"
	"yojanamitra/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	CacheKey        = "catalog:schemes"
	DefaultCacheTTL = 5 * time.Minute
)

// CachedProvider keeps the full catalog in Redis. Any cache failure falls
// through to the inner provider; the cache never turns a readable catalog
// into an error.
type CachedProvider struct {
	inner  Provider
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(inner Provider, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"catalog": "cache", "key": CacheKey}),
	}
}

type cachedEntry struct {
	Scheme models.Scheme `json:"scheme"`
	Err    string        `json:"eligibility_error,omitempty"`
}

func (p *CachedProvider) List(ctx context.Context) ([]models.Scheme, error) {
	if schemes, ok := p.read(ctx); ok {
		return schemes, nil
	}

	schemes, err := p.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	p.write(ctx, schemes)
	return schemes, nil
}

func (p *CachedProvider) Get(ctx context.Context, id string) (*models.Scheme, error) {
	if schemes, ok := p.read(ctx); ok {
		return findByID(schemes, id)
	}
	return p.inner.Get(ctx, id)
}

// Search prefers the inner provider's native search and otherwise filters
// the cached list.
func (p *CachedProvider) Search(ctx context.Context, query string) ([]models.Scheme, error) {
	if s, ok := p.inner.(Searcher); ok {
		return s.Search(ctx, query)
	}
	schemes, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSchemes(schemes, query), nil
}

// Warm reloads the catalog from the inner provider and replaces the cached copy.
func (p *CachedProvider) Warm(ctx context.Context) (int, error) {
	schemes, err := p.inner.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := p.store(ctx, schemes); err != nil {
		return 0, err
	}
	return len(schemes), nil
}

func (p *CachedProvider) Invalidate(ctx context.Context) error {
	if err := p.redis.Del(ctx, CacheKey).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(fmt.Errorf("invalidate catalog cache: %w", err))
	}
	return nil
}

func (p *CachedProvider) read(ctx context.Context) ([]models.Scheme, bool) {
	raw, err := p.redis.Get(ctx, CacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CatalogCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CatalogCacheRequests.WithLabelValues("error").Inc()
		p.logger.Warn("catalog cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var entries []cachedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		metrics.CatalogCacheRequests.WithLabelValues("error").Inc()
		p.logger.Warn("catalog cache holds undecodable data", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	metrics.CatalogCacheRequests.WithLabelValues("hit").Inc()
	schemes := make([]models.Scheme, len(entries))
	for i, e := range entries {
		schemes[i] = e.Scheme
		if e.Err != "" {
			schemes[i].EligibilityErr = fmt.Errorf("%w: %s", models.ErrInvalidEligibility, e.Err)
		}
	}
	return schemes, true
}

func (p *CachedProvider) write(ctx context.Context, schemes []models.Scheme) {
	if err := p.store(ctx, schemes); err != nil {
		p.logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (p *CachedProvider) store(ctx context.Context, schemes []models.Scheme) error {
	entries := make([]cachedEntry, len(schemes))
	for i, s := range schemes {
		entries[i] = cachedEntry{Scheme: s}
		if s.EligibilityErr != nil {
			entries[i].Err = s.EligibilityErr.Error()
		}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}
	if err := p.redis.Set(ctx, CacheKey, string(raw), p.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(fmt.Errorf("write catalog cache: %w", err))
	}
	return nil
}
