package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.CacheRepository = (*CacheRepository)(nil)

// Cache keys
const (
	priceKeyPrefix  = "price_usd_"
	healthKeyPrefix = "endpoint_health_"
)

// CacheRepository implements domainRepo.CacheRepository using the go-cache in-memory library.
type CacheRepository struct {
	cache    *cache.Cache
	logger   *zap.Logger
	priceTTL time.Duration
}

// NewCacheRepository creates a new in-memory cache repository instance.
func NewCacheRepository(cfg config.Config, logger *zap.Logger) *CacheRepository {
	defaultExpiration := cfg.Cache.GetDefaultExpiration()
	cleanupInterval := cfg.Cache.GetCleanupInterval()

	c := cache.New(defaultExpiration, cleanupInterval)
	logger.Info(
		"Initialized go-cache for memory storage",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	ttl := cfg.Price.GetCacheTTL()
	if ttl <= 0 {
		ttl = defaultExpiration
	}
	return &CacheRepository{
		cache:    c,
		logger:   logger.Named("MemoryCacheStorage"),
		priceTTL: ttl,
	}
}

// GetPrice retrieves the cached quote for a coin id, returning found status.
func (r *CacheRepository) GetPrice(_ context.Context, id string) (entity.Price, bool, error) {
	key := priceKey(id)
	if x, found := r.cache.Get(key); found {
		if p, ok := x.(entity.Price); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", key))
			return p, true, nil
		}
		r.logger.Warn(
			"Memory cache data type mismatch for key",
			zap.String("key", key), zap.Any("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Memory cache miss", zap.String("key", key))
	return entity.Price{}, false, nil
}

// SetPrice caches a quote; a non-positive ttl uses the configured price TTL.
func (r *CacheRepository) SetPrice(_ context.Context, price entity.Price, ttl time.Duration) error {
	if price.ID == "" {
		return fmt.Errorf("price without id cannot be cached")
	}
	key := priceKey(price.ID)
	if ttl <= 0 {
		ttl = r.priceTTL
	}
	r.cache.Set(key, price, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// GetEndpointHealth retrieves the cached probe results for a chain, returning found status.
func (r *CacheRepository) GetEndpointHealth(_ context.Context, chain string) ([]entity.EndpointHealth, bool, error) {
	key := healthKeyPrefix + chain
	if x, found := r.cache.Get(key); found {
		if health, ok := x.([]entity.EndpointHealth); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", key))
			return health, true, nil
		}
		r.logger.Warn(
			"Memory cache data type mismatch for key",
			zap.String("key", key),
			zap.Any("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Memory cache miss", zap.String("key", key))
	return nil, false, nil
}

// SetEndpointHealth caches the probe results of a chain; a non-positive ttl uses the cache default.
func (r *CacheRepository) SetEndpointHealth(
	_ context.Context,
	chain string,
	health []entity.EndpointHealth,
	ttl time.Duration,
) error {
	key := healthKeyPrefix + chain
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	r.cache.Set(key, health, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func priceKey(id string) string {
	return priceKeyPrefix + strings.ToLower(id)
}
