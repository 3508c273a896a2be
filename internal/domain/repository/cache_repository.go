package repository

import (
	"context"
	"time"

	"miniwallet/internal/domain/entity"
)

// CacheRepository defines the interface for caching price quotes and endpoint checks.
type CacheRepository interface {
	// GetPrice retrieves the cached quote for a coin id.
	GetPrice(ctx context.Context, id string) (entity.Price, bool, error)

	// SetPrice stores a quote with a specified TTL.
	SetPrice(ctx context.Context, price entity.Price, ttl time.Duration) error

	// GetEndpointHealth retrieves the cached probe results of a chain.
	GetEndpointHealth(ctx context.Context, chain string) ([]entity.EndpointHealth, bool, error)

	// SetEndpointHealth caches the probe results of a chain with a given TTL.
	SetEndpointHealth(ctx context.Context, chain string, health []entity.EndpointHealth, ttl time.Duration) error
}
