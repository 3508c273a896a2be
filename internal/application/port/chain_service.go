package port

import (
	"context"

	"miniwallet/internal/domain/entity"
)

// ChainService exposes the loaded chain configurations and the health of their endpoints.
type ChainService interface {
	// Chains lists every configured chain sorted by name.
	Chains(ctx context.Context) []entity.ChainConfig

	// Chain returns one chain or domain.ErrChainNotFound.
	Chain(ctx context.Context, name string) (entity.ChainConfig, error)

	// CheckedEndpoints returns cached probe results for the chain, probing on a cache miss.
	CheckedEndpoints(ctx context.Context, name string) ([]entity.EndpointHealth, error)
}
