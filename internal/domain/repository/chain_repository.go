package repository

import (
	"context"

	"miniwallet/internal/domain/entity"
)

// ChainRepository defines the interface for accessing chain configuration documents.
type ChainRepository interface {
	// GetAllChains retrieves every chain configuration from the underlying source.
	GetAllChains(ctx context.Context) ([]entity.ChainConfig, error)
}
