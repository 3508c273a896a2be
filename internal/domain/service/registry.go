package service

import "miniwallet/internal/domain/entity"

// ChainCatalog is the read-only endpoint registry loaded at start.
type ChainCatalog interface {
	Chain(name string) (entity.ChainConfig, error)
	Chains() []entity.ChainConfig
	Default() entity.ChainConfig
}

// AdapterProvider returns the adapter serving a chain.
type AdapterProvider interface {
	Adapter(chain entity.ChainConfig) (ChainAdapter, error)
}
