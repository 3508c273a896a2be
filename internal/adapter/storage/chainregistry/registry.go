// Package chainregistry loads chain configuration documents and serves them as the
// process-wide, read-only endpoint registry.
package chainregistry

import (
	"context"
	"fmt"
	"sort"

	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"

	"go.uber.org/zap"
)

// Registry holds the loaded chains. It is immutable after Load.
type Registry struct {
	chains      map[string]entity.ChainConfig
	defaultName string
}

// Load reads every source in order; the first document for a chain name wins. A source that
// fails is logged and skipped, but at least one chain must load.
func Load(ctx context.Context, sources []domainRepo.ChainRepository, defaultName string, logger *zap.Logger) (*Registry, error) {
	log := logger.Named("ChainRegistry")
	r := &Registry{chains: make(map[string]entity.ChainConfig), defaultName: defaultName}

	for _, src := range sources {
		chains, err := src.GetAllChains(ctx)
		if err != nil {
			log.Error("Chain source failed", zap.Error(err))
			continue
		}
		for _, c := range chains {
			if _, dup := r.chains[c.Name]; dup {
				log.Warn("Ignoring duplicate chain document", zap.String("chain", c.Name))
				continue
			}
			r.chains[c.Name] = c
		}
	}

	if len(r.chains) == 0 {
		return nil, fmt.Errorf("%w: no chain could be loaded", domain.ErrInvalidChainConfig)
	}
	if defaultName != "" {
		if _, ok := r.chains[defaultName]; !ok {
			return nil, fmt.Errorf("%w: default chain %q is not configured", domain.ErrInvalidChainConfig, defaultName)
		}
	}
	log.Info("Chain registry ready", zap.Int("chains", len(r.chains)), zap.String("default", r.Default().Name))
	return r, nil
}

// NewRegistry builds a registry from chains already in memory.
func NewRegistry(chains []entity.ChainConfig, defaultName string) *Registry {
	r := &Registry{chains: make(map[string]entity.ChainConfig, len(chains)), defaultName: defaultName}
	for _, c := range chains {
		r.chains[c.Name] = c
	}
	return r
}

// Chain returns the named chain or domain.ErrChainNotFound.
func (r *Registry) Chain(name string) (entity.ChainConfig, error) {
	c, ok := r.chains[name]
	if !ok {
		return entity.ChainConfig{}, fmt.Errorf("%w: %q", domain.ErrChainNotFound, name)
	}
	return c, nil
}

// Chains returns all chains sorted by name.
func (r *Registry) Chains() []entity.ChainConfig {
	out := make([]entity.ChainConfig, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Endpoints returns the chain's endpoints of kind in document order.
func (r *Registry) Endpoints(name string, kind entity.EndpointKind) ([]entity.Endpoint, error) {
	c, err := r.Chain(name)
	if err != nil {
		return nil, err
	}
	return c.Endpoints(kind), nil
}

// Default is the configured default chain, or the first by name when none is configured.
func (r *Registry) Default() entity.ChainConfig {
	if c, ok := r.chains[r.defaultName]; ok {
		return c
	}
	chains := r.Chains()
	if len(chains) == 0 {
		return entity.ChainConfig{}
	}
	return chains[0]
}
