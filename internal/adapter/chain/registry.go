// Package chain builds chain adapters together with their resilient connectors.
package chain

import (
	"fmt"
	"sync"
	"time"

	"miniwallet/internal/adapter/chain/bitcoin"
	"miniwallet/internal/adapter/chain/cosmos"
	"miniwallet/internal/adapter/chain/solana"
	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/retry"

	"go.uber.org/zap"
)

// Constructor builds the adapter of one chain family.
type Constructor func(
	chain entity.ChainConfig,
	read domainService.ReadOnlyConnector,
	sign domainService.SigningConnector,
	logger *zap.Logger,
) (domainService.ChainAdapter, error)

var constructors = map[entity.ChainFamily]Constructor{
	entity.FamilyCosmos: func(c entity.ChainConfig, r domainService.ReadOnlyConnector, s domainService.SigningConnector, l *zap.Logger) (domainService.ChainAdapter, error) {
		return cosmos.New(c, r, s, l)
	},
	entity.FamilyBitcoin: func(c entity.ChainConfig, r domainService.ReadOnlyConnector, s domainService.SigningConnector, l *zap.Logger) (domainService.ChainAdapter, error) {
		return bitcoin.New(c, r, s, l), nil
	},
	entity.FamilySolana: func(c entity.ChainConfig, r domainService.ReadOnlyConnector, s domainService.SigningConnector, l *zap.Logger) (domainService.ChainAdapter, error) {
		return solana.New(c, r, s, l), nil
	},
}

// Families lists the chain families adapters exist for.
func Families() []entity.ChainFamily {
	return []entity.ChainFamily{entity.FamilyCosmos, entity.FamilyBitcoin, entity.FamilySolana}
}

// Registry hands out one adapter per chain name, building it on first use.
type Registry struct {
	opts     rpc.Options
	timeout  time.Duration
	http     *rpc.HTTPDialer
	metrics  *rpc.Metrics
	adapters map[string]domainService.ChainAdapter
	cores    []*rpc.Connector
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewRegistry translates the connector settings into connector options.
func NewRegistry(cfg config.ConnectorConfig, metrics *rpc.Metrics, logger *zap.Logger) (*Registry, error) {
	selection, err := rpc.ParseSelection(cfg.Selection)
	if err != nil {
		return nil, err
	}
	opts := rpc.Options{
		Retry: retry.Config{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.BaseDelay,
			MaxDelay:     cfg.MaxDelay,
			Jitter:       cfg.Jitter,
		},
		Selection:      selection,
		ClientCacheTTL: cfg.GetClientCacheTTL(),
		AttemptTimeout: cfg.GetRequestTimeout(),
	}
	return NewRegistryWithOptions(opts, metrics, logger), nil
}

// NewRegistryWithOptions is NewRegistry for callers holding ready options.
func NewRegistryWithOptions(opts rpc.Options, metrics *rpc.Metrics, logger *zap.Logger) *Registry {
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = rpc.DefaultOptions().AttemptTimeout
	}
	return &Registry{
		opts:     opts,
		timeout:  timeout,
		http:     rpc.NewHTTPDialer(timeout, logger),
		metrics:  metrics,
		adapters: make(map[string]domainService.ChainAdapter),
		logger:   logger.Named("AdapterRegistry"),
	}
}

// Adapter returns the adapter of chain, building its connectors the first time.
func (r *Registry) Adapter(chain entity.ChainConfig) (domainService.ChainAdapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.adapters[chain.Name]; ok {
		return a, nil
	}

	family := chain.Family
	if family == "" {
		family = entity.FamilyCosmos
	}
	build, ok := constructors[family]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unsupported chain family %q", domain.ErrInvalidChainConfig, chain.Name, family)
	}

	core := r.connector(chain, family)
	a, err := build(chain, rpc.NewReadOnlyConnector(core), rpc.NewSigningConnector(core), r.logger)
	if err != nil {
		core.Close()
		return nil, err
	}
	r.adapters[chain.Name] = a
	r.cores = append(r.cores, core)

	r.logger.Info("Chain adapter ready",
		zap.String("chain", chain.Name),
		zap.String("family", string(family)),
		zap.String("transport", string(chain.Transport)),
		zap.Int("rpc_endpoints", len(chain.Endpoints(entity.EndpointRPC))),
		zap.Int("rest_endpoints", len(chain.Endpoints(entity.EndpointREST))),
	)
	return a, nil
}

// connector picks the dialers: websocket chains fall back to raw HTTP JSON-RPC, HTTP chains
// have no fallback, and bitcoin talks REST only.
func (r *Registry) connector(chain entity.ChainConfig, family entity.ChainFamily) *rpc.Connector {
	opts := r.opts
	var primary, fallback rpc.Dialer = r.http, nil

	switch {
	case family == entity.FamilyBitcoin:
		opts.Kind = entity.EndpointREST
	case chain.Transport == entity.TransportWebSocket:
		primary = rpc.NewWSDialer(chain.WebsocketPath, r.timeout, r.http, r.logger)
		fallback = r.http
	}
	return rpc.NewConnector(chain, primary, fallback, rpc.NewChecker(chain, r.logger), r.metrics, opts, r.logger)
}

// Close shuts every connector's cached clients.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cores {
		c.Close()
	}
	r.cores = nil
	r.adapters = make(map[string]domainService.ChainAdapter)
}

// Prober checks single endpoints over the registry's shared HTTP dialer.
func (r *Registry) Prober() *rpc.Prober {
	return rpc.NewProber(r.http, r.logger)
}
