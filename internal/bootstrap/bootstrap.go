// Package bootstrap wires the wallet's dependencies for the binaries under cmd/.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"miniwallet/internal/adapter/chain"
	"miniwallet/internal/adapter/pricefeed"
	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/adapter/storage/chainregistry"
	"miniwallet/internal/adapter/storage/file"
	"miniwallet/internal/adapter/storage/memory"
	"miniwallet/internal/adapter/storage/postgres"
	"miniwallet/internal/application"
	"miniwallet/internal/application/port"
	"miniwallet/internal/config"
	domainRepo "miniwallet/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App is the assembled dependency graph.
type App struct {
	Config   *config.Config
	Metrics  *prometheus.Registry
	Catalog  *chainregistry.Registry
	Adapters *chain.Registry
	Cache    *memory.CacheRepository
	Wallets  domainRepo.WalletRepository
	Prices   *pricefeed.Feed

	Chains       port.ChainService
	Session      port.WalletService
	Transactions port.TransactionService

	closers []func() error
}

// New builds every component. Background work (endpoint health, post-send refreshes) runs on
// ctx, so cancelling it stops them. withMetrics=false leaves the Prometheus registry nil.
func New(ctx context.Context, cfg *config.Config, withMetrics bool, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg}

	var reg prometheus.Registerer
	if withMetrics && cfg.Metrics.Enabled {
		a.Metrics = prometheus.NewRegistry()
		a.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg = a.Metrics
	}

	sources := []domainRepo.ChainRepository{chainregistry.NewLocalRepository(cfg.Chains.Dir, logger)}
	if cfg.Chains.RegistryURL != "" {
		sources = append(sources, chainregistry.NewRemoteRepository(cfg.Chains, logger))
	}
	catalog, err := chainregistry.Load(ctx, sources, cfg.Chains.Default, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain configuration: %w", err)
	}
	a.Catalog = catalog

	adapters, err := chain.NewRegistry(cfg.Connector, rpc.NewMetrics(reg), logger)
	if err != nil {
		return nil, err
	}
	a.Adapters = adapters
	a.closers = append(a.closers, func() error { adapters.Close(); return nil })

	wallets, err := a.openWalletStore(ctx, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Wallets = wallets

	a.Cache = memory.NewCacheRepository(*cfg, logger)
	a.Prices = pricefeed.New(cfg.Price, a.Cache, logger)

	a.Chains = application.NewChainService(ctx, catalog, a.Cache, adapters.Prober(), logger, cfg.Chains)
	a.Session = application.NewWalletService(catalog, adapters, wallets, cfg.Wallet, logger)
	a.Transactions = application.NewTransactionService(ctx, a.Session, a.Prices, cfg.Tx, logger)
	return a, nil
}

func (a *App) openWalletStore(ctx context.Context, logger *zap.Logger) (domainRepo.WalletRepository, error) {
	switch a.Config.Wallet.Store {
	case "postgres":
		repo, err := postgres.New(ctx, a.Config.Wallet.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	case "memory":
		return memory.NewWalletRepository(), nil
	default:
		return file.NewWalletRepository(a.Config.Wallet.Dir, logger)
	}
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
