package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"miniwallet/internal/application/port"
	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"
	domainService "miniwallet/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check to ensure chainService implements ChainService
var _ port.ChainService = (*chainService)(nil)

const defaultHealthWorkers = 8

// chainService implements port.ChainService on top of the endpoint registry.
type chainService struct {
	catalog    domainService.ChainCatalog
	cacheRepo  domainRepo.CacheRepository
	prober     domainService.EndpointProber
	logger     *zap.Logger
	cfg        config.ChainsConfig
	rootCtx    context.Context
	isChecking *atomic.Bool
}

// NewChainService creates the chain service. A positive cfg.HealthInterval starts a
// background checker bound to rootCtx.
func NewChainService(
	rootCtx context.Context,
	catalog domainService.ChainCatalog,
	cacheRepo domainRepo.CacheRepository,
	prober domainService.EndpointProber,
	logger *zap.Logger,
	cfg config.ChainsConfig,
) port.ChainService {
	uc := &chainService{
		catalog:    catalog,
		cacheRepo:  cacheRepo,
		prober:     prober,
		logger:     logger.Named("ChainService"),
		cfg:        cfg,
		rootCtx:    rootCtx,
		isChecking: new(atomic.Bool),
	}

	go uc.startBackgroundChecker()

	return uc
}

func (uc *chainService) Chains(_ context.Context) []entity.ChainConfig {
	return uc.catalog.Chains()
}

func (uc *chainService) Chain(_ context.Context, name string) (entity.ChainConfig, error) {
	return uc.catalog.Chain(name)
}

// CheckedEndpoints retrieves probe results for a chain, prioritizing the cache.
func (uc *chainService) CheckedEndpoints(ctx context.Context, name string) ([]entity.EndpointHealth, error) {
	chain, err := uc.catalog.Chain(name)
	if err != nil {
		return nil, err
	}

	cached, found, err := uc.cacheRepo.GetEndpointHealth(ctx, name)
	if err != nil {
		uc.logger.Warn("Cache error when getting endpoint health", zap.String("chain", name), zap.Error(err))
	}
	if found {
		uc.logger.Debug("Cache hit for endpoint health", zap.String("chain", name))
		return cached, nil
	}

	uc.logger.Debug("Cache miss for endpoint health, probing", zap.String("chain", name))
	health := uc.checkEndpoints(ctx, chain)
	if cacheErr := uc.cacheRepo.SetEndpointHealth(ctx, name, health, uc.cfg.GetHealthTTL()); cacheErr != nil {
		uc.logger.Error("Failed to cache endpoint health", zap.String("chain", name), zap.Error(cacheErr))
	}
	return health, nil
}

// probedEndpoints are the endpoints the chain's connector dials.
func probedEndpoints(chain entity.ChainConfig) []entity.Endpoint {
	if chain.Family == entity.FamilyBitcoin {
		return chain.Endpoints(entity.EndpointREST)
	}
	return chain.Endpoints(entity.EndpointRPC)
}

// checkEndpoints probes every endpoint of chain in parallel, keeping document order.
func (uc *chainService) checkEndpoints(ctx context.Context, chain entity.ChainConfig) []entity.EndpointHealth {
	endpoints := probedEndpoints(chain)
	results := make([]entity.EndpointHealth, len(endpoints))
	if len(endpoints) == 0 {
		return results
	}

	numWorkers := uc.cfg.HealthWorkers
	if numWorkers <= 0 {
		numWorkers = defaultHealthWorkers
	}
	numWorkers = min(numWorkers, len(endpoints))

	timeout := uc.cfg.GetHealthTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	jobs := make(chan int, len(endpoints))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				checkCtx, cancel := context.WithTimeout(ctx, timeout)
				results[i] = uc.prober.Probe(checkCtx, chain, endpoints[i])
				cancel()
			}
		}()
	}
	for i := range endpoints {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	working := 0
	for _, r := range results {
		if r.Working {
			working++
		}
	}
	uc.logger.Info("Endpoint check finished",
		zap.String("chain", chain.Name), zap.Int("endpoints", len(results)), zap.Int("working", working),
	)
	return results
}

// checkAll refreshes the cached health of every chain.
func (uc *chainService) checkAll(ctx context.Context) {
	for _, chain := range uc.catalog.Chains() {
		if ctx.Err() != nil {
			uc.logger.Info("Context cancelled, stopping endpoint checks")
			return
		}
		health := uc.checkEndpoints(ctx, chain)
		if err := uc.cacheRepo.SetEndpointHealth(ctx, chain.Name, health, uc.cfg.GetHealthTTL()); err != nil {
			uc.logger.Warn("Failed to cache endpoint health", zap.String("chain", chain.Name), zap.Error(err))
		}
	}
}

// startBackgroundChecker periodically probes all chains until rootCtx ends.
func (uc *chainService) startBackgroundChecker() {
	interval := uc.cfg.GetHealthInterval()
	if interval <= 0 {
		uc.logger.Info("Background endpoint checker disabled (interval <= 0)")
		return
	}

	uc.logger.Info("Starting background endpoint checker", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if uc.isChecking.CompareAndSwap(false, true) {
				uc.checkAll(uc.rootCtx)
				uc.isChecking.Store(false)
			} else {
				uc.logger.Debug("Endpoint check already in progress, skipping tick")
			}
		case <-uc.rootCtx.Done():
			uc.logger.Info("Stopping background endpoint checker")
			return
		}
	}
}
