package application

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"miniwallet/internal/adapter/storage/memory"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// downProber reports every endpoint containing "down" as failing.
type downProber struct {
	calls atomic.Int32
}

func (p *downProber) Probe(_ context.Context, _ entity.ChainConfig, ep entity.Endpoint) entity.EndpointHealth {
	p.calls.Add(1)
	h := entity.EndpointHealth{Endpoint: ep, Protocol: ep.URL.Protocol()}
	if strings.Contains(ep.URL.String(), "down") {
		h.Class = entity.ErrorClassNetwork
		return h
	}
	latency := int64(12)
	h.Working = true
	h.LatencyMs = &latency
	return h
}

func healthChain() entity.ChainConfig {
	return entity.NewChainConfig(
		entity.ChainConfig{Name: "cosmoshub", Family: entity.FamilyCosmos, Symbol: "ATOM"},
		nil, nil,
		[]entity.Endpoint{
			{URL: "https://rpc-a.example.com", Kind: entity.EndpointRPC},
			{URL: "https://down.example.com", Kind: entity.EndpointRPC},
			{URL: "https://rpc-c.example.com", Kind: entity.EndpointRPC},
		},
		[]entity.Endpoint{{URL: "https://rest.example.com", Kind: entity.EndpointREST}},
		nil,
	)
}

func btcChain() entity.ChainConfig {
	return entity.NewChainConfig(
		entity.ChainConfig{Name: "bitcoin", Family: entity.FamilyBitcoin, Symbol: "BTC"},
		nil, nil, nil,
		[]entity.Endpoint{{URL: "https://blockstream.info/api", Kind: entity.EndpointREST}},
		nil,
	)
}

func newChainService(t *testing.T, prober *downProber) *chainService {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	catalog := fakeCatalog{chains: []entity.ChainConfig{healthChain(), btcChain()}}
	cache := memory.NewCacheRepository(config.Config{}, zap.NewNop())
	cfg := config.ChainsConfig{HealthTTL: time.Minute, HealthWorkers: 2, HealthTimeout: time.Second}
	return NewChainService(ctx, catalog, cache, prober, zap.NewNop(), cfg).(*chainService)
}

func TestChainService_CheckedEndpointsKeepsOrderAndCaches(t *testing.T) {
	prober := &downProber{}
	svc := newChainService(t, prober)
	ctx := context.Background()

	health, err := svc.CheckedEndpoints(ctx, "cosmoshub")
	require.NoError(t, err)
	require.Len(t, health, 3)
	assert.Equal(t, entity.EndpointURL("https://rpc-a.example.com"), health[0].Endpoint.URL)
	assert.True(t, health[0].Working)
	assert.False(t, health[1].Working)
	assert.Equal(t, entity.ErrorClassNetwork, health[1].Class)
	assert.Equal(t, entity.EndpointURL("https://rpc-c.example.com"), health[2].Endpoint.URL)
	assert.Equal(t, int32(3), prober.calls.Load())

	again, err := svc.CheckedEndpoints(ctx, "cosmoshub")
	require.NoError(t, err)
	assert.Equal(t, health, again)
	assert.Equal(t, int32(3), prober.calls.Load(), "second call is served from cache")
}

func TestChainService_BitcoinProbesRestEndpoints(t *testing.T) {
	prober := &downProber{}
	svc := newChainService(t, prober)

	health, err := svc.CheckedEndpoints(context.Background(), "bitcoin")
	require.NoError(t, err)
	require.Len(t, health, 1)
	assert.Equal(t, entity.EndpointURL("https://blockstream.info/api"), health[0].Endpoint.URL)
}

func TestChainService_UnknownChain(t *testing.T) {
	prober := &downProber{}
	svc := newChainService(t, prober)

	_, err := svc.CheckedEndpoints(context.Background(), "juno")
	assert.ErrorIs(t, err, domain.ErrChainNotFound)
	assert.Zero(t, prober.calls.Load())
}

func TestChainService_CheckAllFillsCache(t *testing.T) {
	prober := &downProber{}
	svc := newChainService(t, prober)
	ctx := context.Background()

	svc.checkAll(ctx)
	assert.Equal(t, int32(4), prober.calls.Load())

	cached, found, err := svc.cacheRepo.GetEndpointHealth(ctx, "bitcoin")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, cached, 1)
}

func TestChainService_ChainsFromCatalog(t *testing.T) {
	svc := newChainService(t, &downProber{})

	chains := svc.Chains(context.Background())
	require.Len(t, chains, 2)
	chain, err := svc.Chain(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", chain.Symbol)
}
