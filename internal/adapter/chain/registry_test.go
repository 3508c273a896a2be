package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"miniwallet/internal/adapter/chain/bitcoin"
	"miniwallet/internal/adapter/chain/cosmos"
	"miniwallet/internal/adapter/chain/solana"
	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chainOf(name string, family entity.ChainFamily, prefix string) entity.ChainConfig {
	return entity.NewChainConfig(
		entity.ChainConfig{Name: name, ChainID: name + "-1", Family: family, Bech32Prefix: prefix, Transport: entity.TransportWebSocket},
		[]entity.Asset{{Base: "u" + name, Display: name}},
		nil,
		[]entity.Endpoint{{URL: "https://rpc.example.com", Kind: entity.EndpointRPC}},
		[]entity.Endpoint{{URL: "https://rest.example.com", Kind: entity.EndpointREST}},
		nil,
	)
}

func TestRegistry_BuildsPerFamily(t *testing.T) {
	r := NewRegistryWithOptions(rpc.DefaultOptions(), nil, zap.NewNop())
	defer r.Close()

	a, err := r.Adapter(chainOf("cosmoshub", entity.FamilyCosmos, "cosmos"))
	require.NoError(t, err)
	assert.IsType(t, &cosmos.Adapter{}, a)

	b, err := r.Adapter(chainOf("bitcoin", entity.FamilyBitcoin, ""))
	require.NoError(t, err)
	assert.IsType(t, &bitcoin.Adapter{}, b)

	s, err := r.Adapter(chainOf("solana", entity.FamilySolana, ""))
	require.NoError(t, err)
	assert.IsType(t, &solana.Adapter{}, s)

	noFamily, err := r.Adapter(chainOf("osmosis", "", "osmo"))
	require.NoError(t, err)
	assert.IsType(t, &cosmos.Adapter{}, noFamily)
}

func TestRegistry_ReusesAdapter(t *testing.T) {
	r := NewRegistryWithOptions(rpc.DefaultOptions(), nil, zap.NewNop())
	defer r.Close()

	chain := chainOf("cosmoshub", entity.FamilyCosmos, "cosmos")
	first, err := r.Adapter(chain)
	require.NoError(t, err)
	second, err := r.Adapter(chain)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistryWithOptions(rpc.DefaultOptions(), nil, zap.NewNop())
	defer r.Close()

	_, err := r.Adapter(chainOf("evm", "ethereum", ""))
	assert.ErrorIs(t, err, domain.ErrInvalidChainConfig)

	_, err = r.Adapter(chainOf("noprefix", entity.FamilyCosmos, ""))
	assert.ErrorIs(t, err, domain.ErrInvalidChainConfig)
}

func TestNewRegistry_RejectsUnknownSelection(t *testing.T) {
	_, err := NewRegistry(config.ConnectorConfig{MaxRetries: 3, Selection: "round-robin"}, nil, zap.NewNop())
	assert.Error(t, err)

	r, err := NewRegistry(config.ConnectorConfig{MaxRetries: 3, Selection: "sequential"}, nil, zap.NewNop())
	require.NoError(t, err)
	r.Close()
}

func TestFamilies(t *testing.T) {
	for _, f := range Families() {
		_, ok := constructors[f]
		assert.True(t, ok, f)
	}
}

func TestRegistry_ProberChecksEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"ok"}`))
	}))
	defer srv.Close()

	r := NewRegistryWithOptions(rpc.DefaultOptions(), nil, zap.NewNop())
	defer r.Close()

	chain := chainOf("solana", entity.FamilySolana, "")
	health := r.Prober().Probe(context.Background(), chain, entity.Endpoint{URL: entity.EndpointURL(srv.URL), Kind: entity.EndpointRPC})
	assert.True(t, health.Working)
	assert.Equal(t, entity.ProtocolHTTP, health.Protocol)
	require.NotNil(t, health.LatencyMs)

	dead := r.Prober().Probe(context.Background(), chain, entity.Endpoint{URL: "http://127.0.0.1:1", Kind: entity.EndpointRPC})
	assert.False(t, dead.Working)
	assert.Equal(t, entity.ErrorClassNetwork, dead.Class)
}
