package chainregistry

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"
	"miniwallet/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func byName(chains []entity.ChainConfig) map[string]entity.ChainConfig {
	out := make(map[string]entity.ChainConfig, len(chains))
	for _, c := range chains {
		out[c.Name] = c
	}
	return out
}

func decimalEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestLocalRepository_LoadsValidDocuments(t *testing.T) {
	repo := NewLocalRepository("testdata", zap.NewNop())

	chains, err := repo.GetAllChains(context.Background())
	require.NoError(t, err)

	got := byName(chains)
	require.Len(t, got, 3, "no_rpc.json and truncated.json are skipped")
	assert.Contains(t, got, "cosmoshub")
	assert.Contains(t, got, "bitcoin")
	assert.Contains(t, got, "testhub")
}

func TestLocalRepository_CosmosDocument(t *testing.T) {
	chains, err := NewLocalRepository("testdata", zap.NewNop()).GetAllChains(context.Background())
	require.NoError(t, err)
	hub := byName(chains)["cosmoshub"]

	assert.Equal(t, "cosmoshub-4", hub.ChainID)
	assert.Equal(t, entity.FamilyCosmos, hub.Family)
	assert.Equal(t, entity.TransportWebSocket, hub.Transport)
	assert.Equal(t, "/websocket", hub.WebsocketPath)
	assert.Equal(t, "cosmos", hub.Bech32Prefix)
	assert.Equal(t, "ATOM", hub.Symbol)
	assert.Equal(t, "uatom", hub.BaseDenom())
	assert.Equal(t, uint64(200000), hub.GasLimit)

	rpcs := hub.Endpoints(entity.EndpointRPC)
	require.Len(t, rpcs, 3)
	assert.Equal(t, entity.EndpointURL("https://cosmos-rpc.publicnode.com:443"), rpcs[0].URL)
	assert.Equal(t, "cosmoshub-4", rpcs[0].ChainID)
	assert.Len(t, hub.Endpoints(entity.EndpointREST), 2)

	asset, ok := hub.PrimaryAsset()
	require.True(t, ok)
	assert.Equal(t, int32(6), asset.Exponent())
	assert.Equal(t, "cosmos", asset.CoingeckoID)

	fee, ok := hub.FeeToken()
	require.True(t, ok)
	decimalEq(t, "0.005", fee.FixedMinGasPrice)
	decimalEq(t, "0.01", fee.LowGasPrice)
	decimalEq(t, "0.025", fee.AverageGasPrice)
	decimalEq(t, "0.04", fee.HighGasPrice)

	assert.Equal(t, "https://www.mintscan.io/cosmos/transactions/ABC", hub.ExplorerTxURL("ABC"))
}

func TestLocalRepository_YAMLDocument(t *testing.T) {
	chains, err := NewLocalRepository("testdata", zap.NewNop()).GetAllChains(context.Background())
	require.NoError(t, err)
	btc := byName(chains)["bitcoin"]

	assert.Equal(t, entity.FamilyBitcoin, btc.Family)
	assert.Equal(t, entity.TransportHTTP, btc.Transport)
	assert.Empty(t, btc.WebsocketPath)
	assert.Equal(t, "GET /blocks/tip/height", btc.Liveness)
	assert.Equal(t, uint64(141), btc.GasLimit)
	assert.Empty(t, btc.Endpoints(entity.EndpointRPC))
	assert.Len(t, btc.Endpoints(entity.EndpointREST), 2)

	asset, _ := btc.PrimaryAsset()
	assert.Equal(t, int32(8), asset.Exponent())

	fee, ok := btc.FeeToken()
	require.True(t, ok)
	assert.Equal(t, "sat", fee.Denom)
	decimalEq(t, "15", fee.HighGasPrice)
}

func TestLocalRepository_AppliesDefaults(t *testing.T) {
	chains, err := NewLocalRepository("testdata", zap.NewNop()).GetAllChains(context.Background())
	require.NoError(t, err)
	c := byName(chains)["testhub"]

	rpcs := c.Endpoints(entity.EndpointRPC)
	require.Len(t, rpcs, 1, "invalid and non-http endpoints are skipped")
	assert.Equal(t, entity.EndpointURL("https://rpc.testhub.io"), rpcs[0].URL)

	assert.Equal(t, entity.FamilyCosmos, c.Family)
	assert.Equal(t, entity.TransportWebSocket, c.Transport)
	assert.Equal(t, DefaultWebsocketPath, c.WebsocketPath)
	assert.Equal(t, DefaultGasLimit, c.GasLimit)
	assert.Equal(t, entity.NetworkMainnet, c.Network)
	assert.Equal(t, "TEST", c.Symbol)

	asset, _ := c.PrimaryAsset()
	assert.Equal(t, entity.DefaultExponent, asset.Exponent())

	fee, ok := c.FeeToken()
	require.True(t, ok)
	assert.Equal(t, "utest", fee.Denom)
	decimalEq(t, "0.01", fee.LowGasPrice)
	decimalEq(t, "0.025", fee.AverageGasPrice)
	decimalEq(t, "0.04", fee.HighGasPrice)
	assert.True(t, fee.FixedMinGasPrice.IsZero())
}

func TestLocalRepository_MissingDirectory(t *testing.T) {
	_, err := NewLocalRepository(filepath.Join(t.TempDir(), "absent"), zap.NewNop()).GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestToDomainChain_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no chain name", `{"chain_id":"x-1","bech32_prefix":"x","assets":[{"base":"ux"}],"apis":{"rpc":[{"address":"https://rpc.x.io"}]}}`},
		{"no chain id", `{"chain_name":"x","bech32_prefix":"x","assets":[{"base":"ux"}],"apis":{"rpc":[{"address":"https://rpc.x.io"}]}}`},
		{"unknown family", `{"chain_name":"x","chain_id":"x-1","chain_family":"evm","assets":[{"base":"wei"}],"apis":{"rpc":[{"address":"https://rpc.x.io"}]}}`},
		{"cosmos without prefix", `{"chain_name":"x","chain_id":"x-1","assets":[{"base":"ux"}],"apis":{"rpc":[{"address":"https://rpc.x.io"}]}}`},
		{"no assets", `{"chain_name":"x","chain_id":"x-1","bech32_prefix":"x","apis":{"rpc":[{"address":"https://rpc.x.io"}]}}`},
		{"bad transport", `{"chain_name":"x","chain_id":"x-1","bech32_prefix":"x","rpc_transport":"grpc","assets":[{"base":"ux"}],"apis":{"rpc":[{"address":"https://rpc.x.io"}]}}`},
		{"bitcoin over websocket", `{"chain_name":"x","chain_id":"x","chain_family":"bitcoin","rpc_transport":"websocket","assets":[{"base":"sat"}],"apis":{"rest":[{"address":"https://x.io/api"}]}}`},
		{"bitcoin without rest", `{"chain_name":"x","chain_id":"x","chain_family":"bitcoin","assets":[{"base":"sat"}],"apis":{"rpc":[{"address":"https://x.io"}]}}`},
		{"no valid rpc", `{"chain_name":"x","chain_id":"x-1","bech32_prefix":"x","assets":[{"base":"ux"}],"apis":{"rpc":[{"address":"x.io"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := decodeDocuments([]byte(tt.doc), false)
			require.NoError(t, err)
			require.Len(t, raws, 1)

			_, err = toDomainChain(raws[0], zap.NewNop())
			assert.ErrorIs(t, err, domain.ErrInvalidChainConfig)
		})
	}
}

func TestMapTransport_SolanaDefaultsToHTTP(t *testing.T) {
	tr, err := mapTransport("", entity.FamilySolana)
	require.NoError(t, err)
	assert.Equal(t, entity.TransportHTTP, tr)

	tr, err = mapTransport("WebSocket", entity.FamilySolana)
	require.NoError(t, err)
	assert.Equal(t, entity.TransportWebSocket, tr)
}

func TestDecodeDocuments_Array(t *testing.T) {
	raws, err := decodeDocuments([]byte(` [{"chain_name":"a"},{"chain_name":"b"}]`), false)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "b", raws[1].ChainName)

	raws, err = decodeDocuments([]byte("- chain_name: a\n- chain_name: b\n"), true)
	require.NoError(t, err)
	assert.Len(t, raws, 2)

	_, err = decodeDocuments([]byte("chain_name: [unterminated"), true)
	assert.Error(t, err)
}

func newRemote(t *testing.T, handler http.HandlerFunc) *RemoteRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteRepository(config.ChainsConfig{RegistryURL: srv.URL + "/chain.json"}, zap.NewNop())
}

func TestRemoteRepository_GzipDocument(t *testing.T) {
	doc, err := os.ReadFile(filepath.Join("testdata", "cosmoshub.json"))
	require.NoError(t, err)

	repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write(doc)
		_ = zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	})

	chains, err := repo.GetAllChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "cosmoshub", chains[0].Name)
}

func TestRemoteRepository_YAMLByContentType(t *testing.T) {
	doc, err := os.ReadFile(filepath.Join("testdata", "bitcoin.yaml"))
	require.NoError(t, err)

	repo := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(doc)
	})

	chains, err := repo.GetAllChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, entity.FamilyBitcoin, chains[0].Family)
}

func TestRemoteRepository_Errors(t *testing.T) {
	notFound := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := notFound.GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	broken := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = broken.GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrExternalServiceFailure)

	garbage := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	_, err = garbage.GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrExternalServiceFailure)
}

type staticSource struct {
	chains []entity.ChainConfig
	err    error
}

func (s staticSource) GetAllChains(context.Context) ([]entity.ChainConfig, error) {
	return s.chains, s.err
}

func chainNamed(name, chainID string) entity.ChainConfig {
	return entity.NewChainConfig(entity.ChainConfig{Name: name, ChainID: chainID}, nil, nil, nil, nil, nil)
}

func TestLoad_FirstSourceWins(t *testing.T) {
	sources := []domainRepo.ChainRepository{
		staticSource{err: apperrors.ErrExternalServiceFailure},
		staticSource{chains: []entity.ChainConfig{chainNamed("osmosis", "osmosis-1"), chainNamed("cosmoshub", "cosmoshub-4")}},
		staticSource{chains: []entity.ChainConfig{chainNamed("cosmoshub", "theta-testnet-001")}},
	}

	r, err := Load(context.Background(), sources, "cosmoshub", zap.NewNop())
	require.NoError(t, err)

	hub, err := r.Chain("cosmoshub")
	require.NoError(t, err)
	assert.Equal(t, "cosmoshub-4", hub.ChainID)
	assert.Equal(t, "cosmoshub", r.Default().Name)

	chains := r.Chains()
	require.Len(t, chains, 2)
	assert.Equal(t, "cosmoshub", chains[0].Name)
	assert.Equal(t, "osmosis", chains[1].Name)

	_, err = r.Chain("juno")
	assert.ErrorIs(t, err, domain.ErrChainNotFound)
	_, err = r.Endpoints("juno", entity.EndpointRPC)
	assert.ErrorIs(t, err, domain.ErrChainNotFound)
}

func TestLoad_Failures(t *testing.T) {
	_, err := Load(context.Background(), []domainRepo.ChainRepository{staticSource{}}, "", zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidChainConfig)

	one := []domainRepo.ChainRepository{staticSource{chains: []entity.ChainConfig{chainNamed("osmosis", "osmosis-1")}}}
	_, err = Load(context.Background(), one, "cosmoshub", zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidChainConfig)

	r, err := Load(context.Background(), one, "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "osmosis", r.Default().Name)
}

func TestLoad_FromTestdata(t *testing.T) {
	r, err := Load(context.Background(), []domainRepo.ChainRepository{NewLocalRepository("testdata", zap.NewNop())}, "cosmoshub", zap.NewNop())
	require.NoError(t, err)

	eps, err := r.Endpoints("bitcoin", entity.EndpointREST)
	require.NoError(t, err)
	assert.Equal(t, entity.EndpointURL("https://blockstream.info/api"), eps[0].URL)
}
