package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chainadapter "miniwallet/internal/adapter/chain"
	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/adapter/storage/memory"
	"miniwallet/internal/application/port"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// deadChain points its only endpoint at a server that is already closed.
func deadChain(t *testing.T) entity.ChainConfig {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	return entity.NewChainConfig(
		entity.ChainConfig{
			Name:         "cosmoshub",
			ChainID:      "cosmoshub-4",
			Family:       entity.FamilyCosmos,
			Symbol:       "ATOM",
			Bech32Prefix: "cosmos",
			Transport:    entity.TransportHTTP,
		},
		[]entity.Asset{{
			Base:       "uatom",
			Display:    "atom",
			Symbol:     "ATOM",
			DenomUnits: []entity.DenomUnit{{Denom: "uatom", Exponent: 0}, {Denom: "atom", Exponent: 6}},
		}},
		[]entity.FeeToken{{
			Denom:           "uatom",
			LowGasPrice:     decimal.RequireFromString("0.01"),
			AverageGasPrice: decimal.RequireFromString("0.025"),
			HighGasPrice:    decimal.RequireFromString("0.03"),
		}},
		[]entity.Endpoint{{URL: entity.EndpointURL(url), Kind: entity.EndpointRPC}},
		nil,
		nil,
	)
}

func TestTransactionService_SendWithEveryEndpointDown(t *testing.T) {
	ctx := context.Background()
	chain := deadChain(t)

	opts := rpc.DefaultOptions()
	opts.AttemptTimeout = time.Second
	opts.Retry.Sleep = func(context.Context, time.Duration) error { return nil }
	adapters := chainadapter.NewRegistryWithOptions(opts, nil, zap.NewNop())
	defer adapters.Close()

	session := NewWalletService(fakeCatalog{chains: []entity.ChainConfig{chain}}, adapters, memory.NewWalletRepository(), config.WalletConfig{}, zap.NewNop())
	svc := NewTransactionService(ctx, session, fixedPrice{usd: decimal.RequireFromString("8.5")}, config.TxConfig{}, zap.NewNop()).(*transactionService)

	_, err := session.Generate(ctx)
	require.NoError(t, err)
	adapter, err := adapters.Adapter(chain)
	require.NoError(t, err)
	recipient, err := adapter.GenerateWallet(ctx)
	require.NoError(t, err)

	bal, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", bal.Amount)
	assert.True(t, bal.Degraded)

	for range 2 {
		_, err = svc.Send(ctx, port.SendRequest{To: recipient.Address, Amount: "1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConnectivity)
		assert.NotErrorIs(t, err, domain.ErrInsufficientFunds)
	}
}

func TestTransactionService_DegradedBalanceIsNotRemembered(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTxService(f, config.TxConfig{})
	ctx := context.Background()
	f.storeWallet(t, "cosmos1abc")

	degraded := entity.BalanceReading{Amount: "0", Degraded: true}
	gomock.InOrder(
		f.adapter.EXPECT().GetBalance(ctx, "cosmos1abc").Return(degraded, nil),
		f.adapter.EXPECT().GetBalance(ctx, "cosmos1abc").Return(degraded, nil),
		f.adapter.EXPECT().SendTransaction(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p entity.SendParams) (entity.SendResult, error) {
				assert.Empty(t, p.LastKnownBalance)
				return entity.SendResult{}, domain.ErrConnectivity
			}),
	)

	bal, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Degraded)
	_, ok := svc.balances.Load("cosmoshub/cosmos1abc")
	assert.False(t, ok)

	_, err = svc.Send(ctx, port.SendRequest{To: "cosmos1dst", Amount: "1"})
	assert.ErrorIs(t, err, domain.ErrConnectivity)
}

func TestTransactionService_DegradedRefreshDropsCachedBalance(t *testing.T) {
	f := newFixture(t)
	svc, queued := newTxService(f, config.TxConfig{})
	ctx := context.Background()
	f.storeWallet(t, "cosmos1abc")
	svc.balances.Store("cosmoshub/cosmos1abc", "5000000")

	f.adapter.EXPECT().SendTransaction(ctx, gomock.Any()).Return(entity.SendResult{Hash: "H"}, nil)
	f.adapter.EXPECT().GetBalance(gomock.Any(), "cosmos1abc").Return(entity.BalanceReading{Amount: "0", Degraded: true}, nil)

	_, err := svc.Send(ctx, port.SendRequest{To: "cosmos1dst", Amount: "1"})
	require.NoError(t, err)
	require.Len(t, *queued, 1)
	(*queued)[0].run()

	_, ok := svc.balances.Load("cosmoshub/cosmos1abc")
	assert.False(t, ok)
}

func TestTransactionService_SessionChangesForgetBalances(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTxService(f, config.TxConfig{})
	ctx := context.Background()
	f.storeWallet(t, "cosmos1abc")

	f.adapter.EXPECT().GetBalance(ctx, "cosmos1abc").Return(entity.BalanceReading{Amount: "100"}, nil)
	_, err := svc.Balance(ctx)
	require.NoError(t, err)

	require.NoError(t, f.session.Reset(ctx))
	_, ok := svc.balances.Load("cosmoshub/cosmos1abc")
	assert.False(t, ok, "reset")

	f.adapter.EXPECT().ImportFromPrivateKey(ctx, "pk").Return(entity.Credentials{Address: "cosmos1abc", PrivateKey: "pk"}, nil)
	f.adapter.EXPECT().IsValidAddress("cosmos1abc").Return(true)
	_, err = f.session.ImportPrivateKey(ctx, "pk")
	require.NoError(t, err)

	gomock.InOrder(
		f.adapter.EXPECT().GetBalance(ctx, "cosmos1abc").Return(entity.BalanceReading{Amount: "5000000"}, nil),
		f.adapter.EXPECT().SendTransaction(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p entity.SendParams) (entity.SendResult, error) {
				assert.Equal(t, "5000000", p.LastKnownBalance)
				return entity.SendResult{Hash: "H"}, nil
			}),
	)
	_, err = svc.Send(ctx, port.SendRequest{To: "cosmos1dst", Amount: "1"})
	require.NoError(t, err)

	svc.balances.Store("cosmoshub/cosmos1abc", "4000000")
	_, err = f.session.UseChain(ctx, "osmosis")
	require.NoError(t, err)
	_, ok = svc.balances.Load("cosmoshub/cosmos1abc")
	assert.False(t, ok, "chain switch")
}
