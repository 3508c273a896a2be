package application

import (
	"context"
	"fmt"
	"testing"

	"miniwallet/internal/adapter/storage/memory"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/domain/service/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func testChain(name, symbol string) entity.ChainConfig {
	return entity.NewChainConfig(
		entity.ChainConfig{Name: name, ChainID: name + "-4", Family: entity.FamilyCosmos, Symbol: symbol, Bech32Prefix: "cosmos"},
		[]entity.Asset{{
			Base:        "u" + name,
			Display:     name,
			Symbol:      symbol,
			CoingeckoID: name,
			DenomUnits:  []entity.DenomUnit{{Denom: "u" + name, Exponent: 0}, {Denom: name, Exponent: 6}},
		}},
		nil,
		[]entity.Endpoint{{URL: "https://rpc.example.com", Kind: entity.EndpointRPC}},
		nil,
		nil,
	)
}

type fakeCatalog struct {
	chains []entity.ChainConfig
}

func (c fakeCatalog) Chain(name string) (entity.ChainConfig, error) {
	for _, ch := range c.chains {
		if ch.Name == name {
			return ch, nil
		}
	}
	return entity.ChainConfig{}, fmt.Errorf("%w: %q", domain.ErrChainNotFound, name)
}

func (c fakeCatalog) Chains() []entity.ChainConfig { return c.chains }
func (c fakeCatalog) Default() entity.ChainConfig  { return c.chains[0] }

type fakeAdapters map[string]domainService.ChainAdapter

func (f fakeAdapters) Adapter(chain entity.ChainConfig) (domainService.ChainAdapter, error) {
	a, ok := f[chain.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter for %s", domain.ErrInvalidChainConfig, chain.Name)
	}
	return a, nil
}

type fixedPrice struct {
	usd decimal.Decimal
}

func (p fixedPrice) Price(_ context.Context, asset entity.Asset) entity.Price {
	return entity.Price{ID: asset.CoingeckoID, USD: p.usd}
}

type fixture struct {
	hub     entity.ChainConfig
	osmo    entity.ChainConfig
	adapter *mocks.MockChainAdapter
	other   *mocks.MockChainAdapter
	wallets *memory.WalletRepository
	session *walletService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		hub:     testChain("cosmoshub", "ATOM"),
		osmo:    testChain("osmosis", "OSMO"),
		adapter: mocks.NewMockChainAdapter(ctrl),
		other:   mocks.NewMockChainAdapter(ctrl),
		wallets: memory.NewWalletRepository(),
	}
	catalog := fakeCatalog{chains: []entity.ChainConfig{f.hub, f.osmo}}
	adapters := fakeAdapters{"cosmoshub": f.adapter, "osmosis": f.other}
	f.session = NewWalletService(catalog, adapters, f.wallets, config.WalletConfig{VerifyWords: 3}, zap.NewNop()).(*walletService)
	f.session.perm = func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = n - 1 - i
		}
		return out
	}
	return f
}

var testWords = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}

// storeWallet puts a mnemonic wallet for the current chain straight into the repository.
func (f *fixture) storeWallet(t *testing.T, address string) entity.WalletRecord {
	t.Helper()
	rec := entity.NewWalletRecord(entity.Credentials{Address: address, PrivateKey: "pk-" + address, Mnemonic: testWords}, f.session.now())
	if err := f.wallets.Save(context.Background(), f.session.Chain().Symbol, rec); err != nil {
		t.Fatal(err)
	}
	return rec
}
