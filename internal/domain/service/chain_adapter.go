package service

//go:generate mockgen -destination=mocks/chain_adapter_mock.go -package=mocks miniwallet/internal/domain/service ChainAdapter

import (
	"context"

	"miniwallet/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Capability names one optional adapter operation.
type Capability string

const (
	CapGenerate     Capability = "generateWallet"
	CapImportPhrase Capability = "importFromMnemonic"
	CapImportKey    Capability = "importFromPrivateKey"
	CapBalance      Capability = "getBalance"
	CapSend         Capability = "sendTransaction"
	CapStatus       Capability = "getTransactionStatus"
	CapGasPrice     Capability = "getGasPrice"
	CapHistory      Capability = "getHistory"
)

// Capabilities is the set of operations an adapter actually implements.
type Capabilities map[Capability]bool

// Has reports whether c is supported.
func (cs Capabilities) Has(c Capability) bool {
	return cs[c]
}

// ChainAdapter is the uniform wallet contract every chain family implements.
// Operations an adapter does not provide return domain.ErrAdapterUnimplemented.
type ChainAdapter interface {
	// Chain returns the configuration the adapter was built for.
	Chain() entity.ChainConfig

	// Capabilities lists the operations the adapter implements.
	Capabilities() Capabilities

	// GenerateWallet creates fresh credentials from new entropy.
	GenerateWallet(ctx context.Context) (entity.Credentials, error)

	// ImportFromMnemonic derives credentials from a phrase. Fails with domain.ErrInvalidMnemonic.
	ImportFromMnemonic(ctx context.Context, phrase string) (entity.Credentials, error)

	// ImportFromPrivateKey derives the address of a raw key. Fails with domain.ErrInvalidPrivateKey.
	ImportFromPrivateKey(ctx context.Context, key string) (entity.Credentials, error)

	// IsValidAddress checks the chain's address format. It never panics.
	IsValidAddress(address string) bool

	// GetBalance returns the atomic-unit balance. Network failures yield a degraded "0" reading
	// and a nil error; the failure is logged and counted.
	GetBalance(ctx context.Context, address string) (entity.BalanceReading, error)

	// SendTransaction signs and submits a transfer. It is never retried.
	SendTransaction(ctx context.Context, params entity.SendParams) (entity.SendResult, error)

	// GetTransactionStatus looks up a submitted transaction.
	GetTransactionStatus(ctx context.Context, hash string) (entity.TransactionStatus, error)

	// GetGasPrice returns the configured price for the tier.
	GetGasPrice(tier entity.GasTier) (decimal.Decimal, error)

	// EstimateFee prices a transfer at the tier; gasLimit 0 uses the chain default.
	EstimateFee(ctx context.Context, tier entity.GasTier, gasLimit uint64) (entity.FeeEstimate, error)

	// GetHistory returns the newest transactions touching address, normalized.
	GetHistory(ctx context.Context, address string, limit int) ([]entity.NormalizedTransaction, error)
}
