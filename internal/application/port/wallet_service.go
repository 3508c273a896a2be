package port

import (
	"context"

	"miniwallet/internal/domain/entity"
)

// WalletService is the session: the current chain and the wallet held for it.
type WalletService interface {
	// Chain returns the current chain.
	Chain() entity.ChainConfig

	// UseChain switches the current chain; the wallet follows the chain's symbol.
	UseChain(ctx context.Context, name string) (entity.ChainConfig, error)

	// Adapter returns the adapter of the current chain.
	Adapter() (entity.ChainConfig, ChainAdapter, error)

	// Generate creates and stores a fresh wallet. The returned record carries the mnemonic
	// so it can be shown once for backup.
	Generate(ctx context.Context) (entity.WalletRecord, error)

	ImportMnemonic(ctx context.Context, phrase string) (entity.WalletView, error)
	ImportPrivateKey(ctx context.Context, key string) (entity.WalletView, error)

	// Current returns the stored wallet or domain.ErrWalletNotFound.
	Current(ctx context.Context) (entity.WalletView, error)

	// Record returns the stored wallet including signing material.
	Record(ctx context.Context) (entity.WalletRecord, error)

	// Reset deletes the wallet and its verification flag.
	Reset(ctx context.Context) error

	// VerificationChallenge picks distinct 1-based word positions the user must re-enter.
	VerificationChallenge(ctx context.Context) ([]int, error)

	// Verify checks the words for the issued challenge and records the result.
	Verify(ctx context.Context, answers map[int]string) error

	// OnWalletChange registers fn to run after the current wallet is replaced, deleted or
	// the chain switches.
	OnWalletChange(fn func())
}
