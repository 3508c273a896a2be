package repository

import (
	"context"

	"miniwallet/internal/domain/entity"
)

// WalletRepository persists wallet records keyed by chain symbol.
type WalletRepository interface {
	// Save stores the record under the symbol's wallet key, replacing any previous one.
	Save(ctx context.Context, symbol string, record entity.WalletRecord) error

	// Get loads the record; found is false when no wallet is stored.
	Get(ctx context.Context, symbol string) (entity.WalletRecord, bool, error)

	// Delete removes the record and its verification flag. Deleting a missing record is not an error.
	Delete(ctx context.Context, symbol string) error

	// SetVerified records whether the mnemonic verification step has been completed.
	SetVerified(ctx context.Context, symbol string, verified bool) error

	// IsVerified reports the mnemonic verification flag.
	IsVerified(ctx context.Context, symbol string) (bool, error)
}
