// Package postgres stores wallets in PostgreSQL through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var _ domainRepo.WalletRepository = (*WalletRepository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	wallet_key  TEXT PRIMARY KEY,
	address     TEXT NOT NULL,
	mnemonic    TEXT[] NOT NULL DEFAULT '{}',
	private_key TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	derivation  TEXT NOT NULL,
	verified    BOOLEAN NOT NULL DEFAULT FALSE
)`

type WalletRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens the database in dsn and creates the wallets table when missing.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*WalletRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot reach DB: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create wallets table: %w", err)
	}
	return &WalletRepository{db: db, logger: logger.Named("PostgresWalletStorage")}, nil
}

// Close must be called at termination time.
func (r *WalletRepository) Close() error {
	return r.db.Close()
}

// Save upserts the wallet. Replacing a wallet clears its verified flag.
func (r *WalletRepository) Save(ctx context.Context, symbol string, record entity.WalletRecord) error {
	mnemonic := record.Mnemonic
	if mnemonic == nil {
		mnemonic = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (wallet_key, address, mnemonic, private_key, created_at, derivation, verified)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		ON CONFLICT (wallet_key) DO UPDATE SET
			address = EXCLUDED.address,
			mnemonic = EXCLUDED.mnemonic,
			private_key = EXCLUDED.private_key,
			created_at = EXCLUDED.created_at,
			derivation = EXCLUDED.derivation,
			verified = FALSE`,
		entity.WalletKey(symbol), record.Address, pq.Array(mnemonic), record.PrivateKey, record.CreatedAt, string(record.Type),
	)
	if err != nil {
		return fmt.Errorf("save wallet %s: %w", entity.WalletKey(symbol), err)
	}
	r.logger.Info("Wallet saved", zap.String("key", entity.WalletKey(symbol)), zap.String("address", record.Address))
	return nil
}

func (r *WalletRepository) Get(ctx context.Context, symbol string) (entity.WalletRecord, bool, error) {
	var (
		rec        entity.WalletRecord
		mnemonic   []string
		derivation string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT address, mnemonic, private_key, created_at, derivation FROM wallets WHERE wallet_key = $1`,
		entity.WalletKey(symbol),
	).Scan(&rec.Address, pq.Array(&mnemonic), &rec.PrivateKey, &rec.CreatedAt, &derivation)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.WalletRecord{}, false, nil
	}
	if err != nil {
		return entity.WalletRecord{}, false, fmt.Errorf("load wallet %s: %w", entity.WalletKey(symbol), err)
	}
	if len(mnemonic) > 0 {
		rec.Mnemonic = mnemonic
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.Type = entity.DerivationType(derivation)
	return rec, true, nil
}

func (r *WalletRepository) Delete(ctx context.Context, symbol string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE wallet_key = $1`, entity.WalletKey(symbol)); err != nil {
		return fmt.Errorf("delete wallet %s: %w", entity.WalletKey(symbol), err)
	}
	return nil
}

// SetVerified is a no-op when no wallet is stored.
func (r *WalletRepository) SetVerified(ctx context.Context, symbol string, verified bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE wallets SET verified = $2 WHERE wallet_key = $1`, entity.WalletKey(symbol), verified)
	if err != nil {
		return fmt.Errorf("set verified %s: %w", entity.WalletKey(symbol), err)
	}
	return nil
}

func (r *WalletRepository) IsVerified(ctx context.Context, symbol string) (bool, error) {
	var verified bool
	err := r.db.QueryRowContext(ctx, `SELECT verified FROM wallets WHERE wallet_key = $1`, entity.WalletKey(symbol)).Scan(&verified)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read verified %s: %w", entity.WalletKey(symbol), err)
	}
	return verified, nil
}
