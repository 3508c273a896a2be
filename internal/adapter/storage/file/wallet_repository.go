// Package file persists wallets as JSON documents, one per chain symbol.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"

	"go.uber.org/zap"
)

var _ domainRepo.WalletRepository = (*WalletRepository)(nil)

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

type walletDocument struct {
	Address    string                `json:"address"`
	Mnemonic   []string              `json:"mnemonic,omitempty"`
	PrivateKey string                `json:"privateKey"`
	CreatedAt  time.Time             `json:"createdAt"`
	Type       entity.DerivationType `json:"type"`
}

type verifiedDocument struct {
	Verified bool `json:"verified"`
}

// WalletRepository stores <symbol>_wallet.json and <symbol>_wallet.verified.json under dir.
type WalletRepository struct {
	dir    string
	logger *zap.Logger
}

func NewWalletRepository(dir string, logger *zap.Logger) (*WalletRepository, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create wallet dir %s: %w", dir, err)
	}
	return &WalletRepository{dir: dir, logger: logger.Named("FileWalletStorage")}, nil
}

func (r *WalletRepository) walletPath(symbol string) string {
	return filepath.Join(r.dir, entity.WalletKey(symbol)+".json")
}

func (r *WalletRepository) verifiedPath(symbol string) string {
	return filepath.Join(r.dir, entity.WalletKey(symbol)+".verified.json")
}

func (r *WalletRepository) Save(_ context.Context, symbol string, record entity.WalletRecord) error {
	doc := walletDocument{
		Address:    record.Address,
		Mnemonic:   record.Mnemonic,
		PrivateKey: record.PrivateKey,
		CreatedAt:  record.CreatedAt,
		Type:       record.Type,
	}
	if err := writeJSON(r.walletPath(symbol), doc); err != nil {
		return fmt.Errorf("save wallet %s: %w", entity.WalletKey(symbol), err)
	}
	r.logger.Info("Wallet saved", zap.String("key", entity.WalletKey(symbol)), zap.String("address", record.Address))
	return nil
}

func (r *WalletRepository) Get(_ context.Context, symbol string) (entity.WalletRecord, bool, error) {
	var doc walletDocument
	found, err := readJSON(r.walletPath(symbol), &doc)
	if err != nil || !found {
		return entity.WalletRecord{}, false, err
	}
	return entity.WalletRecord{
		Address:    doc.Address,
		Mnemonic:   doc.Mnemonic,
		PrivateKey: doc.PrivateKey,
		CreatedAt:  doc.CreatedAt,
		Type:       doc.Type,
	}, true, nil
}

func (r *WalletRepository) Delete(_ context.Context, symbol string) error {
	for _, p := range []string{r.walletPath(symbol), r.verifiedPath(symbol)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	r.logger.Info("Wallet deleted", zap.String("key", entity.WalletKey(symbol)))
	return nil
}

func (r *WalletRepository) SetVerified(_ context.Context, symbol string, verified bool) error {
	return writeJSON(r.verifiedPath(symbol), verifiedDocument{Verified: verified})
}

func (r *WalletRepository) IsVerified(_ context.Context, symbol string) (bool, error) {
	var doc verifiedDocument
	if _, err := readJSON(r.verifiedPath(symbol), &doc); err != nil {
		return false, err
	}
	return doc.Verified, nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// writeJSON replaces path atomically so a crash never leaves half a wallet behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
