package memory

import (
	"context"
	"sync"

	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"
)

var _ domainRepo.WalletRepository = (*WalletRepository)(nil)

// WalletRepository keeps wallets in process memory. Nothing survives a restart.
type WalletRepository struct {
	mu       sync.RWMutex
	wallets  map[string]entity.WalletRecord
	verified map[string]bool
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets:  make(map[string]entity.WalletRecord),
		verified: make(map[string]bool),
	}
}

func (r *WalletRepository) Save(_ context.Context, symbol string, record entity.WalletRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[entity.WalletKey(symbol)] = record
	return nil
}

func (r *WalletRepository) Get(_ context.Context, symbol string) (entity.WalletRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[entity.WalletKey(symbol)]
	return w, ok, nil
}

func (r *WalletRepository) Delete(_ context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.WalletKey(symbol)
	delete(r.wallets, key)
	delete(r.verified, key)
	return nil
}

func (r *WalletRepository) SetVerified(_ context.Context, symbol string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified[entity.WalletKey(symbol)] = verified
	return nil
}

func (r *WalletRepository) IsVerified(_ context.Context, symbol string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.verified[entity.WalletKey(symbol)], nil
}
