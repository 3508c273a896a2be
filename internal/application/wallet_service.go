package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"miniwallet/internal/application/port"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"

	"go.uber.org/zap"
)

var _ port.WalletService = (*walletService)(nil)

const defaultVerifyWords = 3

// walletService is the process-wide session. The wallet itself lives in the repository,
// keyed by the current chain's symbol.
type walletService struct {
	catalog     domainService.ChainCatalog
	adapters    domainService.AdapterProvider
	wallets     domainRepo.WalletRepository
	verifyWords int
	now         func() time.Time
	perm        func(n int) []int
	logger      *zap.Logger

	mu        sync.RWMutex
	chain     entity.ChainConfig
	challenge []int
	listeners []func()
}

// NewWalletService starts the session on the catalog's default chain.
func NewWalletService(
	catalog domainService.ChainCatalog,
	adapters domainService.AdapterProvider,
	wallets domainRepo.WalletRepository,
	cfg config.WalletConfig,
	logger *zap.Logger,
) port.WalletService {
	words := cfg.VerifyWords
	if words <= 0 {
		words = defaultVerifyWords
	}
	return &walletService{
		catalog:     catalog,
		adapters:    adapters,
		wallets:     wallets,
		verifyWords: words,
		now:         time.Now,
		perm:        rand.Perm,
		logger:      logger.Named("WalletService"),
		chain:       catalog.Default(),
	}
}

func (s *walletService) Chain() entity.ChainConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain
}

func (s *walletService) UseChain(_ context.Context, name string) (entity.ChainConfig, error) {
	chain, err := s.catalog.Chain(name)
	if err != nil {
		return entity.ChainConfig{}, err
	}
	if _, err := s.adapters.Adapter(chain); err != nil {
		return entity.ChainConfig{}, err
	}

	s.mu.Lock()
	s.chain = chain
	s.challenge = nil
	s.mu.Unlock()
	s.notify()

	s.logger.Info("Switched chain", zap.String("chain", chain.Name), zap.String("symbol", chain.Symbol))
	return chain, nil
}

func (s *walletService) OnWalletChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *walletService) notify() {
	s.mu.RLock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func (s *walletService) Adapter() (entity.ChainConfig, port.ChainAdapter, error) {
	chain := s.Chain()
	a, err := s.adapters.Adapter(chain)
	if err != nil {
		return chain, nil, err
	}
	return chain, a, nil
}

func (s *walletService) Generate(ctx context.Context) (entity.WalletRecord, error) {
	chain, adapter, err := s.Adapter()
	if err != nil {
		return entity.WalletRecord{}, err
	}
	creds, err := adapter.GenerateWallet(ctx)
	if err != nil {
		return entity.WalletRecord{}, err
	}
	return s.accept(ctx, chain, adapter, creds, false)
}

// Imported wallets count as verified: the user already holds the secret.
func (s *walletService) ImportMnemonic(ctx context.Context, phrase string) (entity.WalletView, error) {
	chain, adapter, err := s.Adapter()
	if err != nil {
		return entity.WalletView{}, err
	}
	creds, err := adapter.ImportFromMnemonic(ctx, phrase)
	if err != nil {
		return entity.WalletView{}, err
	}
	rec, err := s.accept(ctx, chain, adapter, creds, true)
	if err != nil {
		return entity.WalletView{}, err
	}
	return s.view(chain, rec, true), nil
}

func (s *walletService) ImportPrivateKey(ctx context.Context, key string) (entity.WalletView, error) {
	chain, adapter, err := s.Adapter()
	if err != nil {
		return entity.WalletView{}, err
	}
	creds, err := adapter.ImportFromPrivateKey(ctx, key)
	if err != nil {
		return entity.WalletView{}, err
	}
	rec, err := s.accept(ctx, chain, adapter, creds, true)
	if err != nil {
		return entity.WalletView{}, err
	}
	return s.view(chain, rec, true), nil
}

// accept stores credentials as the current wallet once the address validates.
func (s *walletService) accept(
	ctx context.Context,
	chain entity.ChainConfig,
	adapter port.ChainAdapter,
	creds entity.Credentials,
	verified bool,
) (entity.WalletRecord, error) {
	if !adapter.IsValidAddress(creds.Address) {
		s.logger.Error("Adapter produced an address that does not validate",
			zap.String("chain", chain.Name), zap.String("address", creds.Address),
		)
		return entity.WalletRecord{}, fmt.Errorf("%w: %q for chain %s", domain.ErrInvalidAddress, creds.Address, chain.Name)
	}

	rec := entity.NewWalletRecord(creds, s.now())
	if err := s.wallets.Save(ctx, chain.Symbol, rec); err != nil {
		return entity.WalletRecord{}, err
	}
	if err := s.wallets.SetVerified(ctx, chain.Symbol, verified); err != nil {
		return entity.WalletRecord{}, err
	}

	s.mu.Lock()
	s.challenge = nil
	s.mu.Unlock()
	s.notify()

	s.logger.Info("Wallet stored",
		zap.String("chain", chain.Name),
		zap.String("address", rec.Address),
		zap.String("type", string(rec.Type)),
	)
	return rec, nil
}

func (s *walletService) view(chain entity.ChainConfig, rec entity.WalletRecord, verified bool) entity.WalletView {
	v := rec.Public()
	v.Verified = verified
	v.Chain = chain.Name
	v.Symbol = chain.Symbol
	return v
}

func (s *walletService) Record(ctx context.Context) (entity.WalletRecord, error) {
	chain := s.Chain()
	rec, found, err := s.wallets.Get(ctx, chain.Symbol)
	if err != nil {
		return entity.WalletRecord{}, err
	}
	if !found {
		return entity.WalletRecord{}, fmt.Errorf("%w: no %s wallet", domain.ErrWalletNotFound, chain.Symbol)
	}
	return rec, nil
}

func (s *walletService) Current(ctx context.Context) (entity.WalletView, error) {
	rec, err := s.Record(ctx)
	if err != nil {
		return entity.WalletView{}, err
	}
	chain := s.Chain()
	verified, err := s.wallets.IsVerified(ctx, chain.Symbol)
	if err != nil {
		return entity.WalletView{}, err
	}
	return s.view(chain, rec, verified), nil
}

func (s *walletService) Reset(ctx context.Context) error {
	chain := s.Chain()
	if err := s.wallets.Delete(ctx, chain.Symbol); err != nil {
		return err
	}
	s.mu.Lock()
	s.challenge = nil
	s.mu.Unlock()
	s.notify()
	s.logger.Info("Wallet reset", zap.String("chain", chain.Name), zap.String("key", entity.WalletKey(chain.Symbol)))
	return nil
}

func (s *walletService) VerificationChallenge(ctx context.Context) ([]int, error) {
	rec, err := s.Record(ctx)
	if err != nil {
		return nil, err
	}
	if !rec.HasMnemonic() {
		return nil, fmt.Errorf("%w: wallet has no mnemonic to verify", apperrors.ErrInvalidInput)
	}

	n := min(s.verifyWords, len(rec.Mnemonic))
	picked := s.perm(len(rec.Mnemonic))[:n]
	challenge := make([]int, n)
	for i, p := range picked {
		challenge[i] = p + 1
	}
	sort.Ints(challenge)

	s.mu.Lock()
	s.challenge = challenge
	s.mu.Unlock()
	return append([]int(nil), challenge...), nil
}

// Verify keeps the challenge on a mismatch so the user can try again.
func (s *walletService) Verify(ctx context.Context, answers map[int]string) error {
	s.mu.RLock()
	challenge := s.challenge
	s.mu.RUnlock()
	if len(challenge) == 0 {
		return fmt.Errorf("%w: no verification challenge issued", apperrors.ErrInvalidInput)
	}

	rec, err := s.Record(ctx)
	if err != nil {
		return err
	}
	for _, pos := range challenge {
		got := strings.ToLower(strings.TrimSpace(answers[pos]))
		if pos > len(rec.Mnemonic) || got != rec.Mnemonic[pos-1] {
			return fmt.Errorf("%w: word %d does not match", domain.ErrMnemonicMismatch, pos)
		}
	}

	chain := s.Chain()
	if err := s.wallets.SetVerified(ctx, chain.Symbol, true); err != nil {
		return err
	}
	s.mu.Lock()
	s.challenge = nil
	s.mu.Unlock()
	s.logger.Info("Mnemonic verified", zap.String("chain", chain.Name))
	return nil
}
