package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"miniwallet/internal/application/port"
	"miniwallet/internal/config"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"
	"miniwallet/internal/pkg/units"

	"go.uber.org/zap"
)

var _ port.TransactionService = (*transactionService)(nil)

const (
	defaultRefreshDelay = 3 * time.Second
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	refreshTimeout      = 30 * time.Second
)

type transactionService struct {
	session      port.WalletService
	prices       domainService.PriceFeed
	refreshDelay time.Duration
	historyLimit int
	rootCtx      context.Context
	after        func(time.Duration, func())
	logger       *zap.Logger

	// keyed by chain name and address
	sending sync.Map // *atomic.Bool
	// last balance a live endpoint reported, in atomic units; degraded reads never land here
	balances sync.Map // string
}

// NewTransactionService builds the service. Post-send balance refreshes run on rootCtx.
func NewTransactionService(
	rootCtx context.Context,
	session port.WalletService,
	prices domainService.PriceFeed,
	cfg config.TxConfig,
	logger *zap.Logger,
) port.TransactionService {
	delay := cfg.RefreshDelay
	if delay <= 0 {
		delay = defaultRefreshDelay
	}
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	s := &transactionService{
		session:      session,
		prices:       prices,
		refreshDelay: delay,
		historyLimit: limit,
		rootCtx:      rootCtx,
		after:        func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		logger:       logger.Named("TransactionService"),
	}
	session.OnWalletChange(s.balances.Clear)
	return s
}

// remember caches a reading unless it is the degraded placeholder.
func (s *transactionService) remember(key string, reading entity.BalanceReading) {
	if reading.Degraded {
		return
	}
	s.balances.Store(key, reading.Amount)
}

func walletKey(chain entity.ChainConfig, address string) string {
	return chain.Name + "/" + address
}

// current resolves the chain, its adapter and the stored wallet.
func (s *transactionService) current(ctx context.Context) (entity.ChainConfig, port.ChainAdapter, entity.WalletRecord, error) {
	chain, adapter, err := s.session.Adapter()
	if err != nil {
		return chain, nil, entity.WalletRecord{}, err
	}
	rec, err := s.session.Record(ctx)
	if err != nil {
		return chain, nil, entity.WalletRecord{}, err
	}
	return chain, adapter, rec, nil
}

func (s *transactionService) Balance(ctx context.Context) (entity.Balance, error) {
	chain, adapter, rec, err := s.current(ctx)
	if err != nil {
		return entity.Balance{}, err
	}
	reading, err := adapter.GetBalance(ctx, rec.Address)
	if err != nil {
		return entity.Balance{}, err
	}
	s.remember(walletKey(chain, rec.Address), reading)

	asset, _ := chain.PrimaryAsset()
	display, err := units.BaseToDisplay(reading.Amount, asset.Exponent())
	if err != nil {
		return entity.Balance{}, err
	}
	price := s.prices.Price(ctx, asset)
	return entity.Balance{
		Address:  rec.Address,
		Amount:   reading.Amount,
		Denom:    asset.Base,
		Display:  display,
		Symbol:   chain.Symbol,
		USD:      units.USDValue(display, price.USD),
		Degraded: reading.Degraded,
	}, nil
}

func (s *transactionService) History(ctx context.Context, limit int) ([]entity.NormalizedTransaction, error) {
	_, adapter, rec, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	return adapter.GetHistory(ctx, rec.Address, min(limit, maxHistoryLimit))
}

func (s *transactionService) Status(ctx context.Context, hash string) (entity.TransactionStatus, error) {
	_, adapter, err := s.session.Adapter()
	if err != nil {
		return entity.TransactionStatus{}, err
	}
	return adapter.GetTransactionStatus(ctx, hash)
}

func (s *transactionService) EstimateFee(ctx context.Context, tier entity.GasTier) (entity.FeeEstimate, error) {
	_, adapter, err := s.session.Adapter()
	if err != nil {
		return entity.FeeEstimate{}, err
	}
	return adapter.EstimateFee(ctx, tier, 0)
}

func (s *transactionService) Price(ctx context.Context) (entity.Price, error) {
	chain := s.session.Chain()
	asset, ok := chain.PrimaryAsset()
	if !ok {
		return entity.Price{}, fmt.Errorf("%w: %s has no asset", domain.ErrInvalidChainConfig, chain.Name)
	}
	return s.prices.Price(ctx, asset), nil
}

func (s *transactionService) Send(ctx context.Context, req port.SendRequest) (entity.SendResult, error) {
	chain, adapter, rec, err := s.current(ctx)
	if err != nil {
		return entity.SendResult{}, err
	}
	key := walletKey(chain, rec.Address)

	guard, _ := s.sending.LoadOrStore(key, new(atomic.Bool))
	inFlight := guard.(*atomic.Bool)
	if !inFlight.CompareAndSwap(false, true) {
		return entity.SendResult{}, domain.ErrSendInProgress
	}
	defer inFlight.Store(false)

	// an unknown balance skips the local funds check and leaves the verdict to the node;
	// with no live endpoint the signing connect then fails with domain.ErrConnectivity
	var balance string
	if cached, ok := s.balances.Load(key); ok {
		balance = cached.(string)
	} else {
		reading, err := adapter.GetBalance(ctx, rec.Address)
		if err != nil {
			return entity.SendResult{}, err
		}
		s.remember(key, reading)
		if !reading.Degraded {
			balance = reading.Amount
		}
	}

	res, err := adapter.SendTransaction(ctx, entity.SendParams{
		From:             rec.Address,
		To:               req.To,
		Amount:           req.Amount,
		Memo:             req.Memo,
		PrivateKey:       rec.PrivateKey,
		Tier:             req.Tier,
		LastKnownBalance: balance,
	})
	if err != nil {
		s.logger.Warn("Send failed",
			zap.String("chain", chain.Name), zap.String("to", req.To), zap.String("amount", req.Amount), zap.Error(err),
		)
		return entity.SendResult{}, err
	}

	s.logger.Info("Transaction submitted",
		zap.String("chain", chain.Name), zap.String("hash", res.Hash), zap.String("to", req.To), zap.String("amount", req.Amount),
	)
	s.scheduleRefresh(chain, adapter, rec.Address)
	return res, nil
}

// scheduleRefresh re-reads the balance once the node had time to include the transfer.
func (s *transactionService) scheduleRefresh(chain entity.ChainConfig, adapter port.ChainAdapter, address string) {
	s.after(s.refreshDelay, func() {
		ctx, cancel := context.WithTimeout(s.rootCtx, refreshTimeout)
		defer cancel()
		reading, err := adapter.GetBalance(ctx, address)
		if err != nil {
			s.logger.Warn("Balance refresh failed", zap.String("chain", chain.Name), zap.Error(err))
			return
		}
		if reading.Degraded {
			s.balances.Delete(walletKey(chain, address))
			s.logger.Warn("Balance refresh hit no live endpoint", zap.String("chain", chain.Name))
			return
		}
		s.remember(walletKey(chain, address), reading)
		s.logger.Debug("Balance refreshed", zap.String("chain", chain.Name), zap.String("balance", reading.Amount))
	})
}

func (s *transactionService) HandleRequest(ctx context.Context, req entity.TransactionRequest) (entity.TransactionResponse, error) {
	chain := s.session.Chain()
	resp := entity.TransactionResponse{RequestID: req.RequestID, Symbol: chain.Symbol}
	if rec, err := s.session.Record(ctx); err == nil {
		resp.From = rec.Address
	}

	tier, err := entity.ParseGasTier(req.GasTier)
	if err != nil {
		err = fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		resp.Error = err.Error()
		return resp, err
	}
	res, err := s.Send(ctx, port.SendRequest{To: req.To, Amount: req.Amount, Memo: req.Memo, Tier: tier})
	if err != nil {
		resp.Error = err.Error()
		return resp, err
	}

	resp.Hash = res.Hash
	resp.To = req.To
	resp.Amount = req.Amount
	resp.Network = chain.ChainID
	return resp, nil
}

// Serve handles one request at a time so submissions never race each other.
func (s *transactionService) Serve(ctx context.Context, transport domainService.EventTransport) error {
	reqs, err := transport.Requests(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Serving transaction requests")
	for req := range reqs {
		resp, _ := s.HandleRequest(ctx, req)
		if err := transport.Respond(ctx, resp); err != nil {
			s.logger.Error("Failed to publish response", zap.String("requestId", req.RequestID), zap.Error(err))
		}
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
