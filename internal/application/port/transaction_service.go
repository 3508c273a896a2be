package port

import (
	"context"

	"miniwallet/internal/domain/entity"
	"miniwallet/internal/domain/service"
)

// ChainAdapter is re-exported so handlers depend on ports only.
type ChainAdapter = service.ChainAdapter

// SendRequest is a transfer from the current wallet. Amount is in display units.
type SendRequest struct {
	To     string
	Amount string
	Memo   string
	Tier   entity.GasTier
}

// TransactionService runs balance, history, fee and send flows for the current wallet.
type TransactionService interface {
	Balance(ctx context.Context) (entity.Balance, error)
	History(ctx context.Context, limit int) ([]entity.NormalizedTransaction, error)
	Status(ctx context.Context, hash string) (entity.TransactionStatus, error)
	EstimateFee(ctx context.Context, tier entity.GasTier) (entity.FeeEstimate, error)
	Price(ctx context.Context) (entity.Price, error)

	// Send fails with domain.ErrSendInProgress while another send of the wallet is in flight.
	Send(ctx context.Context, req SendRequest) (entity.SendResult, error)

	// HandleRequest runs a transactionRequest event and builds its response. The response is
	// always filled; a non-nil error is the cause behind resp.Error.
	HandleRequest(ctx context.Context, req entity.TransactionRequest) (entity.TransactionResponse, error)

	// Serve consumes requests from transport until ctx is done or the stream ends.
	Serve(ctx context.Context, transport service.EventTransport) error
}
