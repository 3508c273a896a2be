package http

import (
	"context"
	"encoding/json"
	"time"

	"miniwallet/internal/application/port"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 60 * time.Second

// Handler serves the wallet API on top of the application services.
type Handler struct {
	chains  port.ChainService
	wallets port.WalletService
	txs     port.TransactionService
	timeout time.Duration
	logger  *zap.Logger
}

func NewHandler(
	chains port.ChainService,
	wallets port.WalletService,
	txs port.TransactionService,
	timeout time.Duration,
	logger *zap.Logger,
) *Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		chains:  chains,
		wallets: wallets,
		txs:     txs,
		timeout: timeout,
		logger:  logger.Named("WalletHandler"),
	}
}

// Health is a plain liveness probe.
func (h *Handler) Health(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString("OK")
}

// requestContext bounds the work a single request may trigger on the chain.
func (h *Handler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		// Response already started, can't set error code
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, op string, err error) {
	status := StatusFor(err)
	if status >= fasthttp.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	h.writeJSON(ctx, status, errorResponse{Error: err.Error()})
}

// decodeBody unmarshals a JSON request body into v.
func decodeBody(ctx *fasthttp.RequestCtx, v any) error {
	if len(ctx.PostBody()) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		return invalidInput("malformed JSON body: %v", err)
	}
	return nil
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}
