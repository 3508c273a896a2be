package http

import (
	"strconv"
	"strings"

	"miniwallet/internal/adapter/events"
	"miniwallet/internal/domain/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func (h *Handler) GetBalance(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	bal, err := h.txs.Balance(reqCtx)
	if err != nil {
		h.writeError(ctx, "balance", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, bal)
}

// GetTransactions returns the normalized history; ?limit= caps the result.
func (h *Handler) GetTransactions(ctx *fasthttp.RequestCtx) {
	limit := 0
	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n < 0 {
			h.writeError(ctx, "history", invalidInput("limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}

	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	txs, err := h.txs.History(reqCtx, limit)
	if err != nil {
		h.writeError(ctx, "history", err)
		return
	}
	if txs == nil {
		txs = []entity.NormalizedTransaction{}
	}
	h.writeJSON(ctx, fasthttp.StatusOK, txs)
}

func (h *Handler) GetTransaction(ctx *fasthttp.RequestCtx) {
	hash := strings.TrimSpace(pathParam(ctx, "hash"))
	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	status, err := h.txs.Status(reqCtx, hash)
	if err != nil {
		h.writeError(ctx, "status", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, statusResponse{
		TransactionStatus: status,
		ExplorerURL:       h.wallets.Chain().ExplorerTxURL(status.Hash),
	})
}

// PostTransaction takes a transactionRequest body and answers with its response event.
func (h *Handler) PostTransaction(ctx *fasthttp.RequestCtx) {
	var req entity.TransactionRequest
	if err := decodeBody(ctx, &req); err != nil {
		h.writeError(ctx, "send", err)
		return
	}
	events.EnsureRequestID(&req)

	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	resp, err := h.txs.HandleRequest(reqCtx, req)
	if err != nil {
		status := StatusFor(err)
		h.logger.Warn("Transaction request failed",
			zap.String("requestId", req.RequestID), zap.Int("status", status), zap.Error(err),
		)
		h.writeJSON(ctx, status, resp)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

// GetFees estimates the transfer fee for ?tier= (default average).
func (h *Handler) GetFees(ctx *fasthttp.RequestCtx) {
	tier, err := entity.ParseGasTier(string(ctx.QueryArgs().Peek("tier")))
	if err != nil {
		h.writeError(ctx, "fees", invalidInput("%v", err))
		return
	}

	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	fee, err := h.txs.EstimateFee(reqCtx, tier)
	if err != nil {
		h.writeError(ctx, "fees", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, fee)
}

func (h *Handler) GetPrice(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	price, err := h.txs.Price(reqCtx)
	if err != nil {
		h.writeError(ctx, "price", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, price)
}
