package http

import (
	"strings"

	"github.com/valyala/fasthttp"
)

func (h *Handler) GetWallet(ctx *fasthttp.RequestCtx) {
	view, err := h.wallets.Current(ctx)
	if err != nil {
		h.writeError(ctx, "getWallet", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, view)
}

func (h *Handler) GenerateWallet(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rec, err := h.wallets.Generate(reqCtx)
	if err != nil {
		h.writeError(ctx, "generateWallet", err)
		return
	}
	view, err := h.wallets.Current(reqCtx)
	if err != nil {
		h.writeError(ctx, "generateWallet", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusCreated, generateResponse{Wallet: view, Mnemonic: rec.Mnemonic})
}

// ImportWallet accepts exactly one of mnemonic or privateKey.
func (h *Handler) ImportWallet(ctx *fasthttp.RequestCtx) {
	var req importRequest
	if err := decodeBody(ctx, &req); err != nil {
		h.writeError(ctx, "importWallet", err)
		return
	}
	mnemonic := strings.TrimSpace(req.Mnemonic)
	key := strings.TrimSpace(req.PrivateKey)
	if (mnemonic == "") == (key == "") {
		h.writeError(ctx, "importWallet", invalidInput("provide either mnemonic or privateKey"))
		return
	}

	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var err error
	if mnemonic != "" {
		_, err = h.wallets.ImportMnemonic(reqCtx, mnemonic)
	} else {
		_, err = h.wallets.ImportPrivateKey(reqCtx, key)
	}
	if err != nil {
		h.writeError(ctx, "importWallet", err)
		return
	}
	view, err := h.wallets.Current(reqCtx)
	if err != nil {
		h.writeError(ctx, "importWallet", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusCreated, view)
}

func (h *Handler) DeleteWallet(ctx *fasthttp.RequestCtx) {
	if err := h.wallets.Reset(ctx); err != nil {
		h.writeError(ctx, "deleteWallet", err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *Handler) GetVerification(ctx *fasthttp.RequestCtx) {
	positions, err := h.wallets.VerificationChallenge(ctx)
	if err != nil {
		h.writeError(ctx, "verificationChallenge", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, challengeResponse{Positions: positions})
}

func (h *Handler) PostVerification(ctx *fasthttp.RequestCtx) {
	var req verifyRequest
	if err := decodeBody(ctx, &req); err != nil {
		h.writeError(ctx, "verify", err)
		return
	}
	if err := h.wallets.Verify(ctx, req.Answers); err != nil {
		h.writeError(ctx, "verify", err)
		return
	}
	view, err := h.wallets.Current(ctx)
	if err != nil {
		h.writeError(ctx, "verify", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, view)
}
