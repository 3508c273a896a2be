package http

import (
	"github.com/valyala/fasthttp"
)

// GetChains lists the configured chains.
func (h *Handler) GetChains(ctx *fasthttp.RequestCtx) {
	current := h.wallets.Chain().Name
	chains := h.chains.Chains(ctx)
	out := make([]chainResponse, 0, len(chains))
	for _, c := range chains {
		out = append(out, toChainResponse(c, current))
	}
	h.writeJSON(ctx, fasthttp.StatusOK, out)
}

// GetChain returns one chain with the live state of its endpoints.
func (h *Handler) GetChain(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	name := pathParam(ctx, "name")
	chain, err := h.chains.Chain(reqCtx, name)
	if err != nil {
		h.writeError(ctx, "getChain", err)
		return
	}
	health, err := h.chains.CheckedEndpoints(reqCtx, name)
	if err != nil {
		h.writeError(ctx, "getChain", err)
		return
	}
	out := toChainResponse(chain, h.wallets.Chain().Name)
	out.EndpointCheck = health
	h.writeJSON(ctx, fasthttp.StatusOK, out)
}

// UseChain switches the session to another chain.
func (h *Handler) UseChain(ctx *fasthttp.RequestCtx) {
	chain, err := h.wallets.UseChain(ctx, pathParam(ctx, "name"))
	if err != nil {
		h.writeError(ctx, "useChain", err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, toChainResponse(chain, chain.Name))
}
