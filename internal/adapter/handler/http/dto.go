package http

import (
	"miniwallet/internal/domain/entity"
)

type chainResponse struct {
	Name          string                  `json:"chainName"`
	ChainID       string                  `json:"chainId"`
	Family        entity.ChainFamily      `json:"family"`
	Network       entity.NetworkType      `json:"network,omitempty"`
	Symbol        string                  `json:"symbol"`
	Bech32Prefix  string                  `json:"bech32Prefix,omitempty"`
	Transport     entity.Transport        `json:"transport"`
	GasLimit      uint64                  `json:"gasLimit"`
	Current       bool                    `json:"current"`
	Assets        []entity.Asset          `json:"assets"`
	FeeTokens     []entity.FeeToken       `json:"feeTokens"`
	RPC           []entity.Endpoint       `json:"rpc"`
	REST          []entity.Endpoint       `json:"rest,omitempty"`
	Explorers     []entity.Explorer       `json:"explorers,omitempty"`
	EndpointCheck []entity.EndpointHealth `json:"endpointHealth,omitempty"`
}

func toChainResponse(c entity.ChainConfig, current string) chainResponse {
	return chainResponse{
		Name:         c.Name,
		ChainID:      c.ChainID,
		Family:       c.Family,
		Network:      c.Network,
		Symbol:       c.Symbol,
		Bech32Prefix: c.Bech32Prefix,
		Transport:    c.Transport,
		GasLimit:     c.GasLimit,
		Current:      c.Name == current,
		Assets:       c.Assets(),
		FeeTokens:    c.FeeTokens(),
		RPC:          c.Endpoints(entity.EndpointRPC),
		REST:         c.Endpoints(entity.EndpointREST),
		Explorers:    c.Explorers(),
	}
}

type importRequest struct {
	Mnemonic   string `json:"mnemonic"`
	PrivateKey string `json:"privateKey"`
}

// generateResponse is the only response that carries the mnemonic, so the user can back it up.
type generateResponse struct {
	Wallet   entity.WalletView `json:"wallet"`
	Mnemonic []string          `json:"mnemonic"`
}

type challengeResponse struct {
	Positions []int `json:"positions"`
}

type verifyRequest struct {
	Answers map[int]string `json:"answers"`
}

type statusResponse struct {
	entity.TransactionStatus
	ExplorerURL string `json:"explorerUrl,omitempty"`
}
