package chainregistry

import (
	"fmt"
	"strings"

	dto "miniwallet/internal/adapter/storage/chainregistry/dto"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Defaults applied to documents that leave fields out.
var (
	DefaultAverageGasPrice = decimal.RequireFromString("0.025")
	lowGasPriceFactor      = decimal.RequireFromString("0.4")
	highGasPriceFactor     = decimal.RequireFromString("1.6")
)

const (
	DefaultGasLimit      uint64 = 200000
	DefaultWebsocketPath        = "/websocket"
)

// mapNetworkType converts a raw DTO network type to its domain entity counterpart.
func mapNetworkType(rawType dto.NetworkTypeRaw) entity.NetworkType {
	switch rawType {
	case dto.NetworkMainnetRaw, "":
		return entity.NetworkMainnet
	case dto.NetworkTestnetRaw:
		return entity.NetworkTestnet
	default:
		return entity.NetworkType(rawType)
	}
}

func mapFamily(raw string) (entity.ChainFamily, error) {
	switch entity.ChainFamily(strings.ToLower(raw)) {
	case "", entity.FamilyCosmos:
		return entity.FamilyCosmos, nil
	case entity.FamilyBitcoin:
		return entity.FamilyBitcoin, nil
	case entity.FamilySolana:
		return entity.FamilySolana, nil
	}
	return "", fmt.Errorf("unknown chain_family %q", raw)
}

// mapTransport defaults cosmos to websocket. Solana's websocket only serves subscriptions,
// so it defaults to http like bitcoin.
func mapTransport(raw string, family entity.ChainFamily) (entity.Transport, error) {
	switch entity.Transport(strings.ToLower(raw)) {
	case "":
		if family == entity.FamilyCosmos {
			return entity.TransportWebSocket, nil
		}
		return entity.TransportHTTP, nil
	case entity.TransportWebSocket:
		if family == entity.FamilyBitcoin {
			return "", fmt.Errorf("rpc_transport websocket is not supported for bitcoin")
		}
		return entity.TransportWebSocket, nil
	case entity.TransportHTTP:
		return entity.TransportHTTP, nil
	}
	return "", fmt.Errorf("unknown rpc_transport %q", raw)
}

func mapEndpoints(raws []dto.EndpointRaw, chainID string, kind entity.EndpointKind, chain string, logger *zap.Logger) []entity.Endpoint {
	endpoints := make([]entity.Endpoint, 0, len(raws))
	for _, raw := range raws {
		u, err := entity.NewEndpointURL(raw.Address)
		if err != nil {
			if logger != nil {
				logger.Warn("Skipping invalid endpoint URL during mapping",
					zap.String("chain", chain),
					zap.String("kind", string(kind)),
					zap.String("rawUrl", raw.Address),
					zap.Error(err))
			}
			continue
		}
		endpoints = append(endpoints, entity.Endpoint{URL: u, Provider: raw.Provider, ChainID: chainID, Kind: kind})
	}
	return endpoints
}

func mapFeeTokens(raws []dto.FeeTokenRaw, baseDenom string) []entity.FeeToken {
	if len(raws) == 0 {
		raws = []dto.FeeTokenRaw{{Denom: baseDenom}}
	}
	tokens := make([]entity.FeeToken, 0, len(raws))
	for _, raw := range raws {
		avg := DefaultAverageGasPrice
		if raw.AverageGasPrice.Valid {
			avg = raw.AverageGasPrice.Decimal
		}
		t := entity.FeeToken{
			Denom:           raw.Denom,
			AverageGasPrice: avg,
			LowGasPrice:     avg.Mul(lowGasPriceFactor),
			HighGasPrice:    avg.Mul(highGasPriceFactor),
		}
		if raw.LowGasPrice.Valid {
			t.LowGasPrice = raw.LowGasPrice.Decimal
		}
		if raw.HighGasPrice.Valid {
			t.HighGasPrice = raw.HighGasPrice.Decimal
		}
		if raw.FixedMinGasPrice.Valid {
			t.FixedMinGasPrice = raw.FixedMinGasPrice.Decimal
		}
		if t.Denom == "" {
			t.Denom = baseDenom
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func mapAssets(raws []dto.AssetRaw) []entity.Asset {
	assets := make([]entity.Asset, 0, len(raws))
	for _, raw := range raws {
		units := make([]entity.DenomUnit, len(raw.DenomUnits))
		for i, u := range raw.DenomUnits {
			units[i] = entity.DenomUnit{Denom: u.Denom, Exponent: u.Exponent}
		}
		display := raw.Display
		if display == "" {
			display = raw.Base
		}
		assets = append(assets, entity.Asset{
			Base:        raw.Base,
			Display:     display,
			Symbol:      raw.Symbol,
			CoingeckoID: raw.CoingeckoID,
			DenomUnits:  units,
		})
	}
	return assets
}

func mapExplorers(raws []dto.ExplorerRaw) []entity.Explorer {
	explorers := make([]entity.Explorer, 0, len(raws))
	for _, raw := range raws {
		explorers = append(explorers, entity.Explorer{Kind: raw.Kind, URL: raw.URL, TxPage: raw.TxPage})
	}
	return explorers
}

// toDomainChain validates a raw document and fills in defaults. Any returned error wraps
// domain.ErrInvalidChainConfig.
func toDomainChain(raw dto.ChainRaw, logger *zap.Logger) (entity.ChainConfig, error) {
	invalid := func(format string, args ...any) error {
		name := raw.ChainName
		if name == "" {
			name = "<unnamed>"
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrInvalidChainConfig, name, fmt.Sprintf(format, args...))
	}

	if raw.ChainName == "" {
		return entity.ChainConfig{}, invalid("chain_name is required")
	}
	if raw.ChainID == "" {
		return entity.ChainConfig{}, invalid("chain_id is required")
	}
	family, err := mapFamily(raw.ChainFamily)
	if err != nil {
		return entity.ChainConfig{}, invalid("%v", err)
	}
	if family == entity.FamilyCosmos && raw.Bech32Prefix == "" {
		return entity.ChainConfig{}, invalid("bech32_prefix is required for cosmos chains")
	}
	if len(raw.Assets) == 0 || raw.Assets[0].Base == "" {
		return entity.ChainConfig{}, invalid("at least one asset with a base denom is required")
	}
	transport, err := mapTransport(raw.RPCTransport, family)
	if err != nil {
		return entity.ChainConfig{}, invalid("%v", err)
	}

	rpc := mapEndpoints(raw.APIs.RPC, raw.ChainID, entity.EndpointRPC, raw.ChainName, logger)
	rest := mapEndpoints(raw.APIs.REST, raw.ChainID, entity.EndpointREST, raw.ChainName, logger)
	switch {
	case family == entity.FamilyBitcoin && len(rest) == 0:
		return entity.ChainConfig{}, invalid("no valid rest endpoint")
	case family != entity.FamilyBitcoin && len(rpc) == 0:
		return entity.ChainConfig{}, invalid("no valid rpc endpoint")
	}

	wsPath := ""
	if raw.WebsocketPath != nil {
		wsPath = *raw.WebsocketPath
	} else if family == entity.FamilyCosmos {
		wsPath = DefaultWebsocketPath
	}

	gasLimit := raw.GasLimit
	if gasLimit == 0 && family == entity.FamilyCosmos {
		gasLimit = DefaultGasLimit
	}

	symbol := raw.Symbol
	if symbol == "" {
		symbol = raw.Assets[0].Symbol
	}
	if symbol == "" {
		symbol = raw.ChainName
	}

	assets := mapAssets(raw.Assets)
	return entity.NewChainConfig(
		entity.ChainConfig{
			Name:          raw.ChainName,
			ChainID:       raw.ChainID,
			Family:        family,
			Network:       mapNetworkType(raw.NetworkType),
			Symbol:        strings.ToUpper(symbol),
			Bech32Prefix:  raw.Bech32Prefix,
			Transport:     transport,
			WebsocketPath: wsPath,
			Liveness:      raw.Liveness,
			GasLimit:      gasLimit,
		},
		assets,
		mapFeeTokens(raw.Fees.FeeTokens, assets[0].Base),
		rpc, rest,
		mapExplorers(raw.Explorers),
	), nil
}

// toDomainChains maps every document, skipping invalid ones with an Error log so one broken
// chain does not take the others down.
func toDomainChains(raws []dto.ChainRaw, logger *zap.Logger) []entity.ChainConfig {
	if raws == nil {
		return nil
	}
	chains := make([]entity.ChainConfig, 0, len(raws))
	for _, raw := range raws {
		chain, err := toDomainChain(raw, logger)
		if err != nil {
			if logger != nil {
				logger.Error("Skipping invalid chain document", zap.Error(err))
			}
			continue
		}
		chains = append(chains, chain)
	}
	return chains
}
