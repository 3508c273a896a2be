package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NetworkType defines the type for network classifications (e.g., mainnet, testnet).
type NetworkType string

// Constants for known network types.
const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

// ChainFamily groups chains that share key derivation, address format and RPC dialect.
type ChainFamily string

const (
	FamilyCosmos  ChainFamily = "cosmos"
	FamilyBitcoin ChainFamily = "bitcoin"
	FamilySolana  ChainFamily = "solana"
)

// EndpointKind distinguishes RPC endpoints from REST endpoints.
type EndpointKind string

const (
	EndpointRPC  EndpointKind = "rpc"
	EndpointREST EndpointKind = "rest"
)

// GasTier selects one of the configured gas prices.
type GasTier string

const (
	GasTierLow     GasTier = "low"
	GasTierAverage GasTier = "average"
	GasTierHigh    GasTier = "high"
)

// ParseGasTier maps a caller supplied string to a tier; empty means average.
func ParseGasTier(s string) (GasTier, error) {
	switch GasTier(s) {
	case "", GasTierAverage:
		return GasTierAverage, nil
	case GasTierLow:
		return GasTierLow, nil
	case GasTierHigh:
		return GasTierHigh, nil
	}
	return "", fmt.Errorf("unknown gas tier %q", s)
}

// Endpoint is a node address serving a chain.
type Endpoint struct {
	URL      EndpointURL  `json:"address"`
	Provider string       `json:"provider"`
	ChainID  string       `json:"chainId"`
	Kind     EndpointKind `json:"kind"`
}

// DenomUnit is one denomination of an asset and its exponent relative to the base unit.
type DenomUnit struct {
	Denom    string `json:"denom"`
	Exponent int32  `json:"exponent"`
}

// Asset describes a token of the chain.
type Asset struct {
	Base        string      `json:"base"`
	Display     string      `json:"display"`
	Symbol      string      `json:"symbol"`
	CoingeckoID string      `json:"coingeckoId,omitempty"`
	DenomUnits  []DenomUnit `json:"denomUnits"`
}

// DefaultExponent is used when an asset does not list its display unit.
const DefaultExponent int32 = 6

// Exponent returns the decimal exponent of the display unit.
func (a Asset) Exponent() int32 {
	for _, u := range a.DenomUnits {
		if u.Denom == a.Display {
			return u.Exponent
		}
	}
	return DefaultExponent
}

// FeeToken holds the gas price tiers for one fee denomination.
type FeeToken struct {
	Denom            string          `json:"denom"`
	LowGasPrice      decimal.Decimal `json:"lowGasPrice"`
	AverageGasPrice  decimal.Decimal `json:"averageGasPrice"`
	HighGasPrice     decimal.Decimal `json:"highGasPrice"`
	FixedMinGasPrice decimal.Decimal `json:"fixedMinGasPrice"`
}

// GasPrice returns the price configured for tier, never below the fixed minimum.
func (f FeeToken) GasPrice(tier GasTier) decimal.Decimal {
	var p decimal.Decimal
	switch tier {
	case GasTierLow:
		p = f.LowGasPrice
	case GasTierHigh:
		p = f.HighGasPrice
	default:
		p = f.AverageGasPrice
	}
	if p.LessThan(f.FixedMinGasPrice) {
		return f.FixedMinGasPrice
	}
	return p
}

// Explorer is a block explorer link template.
type Explorer struct {
	Kind   string `json:"kind"`
	URL    string `json:"url"`
	TxPage string `json:"txPage,omitempty"`
}

// ChainConfig is the static description of one chain/network. It is loaded once and never
// mutated afterwards; accessor methods hand out copies of the slices.
type ChainConfig struct {
	Name          string      `json:"chainName"`
	ChainID       string      `json:"chainId"`
	Family        ChainFamily `json:"family"`
	Network       NetworkType `json:"network"`
	Symbol        string      `json:"symbol"`
	Bech32Prefix  string      `json:"bech32Prefix,omitempty"`
	Transport     Transport   `json:"transport"`
	WebsocketPath string      `json:"websocketPath,omitempty"`
	Liveness      string      `json:"liveness"`
	GasLimit      uint64      `json:"gasLimit"`

	assets    []Asset
	feeTokens []FeeToken
	rpc       []Endpoint
	rest      []Endpoint
	explorers []Explorer
}

// NewChainConfig assembles a ChainConfig; slices are copied.
func NewChainConfig(
	base ChainConfig,
	assets []Asset,
	feeTokens []FeeToken,
	rpc, rest []Endpoint,
	explorers []Explorer,
) ChainConfig {
	base.assets = append([]Asset(nil), assets...)
	base.feeTokens = append([]FeeToken(nil), feeTokens...)
	base.rpc = append([]Endpoint(nil), rpc...)
	base.rest = append([]Endpoint(nil), rest...)
	base.explorers = append([]Explorer(nil), explorers...)
	return base
}

// Assets returns a copy of the configured assets.
func (c ChainConfig) Assets() []Asset { return append([]Asset(nil), c.assets...) }

// FeeTokens returns a copy of the configured fee tokens.
func (c ChainConfig) FeeTokens() []FeeToken { return append([]FeeToken(nil), c.feeTokens...) }

// Explorers returns a copy of the configured explorers.
func (c ChainConfig) Explorers() []Explorer { return append([]Explorer(nil), c.explorers...) }

// Endpoints returns a copy of the endpoints of the given kind in document order.
func (c ChainConfig) Endpoints(kind EndpointKind) []Endpoint {
	if kind == EndpointREST {
		return append([]Endpoint(nil), c.rest...)
	}
	return append([]Endpoint(nil), c.rpc...)
}

// PrimaryAsset returns the first asset; ok is false when none is configured.
func (c ChainConfig) PrimaryAsset() (Asset, bool) {
	if len(c.assets) == 0 {
		return Asset{}, false
	}
	return c.assets[0], true
}

// BaseDenom is the atomic unit of the primary asset.
func (c ChainConfig) BaseDenom() string {
	a, _ := c.PrimaryAsset()
	return a.Base
}

// FeeToken returns the fee token for the primary denomination, falling back to the first one.
func (c ChainConfig) FeeToken() (FeeToken, bool) {
	if len(c.feeTokens) == 0 {
		return FeeToken{}, false
	}
	base := c.BaseDenom()
	for _, f := range c.feeTokens {
		if f.Denom == base {
			return f, true
		}
	}
	return c.feeTokens[0], true
}

// ExplorerTxURL renders the transaction page of the first explorer that has one.
func (c ChainConfig) ExplorerTxURL(hash string) string {
	for _, e := range c.explorers {
		if e.TxPage != "" {
			return replaceTxHash(e.TxPage, hash)
		}
	}
	return ""
}

func replaceTxHash(page, hash string) string {
	return strings.ReplaceAll(page, "${txHash}", hash)
}
