package chainregistry_dto

import "github.com/shopspring/decimal"

// NetworkTypeRaw defines the type for network classifications (e.g., mainnet, testnet) from raw data.
type NetworkTypeRaw string

// Constants for known network types from raw data.
const (
	NetworkMainnetRaw NetworkTypeRaw = "mainnet"
	NetworkTestnetRaw NetworkTypeRaw = "testnet"
)

// ChainRaw is a chain.json document in the cosmos chain-registry layout, extended with the
// fields non-cosmos families need. YAML documents are converted to JSON before decoding.
type ChainRaw struct {
	ChainName     string         `json:"chain_name"`
	ChainID       string         `json:"chain_id"`
	PrettyName    string         `json:"pretty_name,omitempty"`
	ChainFamily   string         `json:"chain_family,omitempty"`
	Symbol        string         `json:"symbol,omitempty"`
	NetworkType   NetworkTypeRaw `json:"network_type,omitempty"`
	Bech32Prefix  string         `json:"bech32_prefix,omitempty"`
	Slip44        int            `json:"slip44,omitempty"`
	RPCTransport  string         `json:"rpc_transport,omitempty"`
	WebsocketPath *string        `json:"websocket_path,omitempty"`
	Liveness      string         `json:"liveness,omitempty"`
	GasLimit      uint64         `json:"gas_limit,omitempty"`
	Fees          FeesRaw        `json:"fees"`
	Assets        []AssetRaw     `json:"assets"`
	APIs          APIsRaw        `json:"apis"`
	Explorers     []ExplorerRaw  `json:"explorers,omitempty"`
}

// FeesRaw lists the tokens fees can be paid in.
type FeesRaw struct {
	FeeTokens []FeeTokenRaw `json:"fee_tokens"`
}

// FeeTokenRaw defines gas prices of one fee denomination; absent prices are defaulted.
type FeeTokenRaw struct {
	Denom            string              `json:"denom"`
	FixedMinGasPrice decimal.NullDecimal `json:"fixed_min_gas_price"`
	LowGasPrice      decimal.NullDecimal `json:"low_gas_price"`
	AverageGasPrice  decimal.NullDecimal `json:"average_gas_price"`
	HighGasPrice     decimal.NullDecimal `json:"high_gas_price"`
}

// AssetRaw defines a token of the chain.
type AssetRaw struct {
	Base        string         `json:"base"`
	Display     string         `json:"display"`
	Name        string         `json:"name,omitempty"`
	Symbol      string         `json:"symbol"`
	CoingeckoID string         `json:"coingecko_id,omitempty"`
	DenomUnits  []DenomUnitRaw `json:"denom_units"`
}

// DenomUnitRaw is one denomination and its exponent.
type DenomUnitRaw struct {
	Denom    string `json:"denom"`
	Exponent int32  `json:"exponent"`
}

// APIsRaw groups endpoint lists by kind.
type APIsRaw struct {
	RPC  []EndpointRaw `json:"rpc"`
	REST []EndpointRaw `json:"rest"`
}

// EndpointRaw is an endpoint address and its operator.
type EndpointRaw struct {
	Address  string `json:"address"`
	Provider string `json:"provider,omitempty"`
}

// ExplorerRaw defines details about a block explorer for a chain from raw data.
type ExplorerRaw struct {
	Kind   string `json:"kind,omitempty"`
	URL    string `json:"url"`
	TxPage string `json:"tx_page,omitempty"`
}
