package entity

import (
	"encoding/json"
	"time"
)

// Direction of a transaction relative to the wallet's own address.
type Direction string

const (
	DirectionSend     Direction = "send"
	DirectionReceive  Direction = "receive"
	DirectionDelegate Direction = "delegate"
	DirectionUnknown  Direction = "unknown"
)

// DirectionFor compares sender and recipient against the wallet address.
func DirectionFor(wallet, sender, recipient string) Direction {
	switch {
	case wallet == "":
		return DirectionUnknown
	case sender == wallet:
		return DirectionSend
	case recipient == wallet:
		return DirectionReceive
	default:
		return DirectionUnknown
	}
}

// NormalizedTransaction is the chain independent view of a transaction.
type NormalizedTransaction struct {
	Hash      string          `json:"hash"`
	Height    int64           `json:"height"`
	Timestamp time.Time       `json:"timestamp"`
	Code      uint32          `json:"code"`
	GasUsed   int64           `json:"gasUsed"`
	GasWanted int64           `json:"gasWanted"`
	Fee       string          `json:"fee"`
	FeeDenom  string          `json:"feeDenom"`
	Memo      string          `json:"memo"`
	Direction Direction       `json:"type"`
	Amount    string          `json:"amount"`
	Denom     string          `json:"denom"`
	Sender    string          `json:"sender"`
	Recipient string          `json:"recipient"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// TxStatus is the lifecycle state of a submitted transaction.
type TxStatus string

const (
	TxStatusPending TxStatus = "pending"
	TxStatusSuccess TxStatus = "success"
	TxStatusFailed  TxStatus = "failed"
	TxStatusUnknown TxStatus = "unknown"
)

// TransactionStatus is returned by status lookups.
type TransactionStatus struct {
	Hash          string   `json:"hash"`
	Status        TxStatus `json:"status"`
	Confirmations int64    `json:"confirmations"`
	Height        int64    `json:"height,omitempty"`
	Code          uint32   `json:"code,omitempty"`
	Log           string   `json:"log,omitempty"`
}

// SendParams are the inputs of a transfer. Amount is in display units.
type SendParams struct {
	From       string
	To         string
	Amount     string
	Memo       string
	PrivateKey string
	Tier       GasTier
	GasLimit   uint64
	// LastKnownBalance is the atomic-unit balance used for the client side funds check.
	LastKnownBalance string
	Extras           map[string]string
}

// SendResult is returned after a node accepted a transaction.
type SendResult struct {
	Hash string `json:"hash"`
}

// FeeEstimate is a fee in atomic units for one gas tier.
type FeeEstimate struct {
	Tier     GasTier `json:"tier"`
	Amount   string  `json:"amount"`
	Denom    string  `json:"denom"`
	GasPrice string  `json:"gasPrice"`
	GasLimit uint64  `json:"gasLimit"`
}

// BalanceReading is an atomic-unit balance as an adapter read it. Degraded is set when no
// endpoint answered and Amount is the "0" placeholder rather than chain state.
type BalanceReading struct {
	Amount   string
	Degraded bool
}

// Balance of an address with its display and USD renderings.
type Balance struct {
	Address  string `json:"address"`
	Amount   string `json:"amount"`
	Denom    string `json:"denom"`
	Display  string `json:"display"`
	Symbol   string `json:"symbol"`
	USD      string `json:"usd"`
	Degraded bool   `json:"degraded,omitempty"`
}
