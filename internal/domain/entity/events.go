package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRequest is the event a UI emits to ask for a transfer.
type TransactionRequest struct {
	RequestID string `json:"requestId"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Memo      string `json:"memo,omitempty"`
	GasTier   string `json:"gasTier,omitempty"`
}

// TransactionResponse answers a TransactionRequest; either Hash or Error is set.
type TransactionResponse struct {
	RequestID string `json:"requestId"`
	Hash      string `json:"hash,omitempty"`
	From      string `json:"from"`
	To        string `json:"to,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Network   string `json:"network,omitempty"`
	Symbol    string `json:"symbol"`
	Error     string `json:"error,omitempty"`
}

// Price is a USD quote for a coin id.
type Price struct {
	ID        string          `json:"id"`
	USD       decimal.Decimal `json:"usd"`
	Fallback  bool            `json:"fallback"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
