package entity

import (
	"strings"
	"time"
)

// DerivationType records how a wallet's credentials were obtained.
type DerivationType string

const (
	DerivationMnemonic   DerivationType = "mnemonic"
	DerivationPrivateKey DerivationType = "privateKey"
)

// Credentials is what an adapter returns from generate and import operations.
type Credentials struct {
	Address    string
	PrivateKey string
	Mnemonic   []string
}

// WalletRecord is one locally held wallet.
type WalletRecord struct {
	Address    string
	Mnemonic   []string
	PrivateKey string
	CreatedAt  time.Time
	Type       DerivationType
}

// NewWalletRecord builds a record from freshly generated or imported credentials.
func NewWalletRecord(c Credentials, now time.Time) WalletRecord {
	t := DerivationPrivateKey
	if len(c.Mnemonic) > 0 {
		t = DerivationMnemonic
	}
	return WalletRecord{
		Address:    c.Address,
		Mnemonic:   append([]string(nil), c.Mnemonic...),
		PrivateKey: c.PrivateKey,
		CreatedAt:  now.UTC(),
		Type:       t,
	}
}

// HasMnemonic reports whether the record carries a mnemonic phrase.
func (w WalletRecord) HasMnemonic() bool {
	return len(w.Mnemonic) > 0
}

// Phrase joins the mnemonic words with single spaces.
func (w WalletRecord) Phrase() string {
	return strings.Join(w.Mnemonic, " ")
}

// Public strips signing material so the record can be shown or logged.
func (w WalletRecord) Public() WalletView {
	return WalletView{
		Address:     w.Address,
		CreatedAt:   w.CreatedAt,
		Type:        w.Type,
		HasMnemonic: w.HasMnemonic(),
	}
}

// WalletView is the credential-free projection of a WalletRecord.
type WalletView struct {
	Address     string         `json:"address"`
	CreatedAt   time.Time      `json:"createdAt"`
	Type        DerivationType `json:"type"`
	HasMnemonic bool           `json:"hasMnemonic"`
	Verified    bool           `json:"verified"`
	Chain       string         `json:"chain"`
	Symbol      string         `json:"symbol"`
}

// WalletKey is the storage key for a chain symbol, e.g. "atom_wallet".
func WalletKey(symbol string) string {
	return strings.ToLower(symbol) + "_wallet"
}

// SplitMnemonic normalizes whitespace and case of a user supplied phrase.
func SplitMnemonic(phrase string) []string {
	return strings.Fields(strings.ToLower(phrase))
}
