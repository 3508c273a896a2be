package cosmos

import (
	"encoding/hex"
	"fmt"
	"strings"

	"miniwallet/internal/domain"
	"miniwallet/internal/pkg/hd"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// DerivationPath is the standard Cosmos Hub account path (coin type 118).
var DerivationPath = hd.MustPath("m/44'/118'/0'/0/0")

// AddressFromPubKey is bech32(prefix, ripemd160(sha256(compressed pubkey))).
func AddressFromPubKey(prefix string, pub *btcec.PublicKey) (string, error) {
	conv, err := bech32.ConvertBits(btcutil.Hash160(pub.SerializeCompressed()), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}
	addr, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("encode bech32 address: %w", err)
	}
	return addr, nil
}

// ValidAddress accepts bech32 account (20 byte) and contract (32 byte) addresses with prefix.
func ValidAddress(prefix, address string) bool {
	if prefix == "" || address == "" {
		return false
	}
	hrp, data, err := bech32.Decode(address)
	if err != nil || hrp != prefix {
		return false
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return false
	}
	return len(raw) == 20 || len(raw) == 32
}

// ParsePrivateKey decodes a 32 byte hex secp256k1 key, with or without 0x.
func ParsePrivateKey(s string) (*btcec.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != btcec.PrivKeyBytesLen {
		return nil, domain.ErrInvalidPrivateKey
	}
	var k btcec.ModNScalar
	if overflow := k.SetByteSlice(raw); overflow || k.IsZero() {
		return nil, domain.ErrInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}

// EncodePrivateKey is the lowercase hex form used in wallet records.
func EncodePrivateKey(priv *btcec.PrivateKey) string {
	return hex.EncodeToString(priv.Serialize())
}

// keyFromMnemonic derives the account key of a phrase.
func keyFromMnemonic(words []string) (*btcec.PrivateKey, error) {
	seed, err := hd.Seed(words)
	if err != nil {
		return nil, err
	}
	return hd.DeriveSecp256k1(seed, DerivationPath)
}
