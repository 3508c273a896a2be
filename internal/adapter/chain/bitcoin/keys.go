package bitcoin

import (
	"encoding/hex"
	"strings"

	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	"miniwallet/internal/pkg/hd"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// Params picks the address parameters of the configured network.
func Params(network entity.NetworkType) *chaincfg.Params {
	if network == entity.NetworkTestnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// DerivationPath is BIP84 account 0, first receive address.
func DerivationPath(params *chaincfg.Params) hd.Path {
	if params.Net == chaincfg.MainNetParams.Net {
		return hd.MustPath("m/84'/0'/0'/0/0")
	}
	return hd.MustPath("m/84'/1'/0'/0/0")
}

// AddressFromPubKey returns the native segwit (P2WPKH) address of pub.
func AddressFromPubKey(pub *btcec.PublicKey, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// ValidAddress accepts any standard address type of the network.
func ValidAddress(address string, params *chaincfg.Params) bool {
	if strings.TrimSpace(address) != address || address == "" {
		return false
	}
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return false
	}
	return addr.IsForNet(params)
}

// ParsePrivateKey accepts WIF for the network or 32 bytes of hex.
func ParsePrivateKey(s string, params *chaincfg.Params) (*btcec.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if wif, err := btcutil.DecodeWIF(s); err == nil {
		if !wif.IsForNet(params) {
			return nil, domain.ErrInvalidPrivateKey
		}
		return wif.PrivKey, nil
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
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

// EncodePrivateKey exports the key as compressed WIF.
func EncodePrivateKey(priv *btcec.PrivateKey, params *chaincfg.Params) (string, error) {
	wif, err := btcutil.NewWIF(priv, params, true)
	if err != nil {
		return "", err
	}
	return wif.String(), nil
}
