package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"strings"

	"miniwallet/internal/domain"
	"miniwallet/internal/pkg/hd"

	solanago "github.com/gagliardetto/solana-go"
)

// DerivationPath is the Phantom/Solflare account path; SLIP-0010 requires all levels hardened.
var DerivationPath = hd.MustPath("m/44'/501'/0'/0'")

// KeyFromSeed turns a BIP39 seed into the account keypair.
func KeyFromSeed(seed []byte) (solanago.PrivateKey, error) {
	priv, err := hd.DeriveEd25519(seed, DerivationPath)
	if err != nil {
		return nil, err
	}
	return solanago.PrivateKey(priv), nil
}

// ParsePrivateKey accepts a base58 64 byte keypair or the solana-keygen JSON byte array.
func ParsePrivateKey(s string) (solanago.PrivateKey, error) {
	s = strings.TrimSpace(s)
	var raw []byte
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, domain.ErrInvalidPrivateKey
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, domain.ErrInvalidPrivateKey
			}
			raw[i] = byte(v)
		}
	} else {
		key, err := solanago.PrivateKeyFromBase58(s)
		if err != nil {
			return nil, domain.ErrInvalidPrivateKey
		}
		raw = key
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, domain.ErrInvalidPrivateKey
	}
	// the second half must be the public key of the first
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived, raw) {
		return nil, domain.ErrInvalidPrivateKey
	}
	return solanago.PrivateKey(raw), nil
}

// ValidAddress accepts a base58 32 byte public key.
func ValidAddress(address string) bool {
	if address == "" || strings.TrimSpace(address) != address {
		return false
	}
	_, err := solanago.PublicKeyFromBase58(address)
	return err == nil
}
