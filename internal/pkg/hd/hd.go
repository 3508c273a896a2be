// Package hd wraps mnemonic handling and hierarchical key derivation shared by the adapters.
package hd

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"miniwallet/internal/domain"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits yields 24-word phrases.
const MnemonicEntropyBits = 256

// NewMnemonic draws fresh entropy and returns the phrase words.
func NewMnemonic() ([]string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("encode mnemonic: %w", err)
	}
	return strings.Fields(phrase), nil
}

// Seed validates the phrase against the English wordlist and checksum and returns the BIP39 seed.
func Seed(words []string) ([]byte, error) {
	phrase := strings.Join(words, " ")
	if len(words) == 0 || !bip39.IsMnemonicValid(phrase) {
		return nil, domain.ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMnemonic, err)
	}
	return seed, nil
}

// Path is a parsed derivation path such as m/44'/118'/0'/0/0.
type Path []uint32

// ParsePath parses "m/..." notation; a trailing ' or h marks a hardened index.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("derivation path %q must start with m", s)
	}
	path := make(Path, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h")
		p = strings.TrimRight(p, "'h")
		n, err := strconv.ParseUint(p, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("derivation path %q: bad index %q", s, p)
		}
		idx := uint32(n)
		if hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		path = append(path, idx)
	}
	return path, nil
}

// MustPath is ParsePath for package level constants.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// DeriveSecp256k1 walks a BIP32 path from seed and returns the leaf private key.
func DeriveSecp256k1(seed []byte, path Path) (*btcec.PrivateKey, error) {
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	for _, idx := range path {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
	}
	return key.ECPrivKey()
}

// DeriveEd25519 implements SLIP-0010 for ed25519; every index must be hardened.
func DeriveEd25519(seed []byte, path Path) (ed25519.PrivateKey, error) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chain := sum[:32], sum[32:]

	for _, idx := range path {
		if idx < hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("ed25519 derivation requires hardened indexes, got %d", idx)
		}
		data := make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, idx)

		mac = hmac.New(sha512.New, chain)
		mac.Write(data)
		sum = mac.Sum(nil)
		key, chain = sum[:32], sum[32:]
	}
	return ed25519.NewKeyFromSeed(key), nil
}
