package hd

import (
	"encoding/hex"
	"strings"
	"testing"

	"miniwallet/internal/domain"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNewMnemonic_FreshEntropy(t *testing.T) {
	a, err := NewMnemonic()
	require.NoError(t, err)
	b, err := NewMnemonic()
	require.NoError(t, err)

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)

	_, err = Seed(a)
	assert.NoError(t, err)
}

func TestSeed_Invalid(t *testing.T) {
	_, err := Seed(strings.Fields("abandon abandon abandon"))
	assert.ErrorIs(t, err, domain.ErrInvalidMnemonic)

	_, err = Seed(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidMnemonic)

	bad := strings.Fields(testPhrase)
	bad[11] = "abandon"
	_, err = Seed(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidMnemonic)
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("m/44'/118'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, Path{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 118,
		hdkeychain.HardenedKeyStart,
		0,
		0,
	}, p)

	_, err = ParsePath("44'/0")
	assert.Error(t, err)
	_, err = ParsePath("m/x")
	assert.Error(t, err)
}

func TestDeriveEd25519_SLIP10Vector(t *testing.T) {
	// SLIP-0010 test vector 1 for ed25519, chain m/0'.
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	key, err := DeriveEd25519(seed, MustPath("m/0'"))
	require.NoError(t, err)
	assert.Equal(t,
		"68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3",
		hex.EncodeToString(key.Seed()),
	)

	_, err = DeriveEd25519(seed, MustPath("m/0"))
	assert.Error(t, err)
}

func TestDeriveSecp256k1_Deterministic(t *testing.T) {
	seed, err := Seed(strings.Fields(testPhrase))
	require.NoError(t, err)

	a, err := DeriveSecp256k1(seed, MustPath("m/44'/118'/0'/0/0"))
	require.NoError(t, err)
	b, err := DeriveSecp256k1(seed, MustPath("m/44'/118'/0'/0/0"))
	require.NoError(t, err)
	c, err := DeriveSecp256k1(seed, MustPath("m/44'/118'/0'/0/1"))
	require.NoError(t, err)

	assert.Equal(t, a.Serialize(), b.Serialize())
	assert.NotEqual(t, a.Serialize(), c.Serialize())
}
