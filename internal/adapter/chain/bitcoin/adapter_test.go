package bitcoin

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	// BIP84 reference vector for testPhrase
	vectorAddress = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"
	vectorWIF     = "KyZpNDKnfs94vbrwhJneDi77V6jF64PWPF8x5cdJb8ifgg2DUc9d"
	otherAddress  = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	txid          = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
)

func testChain(network entity.NetworkType, urls ...string) entity.ChainConfig {
	eps := make([]entity.Endpoint, 0, len(urls))
	for _, u := range urls {
		eps = append(eps, entity.Endpoint{URL: entity.EndpointURL(u), Kind: entity.EndpointREST})
	}
	return entity.NewChainConfig(
		entity.ChainConfig{
			Name:      "bitcoin",
			ChainID:   "bitcoin",
			Family:    entity.FamilyBitcoin,
			Network:   network,
			Symbol:    "BTC",
			Transport: entity.TransportHTTP,
		},
		[]entity.Asset{{
			Base:       "sat",
			Display:    "btc",
			Symbol:     "BTC",
			DenomUnits: []entity.DenomUnit{{Denom: "sat", Exponent: 0}, {Denom: "btc", Exponent: 8}},
		}},
		[]entity.FeeToken{{
			Denom:           "sat",
			LowGasPrice:     decimal.NewFromInt(2),
			AverageGasPrice: decimal.NewFromInt(5),
			HighGasPrice:    decimal.NewFromInt(12),
		}},
		nil, eps, nil,
	)
}

func newTestAdapter(t *testing.T, network entity.NetworkType, urls ...string) *Adapter {
	t.Helper()
	logger := zap.NewNop()
	chain := testChain(network, urls...)

	opts := rpc.DefaultOptions()
	opts.Retry.Sleep = func(context.Context, time.Duration) error { return nil }
	core := rpc.NewConnector(chain, rpc.NewHTTPDialer(time.Second, logger), nil, rpc.NewChecker(chain, logger), nil, opts, logger)
	t.Cleanup(core.Close)

	return New(chain, rpc.NewReadOnlyConnector(core), rpc.NewSigningConnector(core), logger)
}

// esplora serves fixed bodies by path; /blocks/tip/height always answers.
func esplora(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blocks/tip/height" {
			if body, ok := routes[r.URL.Path]; ok {
				fmt.Fprint(w, body)
				return
			}
			fmt.Fprint(w, "800004")
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportFromMnemonic_BIP84Vector(t *testing.T) {
	a := newTestAdapter(t, entity.NetworkMainnet)

	creds, err := a.ImportFromMnemonic(context.Background(), testPhrase)
	require.NoError(t, err)
	assert.Equal(t, vectorAddress, creds.Address)
	assert.Equal(t, vectorWIF, creds.PrivateKey)
	assert.Len(t, creds.Mnemonic, 12)

	fromKey, err := a.ImportFromPrivateKey(context.Background(), vectorWIF)
	require.NoError(t, err)
	assert.Equal(t, vectorAddress, fromKey.Address)
}

func TestImportFromMnemonic_Testnet(t *testing.T) {
	a := newTestAdapter(t, entity.NetworkTestnet)

	creds, err := a.ImportFromMnemonic(context.Background(), testPhrase)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(creds.Address, "tb1q"))
	assert.True(t, a.IsValidAddress(creds.Address))
	assert.False(t, newTestAdapter(t, entity.NetworkMainnet).IsValidAddress(creds.Address))
}

func TestImportFromPrivateKey_Hex(t *testing.T) {
	a := newTestAdapter(t, entity.NetworkMainnet)

	priv, err := ParsePrivateKey(vectorWIF, &chaincfg.MainNetParams)
	require.NoError(t, err)

	creds, err := a.ImportFromPrivateKey(context.Background(), hex.EncodeToString(priv.Serialize()))
	require.NoError(t, err)
	assert.Equal(t, vectorAddress, creds.Address)
	assert.Equal(t, vectorWIF, creds.PrivateKey)
}

func TestImportFromPrivateKey_Invalid(t *testing.T) {
	a := newTestAdapter(t, entity.NetworkMainnet)

	priv, err := ParsePrivateKey(vectorWIF, &chaincfg.MainNetParams)
	require.NoError(t, err)
	testnetWIF, err := EncodePrivateKey(priv, &chaincfg.TestNet3Params)
	require.NoError(t, err)

	for _, key := range []string{"", "not-a-key", strings.Repeat("00", 32), testnetWIF} {
		_, err := a.ImportFromPrivateKey(context.Background(), key)
		assert.ErrorIs(t, err, domain.ErrInvalidPrivateKey, key)
	}
}

func TestIsValidAddress(t *testing.T) {
	a := newTestAdapter(t, entity.NetworkMainnet)

	assert.True(t, a.IsValidAddress(vectorAddress))
	assert.True(t, a.IsValidAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
	assert.False(t, a.IsValidAddress(""))
	assert.False(t, a.IsValidAddress(" "+vectorAddress))
	assert.False(t, a.IsValidAddress(vectorAddress[:len(vectorAddress)-1]+"x"))
	assert.False(t, a.IsValidAddress("cosmos1abc"))
}

func TestGetBalance(t *testing.T) {
	srv := esplora(t, map[string]string{
		"/address/" + vectorAddress: `{
			"address": "` + vectorAddress + `",
			"chain_stats": {"funded_txo_sum": 150000, "spent_txo_sum": 50000, "tx_count": 3},
			"mempool_stats": {"funded_txo_sum": 1000, "spent_txo_sum": 0, "tx_count": 1}
		}`,
	})

	balance, err := newTestAdapter(t, entity.NetworkMainnet, srv.URL).GetBalance(context.Background(), vectorAddress)
	require.NoError(t, err)
	assert.Equal(t, entity.BalanceReading{Amount: "101000"}, balance)
}

func TestGetBalance_UnreachableIsZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	balance, err := newTestAdapter(t, entity.NetworkMainnet, url).GetBalance(context.Background(), vectorAddress)
	require.NoError(t, err)
	assert.Equal(t, entity.BalanceReading{Amount: "0", Degraded: true}, balance)
}

func TestGetTransactionStatus(t *testing.T) {
	confirmed := strings.Repeat("ab", 32)
	unconfirmed := strings.Repeat("cd", 32)
	srv := esplora(t, map[string]string{
		"/tx/" + confirmed + "/status":   `{"confirmed": true, "block_height": 800000, "block_hash": "00", "block_time": 1700000000}`,
		"/tx/" + unconfirmed + "/status": `{"confirmed": false}`,
	})
	a := newTestAdapter(t, entity.NetworkMainnet, srv.URL)

	st, err := a.GetTransactionStatus(context.Background(), strings.ToUpper(confirmed))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusSuccess, st.Status)
	assert.Equal(t, int64(800000), st.Height)
	assert.Equal(t, int64(5), st.Confirmations)
	assert.Equal(t, confirmed, st.Hash)

	st, err = a.GetTransactionStatus(context.Background(), unconfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusPending, st.Status)

	st, err = a.GetTransactionStatus(context.Background(), txid)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusPending, st.Status, "unknown txid is reported as not yet seen")

	_, err = a.GetTransactionStatus(context.Background(), "xyz")
	assert.Error(t, err)
}

func TestEstimateFee(t *testing.T) {
	srv := esplora(t, map[string]string{
		"/fee-estimates": `{"1": 20.5, "6": 10, "144": 1.2}`,
	})
	a := newTestAdapter(t, entity.NetworkMainnet, srv.URL)

	fee, err := a.EstimateFee(context.Background(), entity.GasTierHigh, 0)
	require.NoError(t, err)
	assert.Equal(t, "2891", fee.Amount)
	assert.Equal(t, "20.5", fee.GasPrice)
	assert.Equal(t, DefaultTxVSize, fee.GasLimit)
	assert.Equal(t, "sat", fee.Denom)

	fee, err = a.EstimateFee(context.Background(), entity.GasTierAverage, 200)
	require.NoError(t, err)
	assert.Equal(t, "2000", fee.Amount)
}

func TestEstimateFee_FallsBackToConfiguredRate(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	fee, err := newTestAdapter(t, entity.NetworkMainnet, url).EstimateFee(context.Background(), entity.GasTierLow, 0)
	require.NoError(t, err)
	assert.Equal(t, "282", fee.Amount)
	assert.Equal(t, "2", fee.GasPrice)
}

func TestGetHistory(t *testing.T) {
	srv := esplora(t, map[string]string{
		"/address/" + vectorAddress + "/txs": `[
			{
				"txid": "` + strings.Repeat("11", 32) + `",
				"vin": [{"prevout": {"scriptpubkey_address": "` + vectorAddress + `", "value": 100000}}],
				"vout": [
					{"scriptpubkey_address": "` + otherAddress + `", "value": 60000},
					{"scriptpubkey_address": "` + vectorAddress + `", "value": 38590}
				],
				"fee": 1410,
				"status": {"confirmed": true, "block_height": 800003, "block_time": 1700000600}
			},
			{
				"txid": "` + strings.Repeat("22", 32) + `",
				"vin": [{"prevout": {"scriptpubkey_address": "` + otherAddress + `", "value": 200000}}],
				"vout": [{"scriptpubkey_address": "` + vectorAddress + `", "value": 100000}],
				"fee": 900,
				"status": {"confirmed": false}
			}
		]`,
	})

	txs, err := newTestAdapter(t, entity.NetworkMainnet, srv.URL).GetHistory(context.Background(), vectorAddress, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, entity.DirectionSend, txs[0].Direction)
	assert.Equal(t, "60000", txs[0].Amount)
	assert.Equal(t, otherAddress, txs[0].Recipient)
	assert.Equal(t, "1410", txs[0].Fee)
	assert.Equal(t, time.Unix(1700000600, 0).UTC(), txs[0].Timestamp)

	assert.Equal(t, entity.DirectionReceive, txs[1].Direction)
	assert.Equal(t, "100000", txs[1].Amount)
	assert.Equal(t, otherAddress, txs[1].Sender)
	assert.True(t, txs[1].Timestamp.IsZero())
}

func TestSendTransaction_Unimplemented(t *testing.T) {
	a := newTestAdapter(t, entity.NetworkMainnet)
	assert.False(t, a.Capabilities().Has("sendTransaction"))

	_, err := a.SendTransaction(context.Background(), entity.SendParams{To: otherAddress, Amount: "0.001"})
	assert.ErrorIs(t, err, domain.ErrAdapterUnimplemented)
}
