// Package bitcoin implements a read-mostly wallet for UTXO chains served by an Esplora REST API.
package bitcoin

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"miniwallet/internal/adapter/chain/base"
	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"
	"miniwallet/internal/pkg/hd"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.ChainAdapter = (*Adapter)(nil)

// DefaultTxVSize is the virtual size of a one-input two-output P2WPKH spend.
const DefaultTxVSize uint64 = 141

// confirmation targets, in blocks, that Esplora fee estimates are read at
var tierTargets = map[entity.GasTier]string{
	entity.GasTierHigh:    "1",
	entity.GasTierAverage: "6",
	entity.GasTierLow:     "144",
}

// Adapter is the Bitcoin wallet.
type Adapter struct {
	base.Adapter
	params *chaincfg.Params
	logger *zap.Logger
}

func New(
	chain entity.ChainConfig,
	read domainService.ReadOnlyConnector,
	sign domainService.SigningConnector,
	logger *zap.Logger,
) *Adapter {
	log := logger.Named("BitcoinAdapter").With(zap.String("chain", chain.Name))
	return &Adapter{
		Adapter: base.New(chain, read, sign, log),
		params:  Params(chain.Network),
		logger:  log,
	}
}

func (a *Adapter) Capabilities() domainService.Capabilities {
	return domainService.Capabilities{
		domainService.CapGenerate:     true,
		domainService.CapImportPhrase: true,
		domainService.CapImportKey:    true,
		domainService.CapBalance:      true,
		domainService.CapStatus:       true,
		domainService.CapGasPrice:     true,
		domainService.CapHistory:      true,
	}
}

func (a *Adapter) GenerateWallet(ctx context.Context) (entity.Credentials, error) {
	words, err := hd.NewMnemonic()
	if err != nil {
		return entity.Credentials{}, err
	}
	return a.ImportFromMnemonic(ctx, strings.Join(words, " "))
}

func (a *Adapter) ImportFromMnemonic(_ context.Context, phrase string) (entity.Credentials, error) {
	words := entity.SplitMnemonic(phrase)
	seed, err := hd.Seed(words)
	if err != nil {
		return entity.Credentials{}, err
	}
	priv, err := hd.DeriveSecp256k1(seed, DerivationPath(a.params))
	if err != nil {
		return entity.Credentials{}, err
	}
	creds, err := a.credentials(priv)
	if err != nil {
		return entity.Credentials{}, err
	}
	creds.Mnemonic = words
	return creds, nil
}

func (a *Adapter) ImportFromPrivateKey(_ context.Context, key string) (entity.Credentials, error) {
	priv, err := ParsePrivateKey(key, a.params)
	if err != nil {
		return entity.Credentials{}, err
	}
	return a.credentials(priv)
}

func (a *Adapter) credentials(priv *btcec.PrivateKey) (entity.Credentials, error) {
	addr, err := AddressFromPubKey(priv.PubKey(), a.params)
	if err != nil {
		return entity.Credentials{}, fmt.Errorf("derive address: %w", err)
	}
	wif, err := EncodePrivateKey(priv, a.params)
	if err != nil {
		return entity.Credentials{}, fmt.Errorf("encode key: %w", err)
	}
	return entity.Credentials{Address: addr, PrivateKey: wif}, nil
}

func (a *Adapter) IsValidAddress(address string) bool {
	return ValidAddress(address, a.params)
}

// addressStats is one half of Esplora's /address/{addr} answer.
type addressStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
	TxCount      int64 `json:"tx_count"`
}

type addressInfo struct {
	Address      string       `json:"address"`
	ChainStats   addressStats `json:"chain_stats"`
	MempoolStats addressStats `json:"mempool_stats"`
}

// GetBalance counts confirmed and mempool outputs.
func (a *Adapter) GetBalance(ctx context.Context, address string) (entity.BalanceReading, error) {
	if !a.IsValidAddress(address) {
		return entity.BalanceReading{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	client := a.Read.Connect(ctx)
	var info addressInfo
	if err := client.Get(ctx, "/address/"+address, &info); err != nil {
		if a.SwallowReadError(client, "balance", err) {
			return base.DegradedBalance(), nil
		}
		return entity.BalanceReading{}, err
	}
	sats := info.ChainStats.FundedTxoSum - info.ChainStats.SpentTxoSum +
		info.MempoolStats.FundedTxoSum - info.MempoolStats.SpentTxoSum
	if sats < 0 {
		sats = 0
	}
	return entity.BalanceReading{Amount: strconv.FormatInt(sats, 10)}, nil
}

// SendTransaction needs UTXO selection and PSBT signing, which this wallet does not do.
func (a *Adapter) SendTransaction(context.Context, entity.SendParams) (entity.SendResult, error) {
	return entity.SendResult{}, fmt.Errorf("%w: bitcoin send", domain.ErrAdapterUnimplemented)
}

type txStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	BlockTime   int64  `json:"block_time"`
}

func (a *Adapter) GetTransactionStatus(ctx context.Context, hash string) (entity.TransactionStatus, error) {
	raw, err := hex.DecodeString(hash)
	if err != nil || len(raw) != 32 {
		return entity.TransactionStatus{}, fmt.Errorf("%w: malformed txid %q", apperrors.ErrInvalidInput, hash)
	}
	txid := strings.ToLower(hash)
	status := entity.TransactionStatus{Hash: txid, Status: entity.TxStatusUnknown}

	client := a.Read.Connect(ctx)
	var st txStatus
	if err := client.Get(ctx, "/tx/"+txid+"/status", &st); err != nil {
		var statusErr *rpc.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			status.Status = entity.TxStatusPending
			return status, nil
		}
		if a.SwallowReadError(client, "status", err) {
			return status, nil
		}
		return entity.TransactionStatus{}, err
	}

	if !st.Confirmed {
		status.Status = entity.TxStatusPending
		return status, nil
	}
	status.Status = entity.TxStatusSuccess
	status.Height = st.BlockHeight
	if tip, err := a.tipHeight(ctx, client); err == nil && tip >= st.BlockHeight {
		status.Confirmations = tip - st.BlockHeight + 1
	}
	return status, nil
}

func (a *Adapter) tipHeight(ctx context.Context, client domainService.RPCClient) (int64, error) {
	var body []byte
	if err := client.Get(ctx, "/blocks/tip/height", &body); err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
}

// EstimateFee prices DefaultTxVSize (or gasLimit vbytes) at the node's sat/vB estimate for the
// tier, falling back to the configured rate when the estimate is unavailable.
func (a *Adapter) EstimateFee(ctx context.Context, tier entity.GasTier, gasLimit uint64) (entity.FeeEstimate, error) {
	if tier == "" {
		tier = entity.GasTierAverage
	}
	fee, err := a.Adapter.EstimateFee(ctx, tier, a.vsize(gasLimit))
	if err != nil {
		return entity.FeeEstimate{}, err
	}

	client := a.Read.Connect(ctx)
	var estimates map[string]float64
	if err := client.Get(ctx, "/fee-estimates", &estimates); err != nil {
		a.SwallowReadError(client, "fee-estimates", err)
		return fee, nil
	}
	rate, ok := estimates[tierTargets[tier]]
	if !ok || rate <= 0 {
		return fee, nil
	}
	price := decimal.NewFromFloat(rate)
	fee.GasPrice = price.String()
	fee.Amount = price.Mul(decimal.NewFromInt(int64(fee.GasLimit))).Ceil().String()
	return fee, nil
}

func (a *Adapter) vsize(requested uint64) uint64 {
	if requested > 0 {
		return requested
	}
	if a.Chain().GasLimit > 0 && a.Chain().GasLimit < base.DefaultGasLimit {
		return a.Chain().GasLimit
	}
	return DefaultTxVSize
}

type esploraTx struct {
	TxID string `json:"txid"`
	Vin  []struct {
		Prevout *struct {
			Address string `json:"scriptpubkey_address"`
			Value   int64  `json:"value"`
		} `json:"prevout"`
	} `json:"vin"`
	Vout []struct {
		Address string `json:"scriptpubkey_address"`
		Value   int64  `json:"value"`
	} `json:"vout"`
	Fee    int64    `json:"fee"`
	Weight int64    `json:"weight"`
	Status txStatus `json:"status"`
}

// GetHistory reads /address/{addr}/txs, newest first.
func (a *Adapter) GetHistory(ctx context.Context, address string, limit int) ([]entity.NormalizedTransaction, error) {
	if !a.IsValidAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	if limit <= 0 {
		limit = 20
	}
	client := a.Read.Connect(ctx)
	var txs []esploraTx
	if err := client.Get(ctx, "/address/"+address+"/txs", &txs); err != nil {
		if a.SwallowReadError(client, "history", err) {
			return []entity.NormalizedTransaction{}, nil
		}
		return nil, err
	}
	if len(txs) > limit {
		txs = txs[:limit]
	}
	out := make([]entity.NormalizedTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, a.normalize(tx, address))
	}
	return out, nil
}

// normalize nets the wallet's inputs against its outputs. A spend reports what left the
// wallet excluding change; anything else reports what arrived.
func (a *Adapter) normalize(tx esploraTx, wallet string) entity.NormalizedTransaction {
	n := entity.NormalizedTransaction{
		Hash:      tx.TxID,
		Height:    tx.Status.BlockHeight,
		Fee:       strconv.FormatInt(tx.Fee, 10),
		FeeDenom:  a.Denom(),
		Denom:     a.Denom(),
		Direction: entity.DirectionUnknown,
		Amount:    "0",
	}
	if tx.Status.BlockTime > 0 {
		n.Timestamp = time.Unix(tx.Status.BlockTime, 0).UTC()
	}

	var spent, received, external int64
	var firstSender, firstRecipient string
	for _, in := range tx.Vin {
		if in.Prevout == nil {
			continue
		}
		if in.Prevout.Address == wallet {
			spent += in.Prevout.Value
		} else if firstSender == "" {
			firstSender = in.Prevout.Address
		}
	}
	for _, out := range tx.Vout {
		if out.Address == wallet {
			received += out.Value
			continue
		}
		external += out.Value
		if firstRecipient == "" {
			firstRecipient = out.Address
		}
	}

	switch {
	case spent > 0:
		n.Direction = entity.DirectionSend
		n.Sender = wallet
		n.Recipient = firstRecipient
		n.Amount = strconv.FormatInt(external, 10)
	case received > 0:
		n.Direction = entity.DirectionReceive
		n.Sender = firstSender
		n.Recipient = wallet
		n.Amount = strconv.FormatInt(received, 10)
	}
	return n
}
