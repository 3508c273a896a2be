// Package cosmos implements the wallet adapter for bank-module chains over the node's
// Tendermint/CometBFT JSON-RPC.
package cosmos

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"miniwallet/internal/adapter/chain/base"
	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/normalizer"
	"miniwallet/internal/pkg/apperrors"
	"miniwallet/internal/pkg/hd"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.ChainAdapter = (*Adapter)(nil)

// Adapter is the Cosmos bank-module wallet.
type Adapter struct {
	base.Adapter
	prefix     string
	normalizer *normalizer.Normalizer
	logger     *zap.Logger
}

// New builds the adapter for chain; the chain must carry a bech32 prefix.
func New(
	chain entity.ChainConfig,
	read domainService.ReadOnlyConnector,
	sign domainService.SigningConnector,
	logger *zap.Logger,
) (*Adapter, error) {
	if chain.Bech32Prefix == "" {
		return nil, fmt.Errorf("%w: %s has no bech32 prefix", domain.ErrInvalidChainConfig, chain.Name)
	}
	log := logger.Named("CosmosAdapter").With(zap.String("chain", chain.Name))
	return &Adapter{
		Adapter:    base.New(chain, read, sign, log),
		prefix:     chain.Bech32Prefix,
		normalizer: normalizer.New(chain.BaseDenom(), log),
		logger:     log,
	}, nil
}

func (a *Adapter) Capabilities() domainService.Capabilities {
	return domainService.Capabilities{
		domainService.CapGenerate:     true,
		domainService.CapImportPhrase: true,
		domainService.CapImportKey:    true,
		domainService.CapBalance:      true,
		domainService.CapSend:         true,
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
	priv, err := keyFromMnemonic(words)
	if err != nil {
		return entity.Credentials{}, err
	}
	addr, err := AddressFromPubKey(a.prefix, priv.PubKey())
	if err != nil {
		return entity.Credentials{}, err
	}
	return entity.Credentials{Address: addr, PrivateKey: EncodePrivateKey(priv), Mnemonic: words}, nil
}

func (a *Adapter) ImportFromPrivateKey(_ context.Context, key string) (entity.Credentials, error) {
	priv, err := ParsePrivateKey(key)
	if err != nil {
		return entity.Credentials{}, err
	}
	addr, err := AddressFromPubKey(a.prefix, priv.PubKey())
	if err != nil {
		return entity.Credentials{}, err
	}
	return entity.Credentials{Address: addr, PrivateKey: EncodePrivateKey(priv)}, nil
}

func (a *Adapter) IsValidAddress(address string) bool {
	return ValidAddress(a.prefix, address)
}

// abciQueryResult is the node's answer to abci_query; Value is base64 protobuf.
type abciQueryResult struct {
	Response struct {
		Code   uint32 `json:"code"`
		Log    string `json:"log"`
		Value  []byte `json:"value"`
		Height string `json:"height"`
	} `json:"response"`
}

func abciQuery(ctx context.Context, client domainService.RPCClient, path string, data []byte) (abciQueryResult, error) {
	var res abciQueryResult
	params := map[string]any{
		"path":   path,
		"data":   hex.EncodeToString(data),
		"height": "0",
		"prove":  false,
	}
	if err := client.Call(ctx, "abci_query", params, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (a *Adapter) GetBalance(ctx context.Context, address string) (entity.BalanceReading, error) {
	if !a.IsValidAddress(address) {
		return entity.BalanceReading{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	client := a.Read.Connect(ctx)
	res, err := abciQuery(ctx, client, queryPathBalance, encodeBalanceRequest(address, a.Denom()))
	if err != nil {
		if a.SwallowReadError(client, "balance", err) {
			return base.DegradedBalance(), nil
		}
		return entity.BalanceReading{}, err
	}
	if res.Response.Code != 0 {
		return entity.BalanceReading{}, fmt.Errorf("%w: balance query failed with code %d: %s",
			rpc.ErrProtocol, res.Response.Code, res.Response.Log,
		)
	}
	amount, err := decodeBalanceResponse(res.Response.Value)
	if err != nil {
		return entity.BalanceReading{}, fmt.Errorf("%w: decode balance: %v", rpc.ErrProtocol, err)
	}
	return entity.BalanceReading{Amount: amount}, nil
}

func (a *Adapter) account(ctx context.Context, client domainService.RPCClient, address string) (baseAccount, error) {
	res, err := abciQuery(ctx, client, queryPathAccount, encodeAccountRequest(address))
	if err != nil {
		return baseAccount{}, err
	}
	if res.Response.Code != 0 || len(res.Response.Value) == 0 {
		// an account the chain has never seen holds no funds
		return baseAccount{}, fmt.Errorf("%w: account %s not found on chain: %s",
			domain.ErrInsufficientFunds, address, res.Response.Log,
		)
	}
	acc, err := decodeAccountResponse(res.Response.Value)
	if err != nil {
		return baseAccount{}, fmt.Errorf("%w: decode account: %v", rpc.ErrProtocol, err)
	}
	return acc, nil
}

// broadcastResult is the broadcast_tx_sync answer.
type broadcastResult struct {
	Code      uint32 `json:"code"`
	Log       string `json:"log"`
	Codespace string `json:"codespace"`
	Hash      string `json:"hash"`
}

func (a *Adapter) SendTransaction(ctx context.Context, params entity.SendParams) (entity.SendResult, error) {
	if !a.IsValidAddress(params.To) {
		return entity.SendResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, params.To)
	}
	priv, err := ParsePrivateKey(params.PrivateKey)
	if err != nil {
		return entity.SendResult{}, err
	}
	from, err := AddressFromPubKey(a.prefix, priv.PubKey())
	if err != nil {
		return entity.SendResult{}, err
	}
	if params.From != "" && params.From != from {
		return entity.SendResult{}, fmt.Errorf("%w: key does not belong to %s", domain.ErrInvalidPrivateKey, params.From)
	}

	amount, err := a.BaseAmount(params.Amount)
	if err != nil {
		return entity.SendResult{}, err
	}
	fee, err := a.EstimateFee(ctx, params.Tier, params.GasLimit)
	if err != nil {
		return entity.SendResult{}, err
	}
	if err := a.CheckFunds(amount, fee, params.LastKnownBalance); err != nil {
		return entity.SendResult{}, err
	}

	client, err := a.Sign.Connect(ctx)
	if err != nil {
		return entity.SendResult{}, err
	}
	acc, err := a.account(ctx, client, from)
	if err != nil {
		if rpc.IsConnectivity(err) {
			a.Sign.Invalidate(client)
			return entity.SendResult{}, fmt.Errorf("%w: account lookup: %w", domain.ErrConnectivity, err)
		}
		return entity.SendResult{}, err
	}

	msg := encodeAny(normalizer.TypeMsgSend, encodeMsgSend(from, params.To, normalizer.Coin{
		Denom:  a.Denom(),
		Amount: amount.String(),
	}))
	body := encodeTxBody([][]byte{msg}, params.Memo)
	authInfo := encodeAuthInfo(
		priv.PubKey().SerializeCompressed(),
		acc.Sequence,
		normalizer.Coin{Denom: fee.Denom, Amount: fee.Amount},
		fee.GasLimit,
	)
	digest := sha256.Sum256(encodeSignDoc(body, authInfo, a.Chain().ChainID, acc.AccountNumber))
	compact, err := ecdsa.SignCompact(priv, digest[:], true)
	if err != nil {
		return entity.SendResult{}, fmt.Errorf("sign transaction: %w", err)
	}
	// compact signatures lead with the recovery byte; the chain wants r||s
	txBytes := encodeTxRaw(body, authInfo, compact[1:])

	var res broadcastResult
	err = client.Call(ctx, "broadcast_tx_sync", map[string]any{
		"tx": base64.StdEncoding.EncodeToString(txBytes),
	}, &res)
	if err != nil {
		if rpc.IsConnectivity(err) {
			a.Sign.Invalidate(client)
		}
		return entity.SendResult{}, fmt.Errorf("%w: broadcast: %w", domain.ErrSubmissionFailed, err)
	}
	if res.Code != 0 {
		a.logger.Warn("Node rejected transaction",
			zap.Uint32("code", res.Code),
			zap.String("codespace", res.Codespace),
			zap.String("log", res.Log),
		)
		if res.Codespace == "sdk" && (res.Code == codeInsufficientFnd || res.Code == codeInsufficientFee) {
			return entity.SendResult{}, fmt.Errorf("%w: %w: %s", domain.ErrSubmissionFailed, domain.ErrInsufficientFunds, res.Log)
		}
		return entity.SendResult{}, fmt.Errorf("%w: code %d: %s", domain.ErrSubmissionFailed, res.Code, res.Log)
	}

	hash := res.Hash
	if hash == "" {
		sum := sha256.Sum256(txBytes)
		hash = strings.ToUpper(hex.EncodeToString(sum[:]))
	}
	a.logger.Info("Transaction submitted", zap.String("hash", hash), zap.String("to", params.To))
	return entity.SendResult{Hash: hash}, nil
}

// txResult is the node's `tx` answer.
type txResult struct {
	Hash     string `json:"hash"`
	Height   string `json:"height"`
	TxResult struct {
		Code uint32 `json:"code"`
		Log  string `json:"log"`
	} `json:"tx_result"`
}

type statusResult struct {
	SyncInfo struct {
		LatestBlockHeight string `json:"latest_block_height"`
	} `json:"sync_info"`
}

func (a *Adapter) GetTransactionStatus(ctx context.Context, hash string) (entity.TransactionStatus, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	if err != nil || len(raw) != sha256.Size {
		return entity.TransactionStatus{}, fmt.Errorf("%w: malformed transaction hash %q", apperrors.ErrInvalidInput, hash)
	}
	status := entity.TransactionStatus{Hash: strings.ToUpper(hex.EncodeToString(raw)), Status: entity.TxStatusUnknown}

	client := a.Read.Connect(ctx)
	var res txResult
	err = client.Call(ctx, "tx", map[string]any{
		"hash":  base64.StdEncoding.EncodeToString(raw),
		"prove": false,
	}, &res)
	if err != nil {
		var rpcErr *rpc.JSONRPCError
		if errors.As(err, &rpcErr) && strings.Contains(strings.ToLower(rpcErr.Error()), "not found") {
			status.Status = entity.TxStatusPending
			return status, nil
		}
		if a.SwallowReadError(client, "status", err) {
			return status, nil
		}
		return entity.TransactionStatus{}, err
	}

	status.Height, _ = strconv.ParseInt(res.Height, 10, 64)
	status.Code = res.TxResult.Code
	status.Log = res.TxResult.Log
	status.Status = entity.TxStatusSuccess
	if res.TxResult.Code != 0 {
		status.Status = entity.TxStatusFailed
	}

	var st statusResult
	if err := client.Call(ctx, "status", nil, &st); err == nil {
		if latest, err := strconv.ParseInt(st.SyncInfo.LatestBlockHeight, 10, 64); err == nil && status.Height > 0 {
			status.Confirmations = latest - status.Height + 1
		}
	}
	return status, nil
}

// searchResult is the node's tx_search answer; each entry has the RPC tx shape.
type searchResult struct {
	Txs        []json.RawMessage `json:"txs"`
	TotalCount string            `json:"total_count"`
}

func (a *Adapter) search(ctx context.Context, client domainService.RPCClient, query string, limit int) ([]normalizer.RawTx, error) {
	var res searchResult
	err := client.Call(ctx, "tx_search", map[string]any{
		"query":    query,
		"prove":    false,
		"page":     "1",
		"per_page": strconv.Itoa(limit),
		"order_by": "desc",
	}, &res)
	if err != nil {
		return nil, err
	}
	out := make([]normalizer.RawTx, 0, len(res.Txs))
	for _, item := range res.Txs {
		raw, err := normalizer.Parse(item)
		if err != nil {
			a.logger.Debug("Skipping undecodable search result", zap.Error(err))
			continue
		}
		if raw.Tx != nil && raw.Tx.Body == nil && len(raw.Tx.Encoded) > 0 {
			if decoded, err := DecodeTx(raw.Tx.Encoded); err == nil {
				raw.Tx = decoded
			} else {
				a.logger.Debug("Tx bytes do not decode, relying on events", zap.String("hash", raw.Hash), zap.Error(err))
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

// GetHistory merges sent and received transactions, newest first. When one of the two
// searches fails the other one alone is used.
func (a *Adapter) GetHistory(ctx context.Context, address string, limit int) ([]entity.NormalizedTransaction, error) {
	if !a.IsValidAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	if limit <= 0 {
		limit = 20
	}
	client := a.Read.Connect(ctx)

	sent, sentErr := a.search(ctx, client, fmt.Sprintf("message.sender='%s'", address), limit)
	received, recvErr := a.search(ctx, client, fmt.Sprintf("transfer.recipient='%s'", address), limit)
	if sentErr != nil && recvErr != nil {
		if a.SwallowReadError(client, "history", errors.Join(sentErr, recvErr)) {
			return []entity.NormalizedTransaction{}, nil
		}
		return nil, sentErr
	}
	if sentErr != nil {
		a.logger.Debug("Sender search failed, using recipient search only", zap.Error(sentErr))
	}

	seen := make(map[string]bool, len(sent)+len(received))
	var merged []normalizer.RawTx
	for _, raw := range append(sent, received...) {
		key := strings.ToUpper(raw.Hash + raw.TxHash)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, raw)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Height > merged[j].Height })
	if len(merged) > limit {
		merged = merged[:limit]
	}

	a.fillTimestamps(ctx, client, merged)
	return a.normalizer.NormalizeAll(merged, address), nil
}

type blockResult struct {
	Block struct {
		Header struct {
			Time time.Time `json:"time"`
		} `json:"header"`
	} `json:"block"`
}

// fillTimestamps looks up block times once per height; failures leave the timestamp empty.
func (a *Adapter) fillTimestamps(ctx context.Context, client domainService.RPCClient, txs []normalizer.RawTx) {
	times := make(map[int64]string)
	for i := range txs {
		if txs[i].Timestamp != "" || txs[i].Height == 0 {
			continue
		}
		h := int64(txs[i].Height)
		ts, ok := times[h]
		if !ok {
			var res blockResult
			if err := client.Call(ctx, "block", map[string]any{"height": strconv.FormatInt(h, 10)}, &res); err != nil {
				a.logger.Debug("Block lookup failed", zap.Int64("height", h), zap.Error(err))
			} else {
				ts = res.Block.Header.Time.Format(time.RFC3339Nano)
			}
			times[h] = ts
		}
		txs[i].Timestamp = ts
	}
}
