// Package solana implements a Solana wallet over the node's JSON-RPC.
package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
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

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.ChainAdapter = (*Adapter)(nil)

const commitment = "confirmed"

// Adapter is the Solana wallet. Fees are priced per signature.
type Adapter struct {
	base.Adapter
	logger *zap.Logger
}

func New(
	chain entity.ChainConfig,
	read domainService.ReadOnlyConnector,
	sign domainService.SigningConnector,
	logger *zap.Logger,
) *Adapter {
	log := logger.Named("SolanaAdapter").With(zap.String("chain", chain.Name))
	return &Adapter{Adapter: base.New(chain, read, sign, log), logger: log}
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
	seed, err := hd.Seed(words)
	if err != nil {
		return entity.Credentials{}, err
	}
	key, err := KeyFromSeed(seed)
	if err != nil {
		return entity.Credentials{}, err
	}
	return entity.Credentials{
		Address:    key.PublicKey().String(),
		PrivateKey: key.String(),
		Mnemonic:   words,
	}, nil
}

func (a *Adapter) ImportFromPrivateKey(_ context.Context, key string) (entity.Credentials, error) {
	priv, err := ParsePrivateKey(key)
	if err != nil {
		return entity.Credentials{}, err
	}
	return entity.Credentials{Address: priv.PublicKey().String(), PrivateKey: priv.String()}, nil
}

func (a *Adapter) IsValidAddress(address string) bool {
	return ValidAddress(address)
}

type balanceResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value uint64 `json:"value"`
}

// GetBalance returns lamports.
func (a *Adapter) GetBalance(ctx context.Context, address string) (entity.BalanceReading, error) {
	if !a.IsValidAddress(address) {
		return entity.BalanceReading{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	client := a.Read.Connect(ctx)
	var res balanceResult
	err := client.Call(ctx, "getBalance", []any{address, map[string]string{"commitment": commitment}}, &res)
	if err != nil {
		if a.SwallowReadError(client, "balance", err) {
			return base.DegradedBalance(), nil
		}
		return entity.BalanceReading{}, err
	}
	return entity.BalanceReading{Amount: strconv.FormatUint(res.Value, 10)}, nil
}

type blockhashResult struct {
	Value struct {
		Blockhash            string `json:"blockhash"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	} `json:"value"`
}

// SendTransaction signs a system transfer against a recent blockhash and submits it base64
// encoded. A memo rides along as a memo program instruction signed by the sender.
func (a *Adapter) SendTransaction(ctx context.Context, params entity.SendParams) (entity.SendResult, error) {
	if !a.IsValidAddress(params.To) {
		return entity.SendResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, params.To)
	}
	to := solanago.MustPublicKeyFromBase58(params.To)
	priv, err := ParsePrivateKey(params.PrivateKey)
	if err != nil {
		return entity.SendResult{}, err
	}
	from := priv.PublicKey()
	if params.From != "" && params.From != from.String() {
		return entity.SendResult{}, fmt.Errorf("%w: key does not belong to %s", domain.ErrInvalidPrivateKey, params.From)
	}

	amount, err := a.BaseAmount(params.Amount)
	if err != nil {
		return entity.SendResult{}, err
	}
	lamports := amount.BigInt()
	if !lamports.IsUint64() {
		return entity.SendResult{}, fmt.Errorf("%w: %s lamports out of range", domain.ErrInvalidAmount, amount)
	}
	fee, err := a.EstimateFee(ctx, params.Tier, 0)
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
	var bh blockhashResult
	err = client.Call(ctx, "getLatestBlockhash", []any{map[string]string{"commitment": commitment}}, &bh)
	if err != nil {
		if rpc.IsConnectivity(err) {
			a.Sign.Invalidate(client)
			return entity.SendResult{}, fmt.Errorf("%w: blockhash: %w", domain.ErrConnectivity, err)
		}
		return entity.SendResult{}, err
	}
	recent, err := solanago.HashFromBase58(bh.Value.Blockhash)
	if err != nil {
		return entity.SendResult{}, fmt.Errorf("%w: blockhash %q: %v", rpc.ErrProtocol, bh.Value.Blockhash, err)
	}

	instructions := []solanago.Instruction{
		system.NewTransferInstruction(lamports.Uint64(), from, to).Build(),
	}
	if params.Memo != "" {
		instructions = append(instructions, solanago.NewInstruction(
			solanago.MemoProgramID,
			solanago.AccountMetaSlice{solanago.Meta(from).SIGNER()},
			[]byte(params.Memo),
		))
	}
	tx, err := solanago.NewTransaction(instructions, recent, solanago.TransactionPayer(from))
	if err != nil {
		return entity.SendResult{}, fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(from) {
			return &priv
		}
		return nil
	}); err != nil {
		return entity.SendResult{}, fmt.Errorf("sign transaction: %w", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return entity.SendResult{}, fmt.Errorf("encode transaction: %w", err)
	}

	var signature string
	err = client.Call(ctx, "sendTransaction", []any{
		base64.StdEncoding.EncodeToString(raw),
		map[string]string{"encoding": "base64", "preflightCommitment": commitment},
	}, &signature)
	if err != nil {
		if rpc.IsConnectivity(err) {
			a.Sign.Invalidate(client)
			return entity.SendResult{}, fmt.Errorf("%w: submit: %w", domain.ErrSubmissionFailed, err)
		}
		a.logger.Warn("Node rejected transaction", zap.Error(err))
		if insufficientLamports(err) {
			return entity.SendResult{}, fmt.Errorf("%w: %w: %v", domain.ErrSubmissionFailed, domain.ErrInsufficientFunds, err)
		}
		return entity.SendResult{}, fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
	}
	if signature == "" {
		signature = tx.Signatures[0].String()
	}
	a.logger.Info("Transaction submitted", zap.String("hash", signature), zap.String("to", params.To))
	return entity.SendResult{Hash: signature}, nil
}

// insufficientLamports matches the preflight failures of an underfunded or unknown payer.
func insufficientLamports(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient lamports") ||
		strings.Contains(msg, "insufficient funds") ||
		strings.Contains(msg, "no record of a prior credit")
}

type signatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

type statusesResult struct {
	Value []*signatureStatus `json:"value"`
}

func (a *Adapter) GetTransactionStatus(ctx context.Context, hash string) (entity.TransactionStatus, error) {
	sig, err := solanago.SignatureFromBase58(hash)
	if err != nil {
		return entity.TransactionStatus{}, fmt.Errorf("%w: malformed signature %q", apperrors.ErrInvalidInput, hash)
	}
	status := entity.TransactionStatus{Hash: sig.String(), Status: entity.TxStatusUnknown}

	client := a.Read.Connect(ctx)
	var res statusesResult
	err = client.Call(ctx, "getSignatureStatuses", []any{
		[]string{sig.String()},
		map[string]bool{"searchTransactionHistory": true},
	}, &res)
	if err != nil {
		if a.SwallowReadError(client, "status", err) {
			return status, nil
		}
		return entity.TransactionStatus{}, err
	}
	if len(res.Value) == 0 || res.Value[0] == nil {
		status.Status = entity.TxStatusPending
		return status, nil
	}

	st := res.Value[0]
	status.Height = int64(st.Slot)
	switch {
	case len(st.Err) > 0 && string(st.Err) != "null":
		status.Status = entity.TxStatusFailed
		status.Log = string(st.Err)
	case st.ConfirmationStatus == "processed":
		status.Status = entity.TxStatusPending
	default:
		status.Status = entity.TxStatusSuccess
	}

	if st.Confirmations != nil {
		status.Confirmations = int64(*st.Confirmations)
		return status, nil
	}
	// finalized statuses carry no count; derive it from the current slot
	var slot uint64
	if err := client.Call(ctx, "getSlot", []any{map[string]string{"commitment": commitment}}, &slot); err == nil && slot >= st.Slot {
		status.Confirmations = int64(slot-st.Slot) + 1
	}
	return status, nil
}

// EstimateFee prices gasLimit signatures, one when unset.
func (a *Adapter) EstimateFee(ctx context.Context, tier entity.GasTier, signatures uint64) (entity.FeeEstimate, error) {
	if signatures == 0 {
		signatures = 1
	}
	return a.Adapter.EstimateFee(ctx, tier, signatures)
}

type signatureInfo struct {
	Signature          string          `json:"signature"`
	Slot               int64           `json:"slot"`
	Err                json.RawMessage `json:"err"`
	Memo               *string         `json:"memo"`
	BlockTime          *int64          `json:"blockTime"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

type transactionResult struct {
	Slot      int64  `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Meta      *struct {
		Fee          uint64          `json:"fee"`
		Err          json.RawMessage `json:"err"`
		PreBalances  []uint64        `json:"preBalances"`
		PostBalances []uint64        `json:"postBalances"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

// GetHistory lists recent signatures and reads each transaction's balance changes.
func (a *Adapter) GetHistory(ctx context.Context, address string, limit int) ([]entity.NormalizedTransaction, error) {
	if !a.IsValidAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	if limit <= 0 {
		limit = 20
	}
	client := a.Read.Connect(ctx)

	var sigs []signatureInfo
	err := client.Call(ctx, "getSignaturesForAddress", []any{
		address,
		map[string]any{"limit": limit, "commitment": commitment},
	}, &sigs)
	if err != nil {
		if a.SwallowReadError(client, "history", err) {
			return []entity.NormalizedTransaction{}, nil
		}
		return nil, err
	}

	out := make([]entity.NormalizedTransaction, 0, len(sigs))
	for _, s := range sigs {
		n := entity.NormalizedTransaction{
			Hash:      s.Signature,
			Height:    s.Slot,
			Direction: entity.DirectionUnknown,
			Amount:    "0",
			Fee:       "0",
			Denom:     a.Denom(),
			FeeDenom:  a.Denom(),
		}
		if s.Memo != nil {
			n.Memo = *s.Memo
		}
		if s.BlockTime != nil {
			n.Timestamp = time.Unix(*s.BlockTime, 0).UTC()
		}
		if len(s.Err) > 0 && string(s.Err) != "null" {
			n.Code = 1
		}

		var tx transactionResult
		err := client.Call(ctx, "getTransaction", []any{
			s.Signature,
			map[string]any{"encoding": "json", "commitment": commitment, "maxSupportedTransactionVersion": 0},
		}, &tx)
		if err != nil {
			a.logger.Debug("Transaction lookup failed", zap.String("signature", s.Signature), zap.Error(err))
		} else {
			applyBalanceChange(&n, tx, address)
		}
		out = append(out, n)
	}
	return out, nil
}

// applyBalanceChange reads direction and amount from the wallet's lamport delta. The fee
// payer's delta includes the fee, which is added back for sends.
func applyBalanceChange(n *entity.NormalizedTransaction, tx transactionResult, wallet string) {
	if tx.Meta == nil {
		return
	}
	n.Fee = strconv.FormatUint(tx.Meta.Fee, 10)
	keys := tx.Transaction.Message.AccountKeys
	if len(tx.Meta.PreBalances) != len(keys) || len(tx.Meta.PostBalances) != len(keys) {
		return
	}

	idx := -1
	for i, k := range keys {
		if k == wallet {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	delta := int64(tx.Meta.PostBalances[idx]) - int64(tx.Meta.PreBalances[idx])
	if idx == 0 {
		delta += int64(tx.Meta.Fee)
	}
	switch {
	case delta < 0:
		n.Direction = entity.DirectionSend
		n.Amount = strconv.FormatInt(-delta, 10)
		n.Sender = wallet
		for i, k := range keys {
			if i != idx && tx.Meta.PostBalances[i] > tx.Meta.PreBalances[i] {
				n.Recipient = k
				break
			}
		}
	case delta > 0:
		n.Direction = entity.DirectionReceive
		n.Amount = strconv.FormatInt(delta, 10)
		n.Recipient = wallet
		n.Sender = keys[0]
	}
}
