// Package normalizer turns Cosmos transaction payloads into entity.NormalizedTransaction.
//
// Three payload shapes are tried in order: the decoded message body, the legacy
// per-message log array, and the flat event list. The first one yielding a transfer
// that involves the wallet wins; otherwise the transaction is kept as unknown with a
// zero amount.
package normalizer

import (
	"strings"
	"time"

	"miniwallet/internal/domain/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MinLogAmount is the smallest amount accepted from the legacy log array; smaller
// comma-separated parts are taken for fee line items.
var MinLogAmount = decimal.NewFromInt(1000)

const (
	eventTransfer = "transfer"
	eventFeePay   = "fee_pay"
)

// Normalizer converts raw payloads for one chain.
type Normalizer struct {
	denom  string
	logger *zap.Logger
}

// New returns a normalizer defaulting denoms to denom.
func New(denom string, logger *zap.Logger) *Normalizer {
	return &Normalizer{denom: denom, logger: logger.Named("Normalizer")}
}

// transfer is what one parsing strategy extracted.
type transfer struct {
	direction entity.Direction
	amount    string
	denom     string
	sender    string
	recipient string
}

// Normalize never fails; a payload no strategy understands becomes an unknown transaction.
func (n *Normalizer) Normalize(raw RawTx, wallet string) entity.NormalizedTransaction {
	tx := entity.NormalizedTransaction{
		Hash:      raw.hash(),
		Height:    int64(raw.Height),
		Code:      raw.Code,
		GasUsed:   int64(raw.GasUsed),
		GasWanted: int64(raw.GasWanted),
		Fee:       "0",
		FeeDenom:  n.denom,
		Direction: entity.DirectionUnknown,
		Amount:    "0",
		Denom:     n.denom,
		Raw:       raw.Source(),
	}
	if raw.TxResult != nil {
		tx.Code = raw.TxResult.Code
		tx.GasUsed = int64(raw.TxResult.GasUsed)
		tx.GasWanted = int64(raw.TxResult.GasWanted)
	}
	if raw.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp); err == nil {
			tx.Timestamp = ts
		} else {
			n.logger.Debug("Unparseable timestamp", zap.String("hash", tx.Hash), zap.String("timestamp", raw.Timestamp))
		}
	}

	events := raw.events()
	if fee, ok := n.feeFromEvents(events); ok {
		tx.Fee, tx.FeeDenom = fee.Amount, fee.Denom
	}

	var found *transfer
	if body := raw.body(); body != nil {
		if t := n.fromBody(body, wallet); t != nil {
			found = t
			tx.Memo = body.Memo
			if ai := raw.Tx.AuthInfo; ai != nil && ai.Fee != nil && len(ai.Fee.Amount) > 0 {
				tx.Fee, tx.FeeDenom = ai.Fee.Amount[0].Amount, ai.Fee.Amount[0].Denom
			}
		}
	}
	if found == nil && len(raw.Logs) > 0 {
		found = n.fromLogs(raw.Logs, wallet)
	}
	if found == nil && len(events) > 0 {
		found = n.fromEvents(events, wallet)
	}

	if found == nil {
		n.logger.Debug("No transfer involving wallet", zap.String("hash", tx.Hash))
		return tx
	}
	tx.Direction = found.direction
	tx.Amount = found.amount
	tx.Denom = found.denom
	tx.Sender = found.sender
	tx.Recipient = found.recipient
	return tx
}

// NormalizeAll keeps the input order.
func (n *Normalizer) NormalizeAll(raws []RawTx, wallet string) []entity.NormalizedTransaction {
	out := make([]entity.NormalizedTransaction, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(raw, wallet))
	}
	return out
}

func (n *Normalizer) feeFromEvents(events []Event) (Coin, bool) {
	for _, ev := range events {
		if ev.Type != eventFeePay {
			continue
		}
		for _, attr := range ev.Attributes {
			if attr.Key != "fee" {
				continue
			}
			for _, part := range strings.Split(attr.Value, ",") {
				if c, ok := parseCoin(part); ok {
					return c, true
				}
			}
		}
	}
	return Coin{}, false
}

// fromBody takes the first bank send or delegation that involves the wallet with a non-zero amount.
func (n *Normalizer) fromBody(body *TxBody, wallet string) *transfer {
	for _, msg := range body.Messages {
		var t transfer
		switch msg.Type {
		case TypeMsgSend:
			t.sender, t.recipient = msg.FromAddress, msg.ToAddress
			t.direction = entity.DirectionFor(wallet, t.sender, t.recipient)
		case TypeMsgDelegate:
			t.sender, t.recipient = msg.DelegatorAddress, msg.ValidatorAddress
			if wallet != "" && t.sender == wallet {
				t.direction = entity.DirectionDelegate
			} else {
				t.direction = entity.DirectionUnknown
			}
		default:
			continue
		}

		t.amount, t.denom = "0", n.denom
		if len(msg.Amount) > 0 && msg.Amount[0].Denom != "" && msg.Amount[0].Amount != "" {
			t.amount, t.denom = msg.Amount[0].Amount, msg.Amount[0].Denom
		}
		if t.amount != "0" && t.direction != entity.DirectionUnknown {
			return &t
		}
	}
	return nil
}

// fromLogs takes the first transfer event involving the wallet with an amount of at least MinLogAmount.
func (n *Normalizer) fromLogs(logs []Log, wallet string) *transfer {
	for _, l := range logs {
		for _, ev := range l.Events {
			if ev.Type != eventTransfer {
				continue
			}
			t := n.transferAttributes(ev)
			t.direction = entity.DirectionFor(wallet, t.sender, t.recipient)
			if t.direction == entity.DirectionUnknown {
				continue
			}
			amount, ok := firstAmount(t.amount, t.denom, func(d decimal.Decimal) bool {
				return d.GreaterThanOrEqual(MinLogAmount)
			})
			if !ok {
				continue
			}
			t.amount = amount.String()
			return &t
		}
	}
	return nil
}

// fromEvents picks the largest transfer involving the wallet.
func (n *Normalizer) fromEvents(events []Event, wallet string) *transfer {
	var (
		best    *transfer
		bestAmt decimal.Decimal
	)
	for _, ev := range events {
		if ev.Type != eventTransfer {
			continue
		}
		t := n.transferAttributes(ev)
		t.direction = entity.DirectionFor(wallet, t.sender, t.recipient)
		if t.direction == entity.DirectionUnknown {
			continue
		}
		amount, ok := firstAmount(t.amount, t.denom, decimal.Decimal.IsPositive)
		if !ok || !amount.GreaterThan(bestAmt) {
			continue
		}
		t.amount = amount.String()
		best, bestAmt = &t, amount
	}
	return best
}

func (n *Normalizer) transferAttributes(ev Event) transfer {
	t := transfer{denom: n.denom}
	for _, attr := range ev.Attributes {
		switch attr.Key {
		case "sender":
			t.sender = attr.Value
		case "recipient":
			t.recipient = attr.Value
		case "amount":
			t.amount = attr.Value
		case "denom":
			t.denom = attr.Value
		}
	}
	return t
}

// firstAmount returns the first comma-separated part tagged with denom whose value passes accept.
func firstAmount(raw, denom string, accept func(decimal.Decimal) bool) (decimal.Decimal, bool) {
	if raw == "" || denom == "" {
		return decimal.Zero, false
	}
	for _, part := range strings.Split(raw, ",") {
		value, ok := strings.CutSuffix(strings.TrimSpace(part), denom)
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(value)
		if err != nil || !d.IsInteger() {
			continue
		}
		if accept(d) {
			return d, true
		}
	}
	return decimal.Zero, false
}

// parseCoin splits "5000uatom" into amount and denom.
func parseCoin(s string) (Coin, bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return Coin{}, false
	}
	return Coin{Amount: s[:i], Denom: s[i:]}, true
}
