package normalizer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attribute is one key/value pair of an ABCI event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an ABCI event as returned by nodes and LCD gateways.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// Log is one entry of the legacy per-message log array.
type Log struct {
	MsgIndex int     `json:"msg_index"`
	Events   []Event `json:"events"`
}

// Coin is an amount in base units tagged with its denom.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Coins accepts both a coin list (MsgSend) and a single coin (MsgDelegate).
type Coins []Coin

func (c *Coins) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if data[0] == '{' {
		var one Coin
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*c = Coins{one}
		return nil
	}
	var many []Coin
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*c = many
	return nil
}

// Message is the subset of sdk message fields transfers and delegations use.
type Message struct {
	Type             string `json:"@type"`
	FromAddress      string `json:"from_address,omitempty"`
	ToAddress        string `json:"to_address,omitempty"`
	DelegatorAddress string `json:"delegator_address,omitempty"`
	ValidatorAddress string `json:"validator_address,omitempty"`
	Amount           Coins  `json:"amount,omitempty"`
}

// Message type URLs understood by the body parser.
const (
	TypeMsgSend     = "/cosmos.bank.v1beta1.MsgSend"
	TypeMsgDelegate = "/cosmos.staking.v1beta1.MsgDelegate"
)

type TxBody struct {
	Messages []Message `json:"messages"`
	Memo     string    `json:"memo"`
}

type Fee struct {
	Amount   []Coin `json:"amount"`
	GasLimit string `json:"gas_limit"`
}

type AuthInfo struct {
	Fee *Fee `json:"fee"`
}

// Tx is the decoded transaction. Nodes return it as base64 protobuf; then only Encoded is
// set until a decoder fills Body and AuthInfo.
type Tx struct {
	Body     *TxBody   `json:"body,omitempty"`
	AuthInfo *AuthInfo `json:"auth_info,omitempty"`
	Encoded  []byte    `json:"-"`
}

func (t *Tx) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("tx is neither an object nor base64: %w", err)
		}
		*t = Tx{Encoded: raw}
		return nil
	}
	type plain Tx
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Tx(p)
	return nil
}

// Int64 decodes quoted and bare JSON integers.
type Int64 int64

func (n *Int64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*n = Int64(v)
	return nil
}

// TxResult is the execution result in the node's `tx` and `tx_search` answers.
type TxResult struct {
	Code      uint32  `json:"code"`
	Log       string  `json:"log"`
	GasWanted Int64   `json:"gas_wanted"`
	GasUsed   Int64   `json:"gas_used"`
	Events    []Event `json:"events"`
}

// RawTx covers both the LCD tx_response shape and the node RPC shape.
type RawTx struct {
	TxHash    string    `json:"txhash"`
	Hash      string    `json:"hash"`
	Height    Int64     `json:"height"`
	Timestamp string    `json:"timestamp"`
	Code      uint32    `json:"code"`
	GasUsed   Int64     `json:"gas_used"`
	GasWanted Int64     `json:"gas_wanted"`
	Tx        *Tx       `json:"tx"`
	Logs      []Log     `json:"logs"`
	Events    []Event   `json:"events"`
	TxResult  *TxResult `json:"tx_result"`

	source json.RawMessage
}

// Parse decodes one raw transaction and remembers the payload for diagnostics.
func Parse(data []byte) (RawTx, error) {
	var raw RawTx
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawTx{}, fmt.Errorf("decode transaction: %w", err)
	}
	raw.source = append(json.RawMessage(nil), data...)
	return raw, nil
}

// Source returns the payload the transaction was parsed from, if any.
func (r RawTx) Source() json.RawMessage { return r.source }

// WithSource attaches the original payload.
func (r RawTx) WithSource(data []byte) RawTx {
	r.source = append(json.RawMessage(nil), data...)
	return r
}

func (r RawTx) hash() string {
	if r.TxHash != "" {
		return r.TxHash
	}
	return strings.ToUpper(r.Hash)
}

func (r RawTx) events() []Event {
	if len(r.Events) == 0 && r.TxResult != nil {
		return r.TxResult.Events
	}
	return r.Events
}

func (r RawTx) body() *TxBody {
	if r.Tx == nil {
		return nil
	}
	return r.Tx.Body
}
