package cosmos

import (
	"fmt"
	"strings"

	"miniwallet/internal/normalizer"

	"google.golang.org/protobuf/encoding/protowire"
)

// Type URLs of the messages this package encodes or decodes.
const (
	typeURLPubKey       = "/cosmos.crypto.secp256k1.PubKey"
	typeURLBaseAccount  = "/cosmos.auth.v1beta1.BaseAccount"
	signModeDirect      = 1
	queryPathBalance    = "/cosmos.bank.v1beta1.Query/Balance"
	queryPathAccount    = "/cosmos.auth.v1beta1.Query/Account"
	codeInsufficientFee = 13
	codeInsufficientFnd = 5
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage always emits the field, even for an empty embedded message.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeCoin(c normalizer.Coin) []byte {
	var b []byte
	b = appendString(b, 1, c.Denom)
	b = appendString(b, 2, c.Amount)
	return b
}

func encodeAny(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, 1, typeURL)
	b = appendBytes(b, 2, value)
	return b
}

func encodeMsgSend(from, to string, amount normalizer.Coin) []byte {
	var b []byte
	b = appendString(b, 1, from)
	b = appendString(b, 2, to)
	b = appendMessage(b, 3, encodeCoin(amount))
	return b
}

func encodeTxBody(msgs [][]byte, memo string) []byte {
	var b []byte
	for _, m := range msgs {
		b = appendMessage(b, 1, m)
	}
	return appendString(b, 2, memo)
}

func encodeAuthInfo(pubKey []byte, sequence uint64, fee normalizer.Coin, gasLimit uint64) []byte {
	var pk []byte
	pk = appendBytes(pk, 1, pubKey)

	var single []byte
	single = appendVarint(single, 1, signModeDirect)
	var modeInfo []byte
	modeInfo = appendMessage(modeInfo, 1, single)

	var signer []byte
	signer = appendMessage(signer, 1, encodeAny(typeURLPubKey, pk))
	signer = appendMessage(signer, 2, modeInfo)
	signer = appendVarint(signer, 3, sequence)

	var feeMsg []byte
	feeMsg = appendMessage(feeMsg, 1, encodeCoin(fee))
	feeMsg = appendVarint(feeMsg, 2, gasLimit)

	var b []byte
	b = appendMessage(b, 1, signer)
	b = appendMessage(b, 2, feeMsg)
	return b
}

func encodeSignDoc(body, authInfo []byte, chainID string, accountNumber uint64) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	b = appendString(b, 3, chainID)
	b = appendVarint(b, 4, accountNumber)
	return b
}

func encodeTxRaw(body, authInfo, signature []byte) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	b = appendBytes(b, 3, signature)
	return b
}

func encodeBalanceRequest(address, denom string) []byte {
	var b []byte
	b = appendString(b, 1, address)
	b = appendString(b, 2, denom)
	return b
}

func encodeAccountRequest(address string) []byte {
	return appendString(nil, 1, address)
}

// walk visits the length-delimited and varint fields of one message level.
func walk(b []byte, fn func(num protowire.Number, v []byte, u uint64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, v, 0)
			b = b[n:]
		case protowire.VarintType:
			u, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, nil, u)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func decodeCoin(b []byte) (normalizer.Coin, error) {
	var c normalizer.Coin
	err := walk(b, func(num protowire.Number, v []byte, _ uint64) {
		switch num {
		case 1:
			c.Denom = string(v)
		case 2:
			c.Amount = string(v)
		}
	})
	return c, err
}

func decodeAny(b []byte) (typeURL string, value []byte, err error) {
	err = walk(b, func(num protowire.Number, v []byte, _ uint64) {
		switch num {
		case 1:
			typeURL = string(v)
		case 2:
			value = v
		}
	})
	return typeURL, value, err
}

// decodeMessage understands bank sends and delegations; other types keep only their URL.
func decodeMessage(typeURL string, value []byte) (normalizer.Message, error) {
	msg := normalizer.Message{Type: typeURL}
	var errs []error
	var visit func(num protowire.Number, v []byte, _ uint64)
	switch typeURL {
	case normalizer.TypeMsgSend:
		visit = func(num protowire.Number, v []byte, _ uint64) {
			switch num {
			case 1:
				msg.FromAddress = string(v)
			case 2:
				msg.ToAddress = string(v)
			case 3:
				c, err := decodeCoin(v)
				if err != nil {
					errs = append(errs, err)
				}
				msg.Amount = append(msg.Amount, c)
			}
		}
	case normalizer.TypeMsgDelegate:
		visit = func(num protowire.Number, v []byte, _ uint64) {
			switch num {
			case 1:
				msg.DelegatorAddress = string(v)
			case 2:
				msg.ValidatorAddress = string(v)
			case 3:
				c, err := decodeCoin(v)
				if err != nil {
					errs = append(errs, err)
				}
				msg.Amount = normalizer.Coins{c}
			}
		}
	default:
		return msg, nil
	}
	if err := walk(value, visit); err != nil {
		return msg, err
	}
	if len(errs) > 0 {
		return msg, errs[0]
	}
	return msg, nil
}

// DecodeTx expands a TxRaw into the body and fee the normalizer reads.
func DecodeTx(raw []byte) (*normalizer.Tx, error) {
	var bodyBytes, authBytes []byte
	if err := walk(raw, func(num protowire.Number, v []byte, _ uint64) {
		switch num {
		case 1:
			bodyBytes = v
		case 2:
			authBytes = v
		}
	}); err != nil {
		return nil, fmt.Errorf("decode tx raw: %w", err)
	}

	tx := &normalizer.Tx{Body: &normalizer.TxBody{}, Encoded: raw}
	var anys [][]byte
	if err := walk(bodyBytes, func(num protowire.Number, v []byte, _ uint64) {
		switch num {
		case 1:
			anys = append(anys, v)
		case 2:
			tx.Body.Memo = string(v)
		}
	}); err != nil {
		return nil, fmt.Errorf("decode tx body: %w", err)
	}
	for _, a := range anys {
		typeURL, value, err := decodeAny(a)
		if err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		msg, err := decodeMessage(typeURL, value)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", typeURL, err)
		}
		tx.Body.Messages = append(tx.Body.Messages, msg)
	}

	var feeBytes []byte
	if err := walk(authBytes, func(num protowire.Number, v []byte, _ uint64) {
		if num == 2 {
			feeBytes = v
		}
	}); err != nil {
		return nil, fmt.Errorf("decode auth info: %w", err)
	}
	if feeBytes != nil {
		fee := &normalizer.Fee{}
		var errs []error
		if err := walk(feeBytes, func(num protowire.Number, v []byte, u uint64) {
			switch num {
			case 1:
				c, err := decodeCoin(v)
				if err != nil {
					errs = append(errs, err)
				}
				fee.Amount = append(fee.Amount, c)
			case 2:
				fee.GasLimit = fmt.Sprint(u)
			}
		}); err != nil || len(errs) > 0 {
			return nil, fmt.Errorf("decode fee: %w", firstErr(err, errs))
		}
		tx.AuthInfo = &normalizer.AuthInfo{Fee: fee}
	}
	return tx, nil
}

func firstErr(err error, errs []error) error {
	if err != nil {
		return err
	}
	return errs[0]
}

// baseAccount is what send needs from an account query.
type baseAccount struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// decodeAccountResponse unwraps QueryAccountResponse down to the BaseAccount. Module
// accounts embed it one level deep, vesting accounts two levels.
func decodeAccountResponse(b []byte) (baseAccount, error) {
	var anyBytes []byte
	if err := walk(b, func(num protowire.Number, v []byte, _ uint64) {
		if num == 1 {
			anyBytes = v
		}
	}); err != nil {
		return baseAccount{}, err
	}
	typeURL, value, err := decodeAny(anyBytes)
	if err != nil {
		return baseAccount{}, err
	}

	depth := 0
	switch {
	case typeURL == typeURLBaseAccount:
	case strings.Contains(typeURL, "VestingAccount"):
		depth = 2
	default:
		depth = 1
	}
	for ; depth > 0; depth-- {
		var inner []byte
		if err := walk(value, func(num protowire.Number, v []byte, _ uint64) {
			if num == 1 {
				inner = v
			}
		}); err != nil {
			return baseAccount{}, err
		}
		if inner == nil {
			return baseAccount{}, fmt.Errorf("unsupported account type %s", typeURL)
		}
		value = inner
	}

	var acc baseAccount
	err = walk(value, func(num protowire.Number, v []byte, u uint64) {
		switch num {
		case 1:
			acc.Address = string(v)
		case 3:
			acc.AccountNumber = u
		case 4:
			acc.Sequence = u
		}
	})
	return acc, err
}

// decodeBalanceResponse returns the amount of QueryBalanceResponse, "0" when absent.
func decodeBalanceResponse(b []byte) (string, error) {
	var coinBytes []byte
	if err := walk(b, func(num protowire.Number, v []byte, _ uint64) {
		if num == 1 {
			coinBytes = v
		}
	}); err != nil {
		return "", err
	}
	if coinBytes == nil {
		return "0", nil
	}
	c, err := decodeCoin(coinBytes)
	if err != nil {
		return "", err
	}
	if c.Amount == "" {
		return "0", nil
	}
	return c.Amount, nil
}
