package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"miniwallet/internal/pkg/apperrors"
)

var (
	// ErrOriginRejected marks endpoints that refuse the caller's transport or origin:
	// HTTP 403 or a rejected websocket upgrade. These failures trigger the raw JSON-RPC path.
	ErrOriginRejected = errors.New("endpoint rejected the request origin")

	// ErrProtocol marks responses that are not valid for the expected protocol or chain.
	ErrProtocol = errors.New("endpoint protocol violation")
)

// JSONRPCRequest is a JSON-RPC 2.0 request envelope.
type JSONRPCRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// JSONRPCResponse defines the basic structure for a JSON-RPC response.
type JSONRPCResponse struct {
	ID      json.RawMessage `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError defines the structure for a JSON-RPC error. A node answering with an error is
// alive, so this error is never a connectivity failure.
type JSONRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("json-rpc error %d: %s (%s)", e.Code, e.Message, strings.Trim(string(e.Data), `"`))
	}
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// StatusError is a non-200 HTTP answer.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned http status %d", e.URL, e.Code)
}

// Unwrap lets errors.Is see the failure class.
func (e *StatusError) Unwrap() []error {
	if e.Code == 403 {
		return []error{ErrOriginRejected, apperrors.ErrExternalServiceFailure}
	}
	if e.Code == 429 || e.Code >= 500 {
		return []error{apperrors.ErrExternalServiceFailure}
	}
	return []error{ErrProtocol, apperrors.ErrExternalServiceFailure}
}

func newRequest(id uint64, method string, params any) JSONRPCRequest {
	return JSONRPCRequest{Jsonrpc: "2.0", ID: id, Method: method, Params: params}
}

func idMatches(raw json.RawMessage, id uint64) bool {
	return strings.Trim(string(raw), `" `) == strconv.FormatUint(id, 10)
}

// decodeResponse validates a JSON-RPC body and decodes its result into out.
func decodeResponse(url string, body []byte, out any) error {
	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%w: rpc %s returned invalid JSON response: %v", ErrProtocol, url, err)
	}
	return decodeResult(url, rpcResp, out)
}

func decodeResult(url string, rpcResp JSONRPCResponse, out any) error {
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if rpcResp.Jsonrpc != "2.0" || rpcResp.Result == nil {
		return fmt.Errorf("%w: rpc %s returned invalid JSON-RPC structure", ErrProtocol, url)
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], rpcResp.Result...)
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("%w: rpc %s result does not decode: %v", ErrProtocol, url, err)
	}
	return nil
}
