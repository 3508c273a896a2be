package entity

import "time"

// Protocol defines the type for endpoint protocols.
type Protocol string

// Constants for known protocols.
const (
	ProtocolHTTP    Protocol = "http"
	ProtocolHTTPS   Protocol = "https"
	ProtocolWS      Protocol = "ws"
	ProtocolWSS     Protocol = "wss"
	ProtocolUnknown Protocol = "unknown"
)

// ErrorClass is the connector's classification of a failed connection attempt.
type ErrorClass string

const (
	ErrorClassNone     ErrorClass = ""
	ErrorClassCORS     ErrorClass = "cors"
	ErrorClassNetwork  ErrorClass = "network"
	ErrorClassTimeout  ErrorClass = "timeout"
	ErrorClassProtocol ErrorClass = "protocol"
	ErrorClassCanceled ErrorClass = "canceled"
)

// Transport names the way a client talks to an endpoint.
type Transport string

const (
	TransportWebSocket Transport = "websocket"
	TransportHTTP      Transport = "http"
	TransportStub      Transport = "stub"
)

// ConnectionAttemptResult records one endpoint attempt made while connecting.
// It only lives for the duration of a connect run.
type ConnectionAttemptResult struct {
	Attempt   int           `json:"attempt"`
	Endpoint  Endpoint      `json:"endpoint"`
	Transport Transport     `json:"transport"`
	Success   bool          `json:"success"`
	Class     ErrorClass    `json:"class,omitempty"`
	Err       error         `json:"-"`
	Latency   time.Duration `json:"latency"`
}

// EndpointHealth is the outcome of probing one endpoint outside a connect run.
type EndpointHealth struct {
	Endpoint  Endpoint   `json:"endpoint"`
	Protocol  Protocol   `json:"protocol"`
	Working   bool       `json:"working"`
	LatencyMs *int64     `json:"latencyMs,omitempty"`
	Class     ErrorClass `json:"class,omitempty"`
}
