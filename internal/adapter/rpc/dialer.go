package rpc

import (
	"context"
	"time"

	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Dialer produces a client bound to one endpoint.
type Dialer interface {
	Dial(ctx context.Context, ep entity.Endpoint) (domainService.RPCClient, error)
	Transport() entity.Transport
}

// HTTPDialer builds raw JSON-RPC clients. Building one does no I/O; the liveness check does.
type HTTPDialer struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPDialer shares one fasthttp client across all endpoints.
func NewHTTPDialer(timeout time.Duration, logger *zap.Logger) *HTTPDialer {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPDialer{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: timeout,
		logger:  logger,
	}
}

func (d *HTTPDialer) Transport() entity.Transport { return entity.TransportHTTP }

func (d *HTTPDialer) Dial(_ context.Context, ep entity.Endpoint) (domainService.RPCClient, error) {
	return NewHTTPClient(ep, d.client, d.timeout, d.logger), nil
}

// WSDialer opens websocket sessions; REST reads ride on the shared HTTP dialer.
type WSDialer struct {
	path    string
	timeout time.Duration
	rest    *HTTPDialer
	logger  *zap.Logger
}

// NewWSDialer appends path (e.g. "/websocket") to http(s) endpoint URLs.
func NewWSDialer(path string, timeout time.Duration, rest *HTTPDialer, logger *zap.Logger) *WSDialer {
	return &WSDialer{path: path, timeout: timeout, rest: rest, logger: logger}
}

func (d *WSDialer) Transport() entity.Transport { return entity.TransportWebSocket }

func (d *WSDialer) Dial(ctx context.Context, ep entity.Endpoint) (domainService.RPCClient, error) {
	var rest *HTTPClient
	if d.rest != nil {
		rest = NewHTTPClient(ep, d.rest.client, d.rest.timeout, d.logger)
	}
	client, err := DialWS(ctx, ep, d.path, d.timeout, rest, d.logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}
