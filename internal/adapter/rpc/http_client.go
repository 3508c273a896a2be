package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCClient = (*HTTPClient)(nil)

const defaultRequestTimeout = 10 * time.Second

// HTTPClient issues raw JSON-RPC POSTs and REST GETs against one endpoint.
type HTTPClient struct {
	endpoint entity.Endpoint
	baseURL  string
	client   *fasthttp.Client
	timeout  time.Duration
	nextID   atomic.Uint64
	logger   *zap.Logger
}

// NewHTTPClient binds a client to ep. A ws/wss endpoint is addressed over http/https.
func NewHTTPClient(ep entity.Endpoint, client *fasthttp.Client, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if client == nil {
		client = &fasthttp.Client{ReadTimeout: defaultRequestTimeout}
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		endpoint: ep,
		baseURL:  ep.URL.HTTP(),
		client:   client,
		timeout:  timeout,
		logger:   logger.Named("HTTPClient"),
	}
}

func (c *HTTPClient) Endpoint() entity.Endpoint   { return c.endpoint }
func (c *HTTPClient) Transport() entity.Transport { return entity.TransportHTTP }
func (c *HTTPClient) Close() error                { return nil }

// Call performs a JSON-RPC call over HTTP POST.
func (c *HTTPClient) Call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(newRequest(c.nextID.Add(1), method, params))
	if err != nil {
		return fmt.Errorf("%w: encode %s request: %v", apperrors.ErrInvalidInput, method, err)
	}

	body, err := c.do(ctx, fasthttp.MethodPost, c.baseURL, payload)
	if err != nil {
		return err
	}
	return decodeResponse(c.baseURL, body, result)
}

// Get performs a REST GET of path relative to the endpoint.
func (c *HTTPClient) Get(ctx context.Context, path string, result any) error {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	body, err := c.do(ctx, fasthttp.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if raw, ok := result.(*[]byte); ok {
		*raw = body
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %s returned invalid JSON: %v", ErrProtocol, url, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %s: deadline already passed", apperrors.ErrTimeout, url)
	}

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			c.logger.Debug("HTTP request timed out", zap.String("url", url), zap.Duration("timeout", timeout))
			return nil, fmt.Errorf("%w: http request to %s timed out after %v: %v",
				apperrors.ErrTimeout, url, timeout, err,
			)
		}
		c.logger.Debug("HTTP request failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: http request to %s failed: %v", apperrors.ErrExternalServiceFailure, url, err)
	}

	body := resp.Body()
	if bytes.EqualFold(resp.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		unzipped, err := resp.BodyGunzip()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decompress response from %s: %v", ErrProtocol, url, err)
		}
		body = unzipped
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Debug("HTTP request returned non-OK status",
			zap.String("url", url), zap.Int("statusCode", resp.StatusCode()),
		)
		return nil, &StatusError{URL: url, Code: resp.StatusCode(), Body: truncate(body, 512)}
	}

	// resp is released on return
	return append([]byte(nil), body...), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
