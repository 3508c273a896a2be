package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCClient = (*WSClient)(nil)

// WSClient keeps one websocket session to a node and serializes JSON-RPC calls over it.
// REST reads go through a companion HTTPClient on the same host.
type WSClient struct {
	endpoint entity.Endpoint
	url      string
	conn     *websocket.Conn
	rest     *HTTPClient
	timeout  time.Duration
	nextID   atomic.Uint64
	broken   atomic.Bool
	mu       sync.Mutex
	logger   *zap.Logger
}

// DialWS opens a websocket session to ep, appending path to http(s) URLs.
func DialWS(
	ctx context.Context,
	ep entity.Endpoint,
	path string,
	timeout time.Duration,
	rest *HTTPClient,
	logger *zap.Logger,
) (*WSClient, error) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	url := ep.URL.WebSocket(path)
	log := logger.Named("WSClient")

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	log.Debug("Attempting WS connection", zap.String("url", url), zap.Duration("handshakeTimeout", timeout))

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		log.Debug("WS dial failed", zap.String("url", url), zap.Error(err))
		return nil, dialError(ctx, url, resp, err)
	}

	return &WSClient{
		endpoint: ep,
		url:      url,
		conn:     conn,
		rest:     rest,
		timeout:  timeout,
		logger:   log,
	}, nil
}

func dialError(ctx context.Context, url string, resp *http.Response, err error) error {
	if ctxErr := context.Cause(ctx); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: ws dial to %s context timed out: %w", apperrors.ErrTimeout, url, ctxErr)
		}
		return fmt.Errorf("ws dial to %s: %w", url, ctxErr)
	}
	if errors.Is(err, websocket.ErrBadHandshake) {
		if resp == nil {
			return fmt.Errorf("%w: ws upgrade to %s failed: %v", apperrors.ErrExternalServiceFailure, url, err)
		}
		// only 403 counts as an origin rejection; a missing path or a failing node does not
		return fmt.Errorf("ws upgrade refused: %w", &StatusError{URL: url, Code: resp.StatusCode})
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: ws dial to %s timed out: %v", apperrors.ErrTimeout, url, err)
	}
	return fmt.Errorf("%w: ws dial to %s failed: %v", apperrors.ErrExternalServiceFailure, url, err)
}

func (c *WSClient) Endpoint() entity.Endpoint   { return c.endpoint }
func (c *WSClient) Transport() entity.Transport { return entity.TransportWebSocket }

// Alive reports whether the session can still carry calls.
func (c *WSClient) Alive() bool { return !c.broken.Load() }

// Close terminates the session; an in-flight Call fails with a read error.
func (c *WSClient) Close() error {
	c.broken.Store(true)
	return c.conn.Close()
}

// Call sends a request and waits for the response with the matching id, skipping
// unrelated frames such as subscription events.
func (c *WSClient) Call(ctx context.Context, method string, params any, result any) error {
	if c.broken.Load() {
		return fmt.Errorf("%w: ws session to %s is closed", apperrors.ErrExternalServiceFailure, c.url)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("%w: %s: deadline already passed", apperrors.ErrTimeout, c.url)
	}
	deadline := time.Now().Add(timeout)
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	id := c.nextID.Add(1)
	if err := c.conn.WriteJSON(newRequest(id, method, params)); err != nil {
		c.broken.Store(true)
		return c.ioError("write", err)
	}

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.broken.Store(true)
			return c.ioError("read", err)
		}
		var rpcResp JSONRPCResponse
		if err := json.Unmarshal(message, &rpcResp); err != nil {
			return fmt.Errorf("%w: rpc %s returned invalid JSON response: %v", ErrProtocol, c.url, err)
		}
		if !idMatches(rpcResp.ID, id) {
			c.logger.Debug("Skipping unrelated WS frame", zap.String("url", c.url))
			continue
		}
		return decodeResult(c.url, rpcResp, result)
	}
}

// Get delegates REST reads to the companion HTTP client.
func (c *WSClient) Get(ctx context.Context, path string, result any) error {
	if c.rest == nil {
		return fmt.Errorf("%w: no REST transport for %s", apperrors.ErrNotSupported, c.url)
	}
	return c.rest.Get(ctx, path, result)
}

func (c *WSClient) ioError(op string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: ws %s on %s timed out: %v", apperrors.ErrTimeout, op, c.url, err)
	}
	return fmt.Errorf("%w: ws %s on %s failed: %v", apperrors.ErrExternalServiceFailure, op, c.url, err)
}
