package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/retry"

	"go.uber.org/zap"
)

// Compile-time checks
var (
	_ domainService.ReadOnlyConnector = (*ReadOnlyConnector)(nil)
	_ domainService.SigningConnector  = (*SigningConnector)(nil)
)

const defaultAttemptTimeout = 10 * time.Second

// Options tune a Connector.
type Options struct {
	Retry          retry.Config
	Selection      Selection
	ClientCacheTTL time.Duration
	// AttemptTimeout bounds dial plus liveness probe of a single attempt.
	AttemptTimeout time.Duration
	// Kind picks the endpoint list of the chain; empty means rpc, falling back to rest.
	Kind entity.EndpointKind
	// Intn replaces the random source of endpoint selection in tests.
	Intn func(int) int
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		Retry:          retry.DefaultConfig(),
		Selection:      SelectRandom,
		ClientCacheTTL: 30 * time.Second,
		AttemptTimeout: defaultAttemptTimeout,
	}
}

// Connector finds a live endpoint of one chain. The primary dialer is retried over
// the endpoint list with exponential backoff; when any attempt was rejected for its
// origin, the raw fallback dialer is tried once per endpoint before giving up.
type Connector struct {
	chain     entity.ChainConfig
	endpoints []entity.Endpoint
	primary   Dialer
	fallback  Dialer
	checker   domainService.RPCChecker
	cache     *clientCache
	metrics   *Metrics
	opts      Options

	mu   sync.Mutex
	last []entity.ConnectionAttemptResult

	logger *zap.Logger
}

// NewConnector builds the shared core. fallback may be nil.
func NewConnector(
	chain entity.ChainConfig,
	primary Dialer,
	fallback Dialer,
	checker domainService.RPCChecker,
	metrics *Metrics,
	opts Options,
	logger *zap.Logger,
) *Connector {
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}
	if opts.ClientCacheTTL <= 0 {
		opts.ClientCacheTTL = 30 * time.Second
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = defaultAttemptTimeout
	}
	if opts.Selection == "" {
		opts.Selection = SelectRandom
	}

	endpoints := chain.Endpoints(opts.Kind)
	if opts.Kind == "" {
		endpoints = chain.Endpoints(entity.EndpointRPC)
		if len(endpoints) == 0 {
			endpoints = chain.Endpoints(entity.EndpointREST)
		}
	}

	log := logger.Named("Connector").With(zap.String("chain", chain.Name))
	return &Connector{
		chain:     chain,
		endpoints: endpoints,
		primary:   primary,
		fallback:  fallback,
		checker:   checker,
		cache:     newClientCache(opts.ClientCacheTTL, log),
		metrics:   metrics,
		opts:      opts,
		logger:    log,
	}
}

// LastAttempts returns the attempts of the most recent connect run that had to dial.
func (c *Connector) LastAttempts() []entity.ConnectionAttemptResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.ConnectionAttemptResult(nil), c.last...)
}

// Invalidate forgets client so the next connect run dials again.
func (c *Connector) Invalidate(client domainService.RPCClient) {
	if client == nil || IsDegraded(client) {
		return
	}
	c.cache.drop(client)
}

// Close releases every cached client.
func (c *Connector) Close() {
	c.cache.flush()
}

func (c *Connector) connect(ctx context.Context) (domainService.RPCClient, error) {
	if len(c.endpoints) == 0 {
		return nil, fmt.Errorf("%w: %w: chain %s", domain.ErrConnectivity, domain.ErrNoEndpoints, c.chain.Name)
	}
	if client, ok := c.cache.lookup(c.endpoints); ok {
		return client, nil
	}

	var (
		attempts []entity.ConnectionAttemptResult
		client   domainService.RPCClient
		sawCORS  bool
	)
	p := newPicker(c.opts.Selection, c.endpoints, c.opts.Intn)

	err := retry.Do(ctx, c.opts.Retry, func(ctx context.Context, attempt int) error {
		ep := p.pick()
		cl, res := c.try(ctx, attempt, ep, c.primary)
		attempts = append(attempts, res)
		if res.Class == entity.ErrorClassCORS {
			sawCORS = true
		}
		if res.Success {
			client = cl
			return nil
		}
		return res.Err
	}, func(err error) bool {
		return Classify(err) != entity.ErrorClassCanceled
	})

	if err != nil && sawCORS && c.fallback != nil && ctx.Err() == nil {
		c.logger.Info("Origin rejected, trying raw fallback", zap.String("transport", string(c.fallback.Transport())))
		for _, ep := range c.endpoints {
			cl, res := c.try(ctx, len(attempts)+1, ep, c.fallback)
			attempts = append(attempts, res)
			if res.Success {
				client = cl
				err = nil
				break
			}
			if res.Class == entity.ErrorClassCanceled {
				break
			}
		}
		c.metrics.observeFallback(c.chain.Name, err == nil)
	}

	c.mu.Lock()
	c.last = attempts
	c.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %d attempts failed: %w", domain.ErrConnectivity, c.chain.Name, len(attempts), err)
	}

	c.logger.Debug("Connected",
		zap.String("url", client.Endpoint().URL.String()),
		zap.String("transport", string(client.Transport())),
		zap.Int("attempts", len(attempts)),
	)
	return c.cache.store(client), nil
}

// try dials ep and runs the liveness probe within the attempt timeout.
func (c *Connector) try(
	ctx context.Context,
	attempt int,
	ep entity.Endpoint,
	dialer Dialer,
) (domainService.RPCClient, entity.ConnectionAttemptResult) {
	res := entity.ConnectionAttemptResult{
		Attempt:   attempt,
		Endpoint:  ep,
		Transport: dialer.Transport(),
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.AttemptTimeout)
	defer cancel()

	start := time.Now()
	client, err := dialer.Dial(attemptCtx, ep)
	if err == nil {
		res.Latency, err = c.checker.CheckRPC(attemptCtx, client)
		if err != nil {
			_ = client.Close()
		}
	}
	if res.Latency == 0 {
		res.Latency = time.Since(start)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: attempt timed out after %s", err, c.opts.AttemptTimeout)
		}
		res.Err = err
		res.Class = Classify(err)
		c.logger.Warn("Endpoint attempt failed",
			zap.Int("attempt", attempt),
			zap.String("url", ep.URL.String()),
			zap.String("transport", string(res.Transport)),
			zap.String("class", string(res.Class)),
			zap.Error(err),
		)
		c.metrics.observeAttempt(c.chain.Name, res)
		return nil, res
	}

	res.Success = true
	c.metrics.observeAttempt(c.chain.Name, res)
	return client, res
}

// ReadOnlyConnector serves balance and history reads. It never fails: when every
// endpoint is down it hands out the degraded stub.
type ReadOnlyConnector struct {
	*Connector
}

// NewReadOnlyConnector wraps core for read paths.
func NewReadOnlyConnector(core *Connector) *ReadOnlyConnector {
	return &ReadOnlyConnector{Connector: core}
}

func (r *ReadOnlyConnector) Connect(ctx context.Context) domainService.RPCClient {
	client, err := r.connect(ctx)
	if err != nil {
		r.logger.Warn("All endpoints failed, serving degraded client", zap.Error(err))
		r.metrics.observeDegraded(r.chain.Name)
		return NewStubClient(r.chain.Name)
	}
	return client
}

// SigningConnector serves transaction submission and reports exhaustion as an error.
type SigningConnector struct {
	*Connector
}

// NewSigningConnector wraps core for submission paths.
func NewSigningConnector(core *Connector) *SigningConnector {
	return &SigningConnector{Connector: core}
}

func (s *SigningConnector) Connect(ctx context.Context) (domainService.RPCClient, error) {
	client, err := s.connect(ctx)
	if err != nil {
		s.logger.Error("No endpoint available for signing", zap.Error(err))
		return nil, err
	}
	return client, nil
}
