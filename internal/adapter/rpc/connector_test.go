package rpc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"
	"miniwallet/internal/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	ep        entity.Endpoint
	transport entity.Transport
	closed    atomic.Bool
}

func (f *fakeClient) Endpoint() entity.Endpoint                    { return f.ep }
func (f *fakeClient) Transport() entity.Transport                  { return f.transport }
func (f *fakeClient) Call(context.Context, string, any, any) error { return nil }
func (f *fakeClient) Get(context.Context, string, any) error       { return nil }
func (f *fakeClient) Close() error {
	f.closed.Store(true)
	return nil
}

type fakeDialer struct {
	transport entity.Transport
	fail      map[string]error

	mu    sync.Mutex
	dials []string
}

func (d *fakeDialer) Transport() entity.Transport { return d.transport }

func (d *fakeDialer) Dial(ctx context.Context, ep entity.Endpoint) (domainService.RPCClient, error) {
	d.mu.Lock()
	d.dials = append(d.dials, ep.URL.String())
	d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := d.fail[ep.URL.String()]; ok {
		return nil, err
	}
	return &fakeClient{ep: ep, transport: d.transport}, nil
}

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...)
}

type okChecker struct{}

func (okChecker) CheckRPC(context.Context, domainService.RPCClient) (time.Duration, error) {
	return time.Millisecond, nil
}

var (
	urlA = "https://rpc-a.example.com"
	urlB = "https://rpc-b.example.com"
	urlC = "https://rpc-c.example.com"
)

func testChain(urls ...string) entity.ChainConfig {
	eps := make([]entity.Endpoint, 0, len(urls))
	for _, u := range urls {
		eps = append(eps, entity.Endpoint{URL: entity.EndpointURL(u), ChainID: "testhub-1", Kind: entity.EndpointRPC})
	}
	base := entity.ChainConfig{Name: "testhub", ChainID: "testhub-1", Family: entity.FamilyCosmos}
	return entity.NewChainConfig(base, nil, nil, eps, nil, nil)
}

func testOptions(waits *[]time.Duration) Options {
	opts := DefaultOptions()
	opts.Retry.Sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	opts.Intn = func(int) int { return 0 }
	return opts
}

func networkErr(url string) error {
	return fmt.Errorf("%w: dial %s: connection refused", apperrors.ErrExternalServiceFailure, url)
}

func TestConnector_ReachesLastGoodEndpoint(t *testing.T) {
	var waits []time.Duration
	primary := &fakeDialer{
		transport: entity.TransportWebSocket,
		fail:      map[string]error{urlA: networkErr(urlA), urlB: networkErr(urlB)},
	}
	core := NewConnector(testChain(urlA, urlB, urlC), primary, nil, okChecker{}, nil, testOptions(&waits), zap.NewNop())

	client, err := NewSigningConnector(core).Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, urlC, client.Endpoint().URL.String())
	assert.Equal(t, []string{urlA, urlB, urlC}, primary.dialed())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)

	attempts := core.LastAttempts()
	require.Len(t, attempts, 3)
	assert.False(t, attempts[0].Success)
	assert.Equal(t, entity.ErrorClassNetwork, attempts[0].Class)
	assert.True(t, attempts[2].Success)
	assert.Equal(t, 3, attempts[2].Attempt)
}

func TestConnector_CachesClient(t *testing.T) {
	var waits []time.Duration
	primary := &fakeDialer{transport: entity.TransportHTTP}
	core := NewConnector(testChain(urlA), primary, nil, okChecker{}, nil, testOptions(&waits), zap.NewNop())
	read := NewReadOnlyConnector(core)

	first := read.Connect(context.Background())
	second := read.Connect(context.Background())
	assert.Same(t, first, second)
	assert.Len(t, primary.dialed(), 1)

	read.Invalidate(first)
	third := read.Connect(context.Background())
	assert.NotSame(t, first, third)
	assert.Len(t, primary.dialed(), 2)
	assert.True(t, first.(*fakeClient).closed.Load())
}

func TestConnector_AllFail(t *testing.T) {
	fail := map[string]error{urlA: networkErr(urlA), urlB: networkErr(urlB)}

	t.Run("read path degrades", func(t *testing.T) {
		var waits []time.Duration
		primary := &fakeDialer{transport: entity.TransportWebSocket, fail: fail}
		core := NewConnector(testChain(urlA, urlB), primary, nil, okChecker{}, NewMetrics(nil), testOptions(&waits), zap.NewNop())

		client := NewReadOnlyConnector(core).Connect(context.Background())
		require.NotNil(t, client)
		assert.True(t, IsDegraded(client))

		err := client.Call(context.Background(), "status", nil, nil)
		assert.ErrorIs(t, err, domain.ErrDegradedClient)
		assert.Len(t, core.LastAttempts(), 3)
	})

	t.Run("signing path errors", func(t *testing.T) {
		var waits []time.Duration
		primary := &fakeDialer{transport: entity.TransportWebSocket, fail: fail}
		core := NewConnector(testChain(urlA, urlB), primary, nil, okChecker{}, nil, testOptions(&waits), zap.NewNop())

		client, err := NewSigningConnector(core).Connect(context.Background())
		assert.Nil(t, client)
		assert.ErrorIs(t, err, domain.ErrConnectivity)
		assert.ErrorIs(t, err, apperrors.ErrExternalServiceFailure)
	})
}

func TestConnector_RandomSelectionTriesEveryEndpointOnce(t *testing.T) {
	fail := map[string]error{urlA: networkErr(urlA), urlB: networkErr(urlB), urlC: networkErr(urlC)}
	for i := 0; i < 20; i++ {
		var waits []time.Duration
		opts := testOptions(&waits)
		opts.Intn = nil
		primary := &fakeDialer{transport: entity.TransportHTTP, fail: fail}
		core := NewConnector(testChain(urlA, urlB, urlC), primary, nil, okChecker{}, nil, opts, zap.NewNop())

		_, err := NewSigningConnector(core).Connect(context.Background())
		require.Error(t, err)
		assert.ElementsMatch(t, []string{urlA, urlB, urlC}, primary.dialed())
	}
}

func TestConnector_SequentialSelection(t *testing.T) {
	var waits []time.Duration
	opts := testOptions(&waits)
	opts.Selection = SelectSequential
	opts.Retry.MaxAttempts = 4
	primary := &fakeDialer{
		transport: entity.TransportHTTP,
		fail:      map[string]error{urlA: networkErr(urlA), urlB: networkErr(urlB)},
	}
	core := NewConnector(testChain(urlA, urlB), primary, nil, okChecker{}, nil, opts, zap.NewNop())

	_, err := NewSigningConnector(core).Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{urlA, urlB, urlA, urlB}, primary.dialed())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, waits)
}

func TestConnector_OriginRejectionFallsBackToRawHTTP(t *testing.T) {
	var waits []time.Duration
	rejected := func(url string) error {
		return fmt.Errorf("%w: ws upgrade to %s refused (status 403)", ErrOriginRejected, url)
	}
	primary := &fakeDialer{
		transport: entity.TransportWebSocket,
		fail:      map[string]error{urlA: rejected(urlA), urlB: rejected(urlB)},
	}
	fallback := &fakeDialer{
		transport: entity.TransportHTTP,
		fail:      map[string]error{urlA: networkErr(urlA)},
	}
	core := NewConnector(testChain(urlA, urlB), primary, fallback, okChecker{}, NewMetrics(nil), testOptions(&waits), zap.NewNop())

	client, err := NewSigningConnector(core).Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.TransportHTTP, client.Transport())
	assert.Equal(t, urlB, client.Endpoint().URL.String())
	assert.Equal(t, []string{urlA, urlB}, fallback.dialed())

	attempts := core.LastAttempts()
	require.Len(t, attempts, 5)
	assert.Equal(t, entity.ErrorClassCORS, attempts[0].Class)
	assert.Equal(t, entity.TransportHTTP, attempts[4].Transport)
	assert.True(t, attempts[4].Success)
}

func TestConnector_NoFallbackWithoutOriginRejection(t *testing.T) {
	var waits []time.Duration
	primary := &fakeDialer{transport: entity.TransportWebSocket, fail: map[string]error{urlA: networkErr(urlA)}}
	fallback := &fakeDialer{transport: entity.TransportHTTP}
	core := NewConnector(testChain(urlA), primary, fallback, okChecker{}, nil, testOptions(&waits), zap.NewNop())

	_, err := NewSigningConnector(core).Connect(context.Background())
	require.Error(t, err)
	assert.Empty(t, fallback.dialed())
}

func TestConnector_CanceledContextStopsRetrying(t *testing.T) {
	var waits []time.Duration
	primary := &fakeDialer{transport: entity.TransportHTTP}
	core := NewConnector(testChain(urlA, urlB), primary, nil, okChecker{}, nil, testOptions(&waits), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSigningConnector(core).Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, primary.dialed(), 1)
	assert.Empty(t, waits)
}

func TestConnector_NoEndpoints(t *testing.T) {
	core := NewConnector(testChain(), &fakeDialer{}, nil, okChecker{}, nil, DefaultOptions(), zap.NewNop())

	_, err := NewSigningConnector(core).Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoEndpoints)
	assert.ErrorIs(t, err, domain.ErrConnectivity)

	assert.True(t, IsDegraded(NewReadOnlyConnector(core).Connect(context.Background())))
}

func TestConnector_SleepAbortIsReported(t *testing.T) {
	opts := DefaultOptions()
	opts.Intn = func(int) int { return 0 }
	opts.Retry.Sleep = func(context.Context, time.Duration) error { return retry.ErrAborted }
	primary := &fakeDialer{transport: entity.TransportHTTP, fail: map[string]error{urlA: networkErr(urlA)}}
	core := NewConnector(testChain(urlA), primary, nil, okChecker{}, nil, opts, zap.NewNop())

	_, err := NewSigningConnector(core).Connect(context.Background())
	assert.ErrorIs(t, err, retry.ErrAborted)
	assert.Len(t, primary.dialed(), 1)
}
