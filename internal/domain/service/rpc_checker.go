package service

import (
	"context"
	"time"

	"miniwallet/internal/domain/entity"
)

// RPCClient is a live handle bound to a single endpoint.
type RPCClient interface {
	// Endpoint returns the endpoint the client talks to.
	Endpoint() entity.Endpoint

	// Transport reports how the client reaches the endpoint.
	Transport() entity.Transport

	// Call performs a JSON-RPC 2.0 call and decodes the result into result.
	Call(ctx context.Context, method string, params any, result any) error

	// Get performs a REST GET relative to the endpoint and decodes the JSON body into result.
	Get(ctx context.Context, path string, result any) error

	// Close releases the underlying connection.
	Close() error
}

// RPCChecker verifies that a freshly dialed client is alive and serves the expected chain.
type RPCChecker interface {
	CheckRPC(ctx context.Context, client RPCClient) (time.Duration, error)
}

// EndpointProber dials a single endpoint of chain and runs its liveness check.
type EndpointProber interface {
	Probe(ctx context.Context, chain entity.ChainConfig, ep entity.Endpoint) entity.EndpointHealth
}

// ReadOnlyConnector hands out clients for balance and history reads. When every endpoint
// fails it returns a degraded stub client instead of an error.
type ReadOnlyConnector interface {
	Connect(ctx context.Context) RPCClient

	// Invalidate drops a client that failed mid-use so the next Connect dials again.
	Invalidate(client RPCClient)
}

// SigningConnector hands out clients for transaction submission. It never degrades:
// exhaustion is reported as an error wrapping domain.ErrConnectivity.
type SigningConnector interface {
	Connect(ctx context.Context) (RPCClient, error)

	Invalidate(client RPCClient)
}

// PriceFeed quotes assets in USD.
type PriceFeed interface {
	// Price never fails; on upstream errors it returns a fallback quote with Fallback set.
	Price(ctx context.Context, asset entity.Asset) entity.Price
}

// EventTransport carries transactionRequest events in and their responses out.
type EventTransport interface {
	// Requests streams incoming requests until ctx is done or the transport is closed.
	Requests(ctx context.Context) (<-chan entity.TransactionRequest, error)

	// Respond emits the response keyed by its RequestID.
	Respond(ctx context.Context, resp entity.TransactionResponse) error

	Close() error
}
