package rpc

import (
	"context"
	"fmt"

	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
)

// Compile-time check
var _ domainService.RPCClient = (*StubClient)(nil)

// StubClient stands in for a live client once every endpoint failed on a read path.
// Every call fails with domain.ErrDegradedClient; read operations turn that into zero or empty results.
type StubClient struct {
	chain string
}

// NewStubClient returns the degraded client for chain.
func NewStubClient(chain string) *StubClient {
	return &StubClient{chain: chain}
}

func (s *StubClient) Endpoint() entity.Endpoint {
	return entity.Endpoint{Provider: "degraded", ChainID: s.chain}
}

func (s *StubClient) Transport() entity.Transport { return entity.TransportStub }
func (s *StubClient) Close() error                { return nil }

func (s *StubClient) Call(_ context.Context, method string, _ any, _ any) error {
	return fmt.Errorf("%w: %s %s", domain.ErrDegradedClient, s.chain, method)
}

func (s *StubClient) Get(_ context.Context, path string, _ any) error {
	return fmt.Errorf("%w: %s GET %s", domain.ErrDegradedClient, s.chain, path)
}

// IsDegraded reports whether client is the degraded stub.
func IsDegraded(client domainService.RPCClient) bool {
	return client == nil || client.Transport() == entity.TransportStub
}
