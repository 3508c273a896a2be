package rpc

import (
	"context"

	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"

	"go.uber.org/zap"
)

var _ domainService.EndpointProber = (*Prober)(nil)

// Prober checks endpoints one by one over raw HTTP JSON-RPC, outside of any connect run.
type Prober struct {
	dialer *HTTPDialer
	logger *zap.Logger
}

func NewProber(dialer *HTTPDialer, logger *zap.Logger) *Prober {
	return &Prober{dialer: dialer, logger: logger.Named("EndpointProber")}
}

func (p *Prober) Probe(ctx context.Context, chain entity.ChainConfig, ep entity.Endpoint) entity.EndpointHealth {
	health := entity.EndpointHealth{Endpoint: ep, Protocol: ep.URL.Protocol()}
	if health.Protocol == entity.ProtocolUnknown {
		health.Class = entity.ErrorClassProtocol
		return health
	}

	client, err := p.dialer.Dial(ctx, ep)
	if err != nil {
		health.Class = Classify(err)
		return health
	}
	defer client.Close()

	latency, err := NewChecker(chain, p.logger).CheckRPC(ctx, client)
	if err != nil {
		p.logger.Debug("Endpoint check failed", zap.String("url", ep.URL.String()), zap.Error(err))
		health.Class = Classify(err)
		return health
	}
	ms := latency.Milliseconds()
	health.Working = true
	health.LatencyMs = &ms
	return health
}
