package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCChecker = (*Checker)(nil)

// Liveness probes used when a chain document does not name one.
const (
	LivenessCosmos  = "status"
	LivenessSolana  = "getHealth"
	LivenessBitcoin = "GET /blocks/tip/height"
)

// Checker runs a chain's liveness probe against a freshly dialed client.
type Checker struct {
	chainID string
	family  entity.ChainFamily
	probe   string
	logger  *zap.Logger
}

// NewChecker builds the probe for chain. A probe starting with "GET " is a REST path,
// anything else is a JSON-RPC method.
func NewChecker(chain entity.ChainConfig, logger *zap.Logger) *Checker {
	probe := chain.Liveness
	if probe == "" {
		probe = DefaultLiveness(chain.Family)
	}
	return &Checker{
		chainID: chain.ChainID,
		family:  chain.Family,
		probe:   probe,
		logger:  logger.Named("RPCChecker"),
	}
}

// DefaultLiveness returns the probe for a chain family.
func DefaultLiveness(family entity.ChainFamily) string {
	switch family {
	case entity.FamilySolana:
		return LivenessSolana
	case entity.FamilyBitcoin:
		return LivenessBitcoin
	default:
		return LivenessCosmos
	}
}

// statusResult is the part of a Tendermint/CometBFT status answer the probe inspects.
type statusResult struct {
	NodeInfo struct {
		Network string `json:"network"`
	} `json:"node_info"`
	SyncInfo struct {
		LatestBlockHeight string `json:"latest_block_height"`
		CatchingUp        bool   `json:"catching_up"`
	} `json:"sync_info"`
}

// CheckRPC returns the probe latency, or an error when the endpoint is unusable.
func (c *Checker) CheckRPC(ctx context.Context, client domainService.RPCClient) (time.Duration, error) {
	start := time.Now()
	url := client.Endpoint().URL.String()

	if path, ok := strings.CutPrefix(c.probe, "GET "); ok {
		var body []byte
		if err := client.Get(ctx, path, &body); err != nil {
			return time.Since(start), err
		}
		if len(strings.TrimSpace(string(body))) == 0 {
			return time.Since(start), fmt.Errorf("%w: %s returned an empty liveness body", ErrProtocol, url)
		}
		return time.Since(start), nil
	}

	var raw json.RawMessage
	if err := client.Call(ctx, c.probe, nil, &raw); err != nil {
		return time.Since(start), err
	}
	latency := time.Since(start)

	if c.family == entity.FamilyCosmos && c.probe == LivenessCosmos && c.chainID != "" {
		var status statusResult
		if err := json.Unmarshal(raw, &status); err != nil {
			return latency, fmt.Errorf("%w: %s status does not decode: %v", ErrProtocol, url, err)
		}
		if status.NodeInfo.Network != c.chainID {
			c.logger.Debug("Endpoint serves a different chain",
				zap.String("url", url),
				zap.String("expected", c.chainID),
				zap.String("got", status.NodeInfo.Network),
			)
			return latency, fmt.Errorf("%w: %s serves chain %q, expected %q",
				ErrProtocol, url, status.NodeInfo.Network, c.chainID,
			)
		}
	}

	return latency, nil
}
