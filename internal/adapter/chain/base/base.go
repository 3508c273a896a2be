// Package base holds the behaviour every chain adapter shares: fee tiers, funds checks,
// and the read-path policy of turning connectivity failures into zero results.
package base

import (
	"context"
	"errors"
	"fmt"

	"miniwallet/internal/adapter/rpc"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/units"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultGasLimit applies when neither the caller nor the chain document sets one.
const DefaultGasLimit uint64 = 200000

// Adapter is embedded by the chain family adapters.
type Adapter struct {
	chain  entity.ChainConfig
	Read   domainService.ReadOnlyConnector
	Sign   domainService.SigningConnector
	Logger *zap.Logger
}

// New builds the shared part of an adapter.
func New(
	chain entity.ChainConfig,
	read domainService.ReadOnlyConnector,
	sign domainService.SigningConnector,
	logger *zap.Logger,
) Adapter {
	return Adapter{chain: chain, Read: read, Sign: sign, Logger: logger}
}

func (a *Adapter) Chain() entity.ChainConfig { return a.chain }

// Denom is the base denomination of the primary asset.
func (a *Adapter) Denom() string { return a.chain.BaseDenom() }

// Exponent of the primary asset's display unit.
func (a *Adapter) Exponent() int32 {
	asset, ok := a.chain.PrimaryAsset()
	if !ok {
		return entity.DefaultExponent
	}
	return asset.Exponent()
}

// GasLimit resolves the limit of a transfer.
func (a *Adapter) GasLimit(requested uint64) uint64 {
	switch {
	case requested > 0:
		return requested
	case a.chain.GasLimit > 0:
		return a.chain.GasLimit
	default:
		return DefaultGasLimit
	}
}

func (a *Adapter) GetGasPrice(tier entity.GasTier) (decimal.Decimal, error) {
	token, ok := a.chain.FeeToken()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s has no fee token", domain.ErrInvalidChainConfig, a.chain.Name)
	}
	return token.GasPrice(tier), nil
}

// EstimateFee is ceil(gas price * gas limit) in the fee token's denom.
func (a *Adapter) EstimateFee(_ context.Context, tier entity.GasTier, gasLimit uint64) (entity.FeeEstimate, error) {
	if tier == "" {
		tier = entity.GasTierAverage
	}
	price, err := a.GetGasPrice(tier)
	if err != nil {
		return entity.FeeEstimate{}, err
	}
	token, _ := a.chain.FeeToken()
	limit := a.GasLimit(gasLimit)
	amount := price.Mul(decimal.NewFromInt(int64(limit))).Ceil()
	return entity.FeeEstimate{
		Tier:     tier,
		Amount:   amount.String(),
		Denom:    token.Denom,
		GasPrice: price.String(),
		GasLimit: limit,
	}, nil
}

// BaseAmount converts a display amount and rejects zero.
func (a *Adapter) BaseAmount(display string) (decimal.Decimal, error) {
	base, err := units.DisplayToBase(display, a.Exponent())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, err)
	}
	d, err := units.ParseBase(base)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount %q must be positive", domain.ErrInvalidAmount, display)
	}
	return d, nil
}

// CheckFunds fails when amount plus fee exceeds the last known balance. The fee only counts
// when it is paid in the transferred denom; an empty balance skips the check.
func (a *Adapter) CheckFunds(amount decimal.Decimal, fee entity.FeeEstimate, balance string) error {
	if balance == "" {
		return nil
	}
	have, err := units.ParseBase(balance)
	if err != nil {
		return fmt.Errorf("%w: last known balance: %v", domain.ErrInvalidAmount, err)
	}
	need := amount
	if fee.Denom == a.Denom() {
		feeAmount, err := decimal.NewFromString(fee.Amount)
		if err == nil {
			need = need.Add(feeAmount)
		}
	}
	if need.GreaterThan(have) {
		return fmt.Errorf("%w: need %s%s, have %s%s", domain.ErrInsufficientFunds, need, a.Denom(), have, a.Denom())
	}
	return nil
}

// DegradedBalance is the zero reading returned when a balance read hits no live endpoint.
func DegradedBalance() entity.BalanceReading {
	return entity.BalanceReading{Amount: "0", Degraded: true}
}

// SwallowReadError decides whether a read failure becomes a zero result. Connectivity failures
// are logged at Warn with the endpoint and class, the client is invalidated, and true is returned.
func (a *Adapter) SwallowReadError(client domainService.RPCClient, op string, err error) bool {
	if !rpc.IsConnectivity(err) {
		return false
	}
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("class", string(rpc.Classify(err))),
		zap.Bool("degraded", rpc.IsDegraded(client)),
		zap.Error(err),
	}
	if client != nil {
		fields = append(fields, zap.String("url", client.Endpoint().URL.String()))
	}
	a.Logger.Warn("Read failed, returning empty result", fields...)
	if client != nil && !errors.Is(err, domain.ErrDegradedClient) {
		a.Read.Invalidate(client)
	}
	return true
}
