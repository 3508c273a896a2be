// Package pricefeed quotes assets in USD from a CoinGecko-compatible /simple/price API.
package pricefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"
	"miniwallet/internal/domain/service"
	"miniwallet/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var _ service.PriceFeed = (*Feed)(nil)

// Fallback prices by base denom, used when the upstream cannot answer.
var (
	fallbackPrices = map[string]decimal.Decimal{
		"uatom": decimal.RequireFromString("8.5"),
		"uosmo": decimal.RequireFromString("0.5"),
		"uinit": decimal.RequireFromString("0.1"),
	}
	defaultFallbackPrice = decimal.NewFromInt(1)
)

const defaultTimeout = 5 * time.Second

// FallbackPrice returns the built-in quote for a base denom.
func FallbackPrice(baseDenom string) decimal.Decimal {
	if p, ok := fallbackPrices[baseDenom]; ok {
		return p
	}
	return defaultFallbackPrice
}

type Feed struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	ttl     time.Duration
	cache   domainRepo.CacheRepository
	limiter *rate.Limiter
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a feed caching quotes in cache for cfg.CacheTTL. RateLimit is requests per
// second; zero or less disables limiting.
func New(cfg config.PriceConfig, cache domainRepo.CacheRepository, logger *zap.Logger) *Feed {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Feed{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		timeout: timeout,
		ttl:     cfg.GetCacheTTL(),
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		logger:  logger.Named("PriceFeed"),
	}
}

// Price returns the cached or freshly fetched quote, or the fallback quote on any failure.
func (f *Feed) Price(ctx context.Context, asset entity.Asset) entity.Price {
	id := asset.CoingeckoID
	fallback := entity.Price{ID: id, USD: FallbackPrice(asset.Base), Fallback: true, FetchedAt: f.now()}
	if id == "" {
		return fallback
	}

	if cached, found, err := f.cache.GetPrice(ctx, id); err == nil && found {
		return cached
	}

	usd, err := f.fetch(ctx, id)
	if err != nil {
		f.logger.Warn("Using fallback price", zap.String("id", id), zap.String("denom", asset.Base), zap.Error(err))
		return fallback
	}

	price := entity.Price{ID: id, USD: usd, FetchedAt: f.now()}
	if err := f.cache.SetPrice(ctx, price, f.ttl); err != nil {
		f.logger.Warn("Failed to cache price", zap.String("id", id), zap.Error(err))
	}
	return price
}

func (f *Feed) fetch(ctx context.Context, id string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if err := f.limiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("%w: rate limited: %v", apperrors.ErrTimeout, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	req.SetRequestURI(f.baseURL + "/simple/price?" + q.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := f.client.DoTimeout(req, resp, timeout); err != nil {
		return decimal.Zero, fmt.Errorf("%w: price request: %v", apperrors.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: price api returned status %d", apperrors.ErrExternalServiceFailure, resp.StatusCode())
	}

	body := resp.Body()
	if bytes.EqualFold(resp.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		unzipped, err := resp.BodyGunzip()
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: gunzip price response: %v", apperrors.ErrExternalServiceFailure, err)
		}
		body = unzipped
	}

	var quotes map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &quotes); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode price response: %v", apperrors.ErrExternalServiceFailure, err)
	}
	usd, ok := quotes[id]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no usd quote for %s", apperrors.ErrNotFound, id)
	}
	return usd, nil
}
