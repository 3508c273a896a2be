package rpc

import (
	"time"

	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// clientCache keeps recently verified clients keyed by endpoint URL. Expired or
// replaced clients are closed.
type clientCache struct {
	c      *cache.Cache
	logger *zap.Logger
}

func newClientCache(ttl time.Duration, logger *zap.Logger) *clientCache {
	c := cache.New(ttl, ttl*2)
	cc := &clientCache{c: c, logger: logger}
	c.OnEvicted(func(key string, v any) {
		client, ok := v.(domainService.RPCClient)
		if !ok {
			return
		}
		if err := client.Close(); err != nil {
			cc.logger.Debug("Closing evicted client failed", zap.String("url", key), zap.Error(err))
		}
	})
	return cc
}

// lookup returns the first cached client among endpoints, in their order.
func (cc *clientCache) lookup(endpoints []entity.Endpoint) (domainService.RPCClient, bool) {
	for _, ep := range endpoints {
		if v, found := cc.c.Get(ep.URL.String()); found {
			client, ok := v.(domainService.RPCClient)
			if !ok {
				continue
			}
			if a, ok := client.(interface{ Alive() bool }); ok && !a.Alive() {
				cc.c.Delete(ep.URL.String())
				continue
			}
			return client, true
		}
	}
	return nil, false
}

// store caches client unless another connect run already cached one for the same URL,
// in which case client is closed and the cached one is returned.
func (cc *clientCache) store(client domainService.RPCClient) domainService.RPCClient {
	key := client.Endpoint().URL.String()
	if err := cc.c.Add(key, client, cache.DefaultExpiration); err == nil {
		return client
	}
	if v, found := cc.c.Get(key); found {
		if existing, ok := v.(domainService.RPCClient); ok && existing != client {
			_ = client.Close()
			return existing
		}
	}
	cc.c.SetDefault(key, client)
	return client
}

func (cc *clientCache) drop(client domainService.RPCClient) {
	cc.c.Delete(client.Endpoint().URL.String())
}

// flush closes and forgets every cached client.
func (cc *clientCache) flush() {
	for key := range cc.c.Items() {
		cc.c.Delete(key)
	}
}
