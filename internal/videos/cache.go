package videos

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const integrationCacheKey = "integration-server-url"

// CachingIntegrationProvider wraps another IntegrationURLProvider with a TTL cache.
type CachingIntegrationProvider struct {
	base  IntegrationURLProvider
	cache *ttlcache.Cache[string, string]
}

// NewCachingIntegrationProvider returns a provider that caches lookups for ttl.
func NewCachingIntegrationProvider(base IntegrationURLProvider, ttl time.Duration) *CachingIntegrationProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	return &CachingIntegrationProvider{base: base, cache: cache}
}

// IntegrationServerURL returns the cached URL when fresh, otherwise it asks the
// underlying provider and stores the answer, including an empty one.
func (c *CachingIntegrationProvider) IntegrationServerURL(ctx context.Context) (string, error) {
	if c == nil || c.base == nil {
		return "", ErrProviderUnavailable
	}

	if item := c.cache.Get(integrationCacheKey); item != nil {
		return item.Value(), nil
	}

	url, err := c.base.IntegrationServerURL(ctx)
	if err != nil {
		return "", err
	}

	c.cache.Set(integrationCacheKey, url, ttlcache.DefaultTTL)
	return url, nil
}
