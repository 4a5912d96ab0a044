package classifier

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

// Cached remembers definitive verdicts per credential and normalized URL.
// Uncertain and needs-configuration verdicts always go to next.
type Cached struct {
	next    Classifier
	cache   *gocache.Cache
	metrics *monitoring.Metrics
}

// NewCached wraps next with a verdict cache. A non-positive ttl disables
// caching and returns next unchanged.
func NewCached(next Classifier, ttl time.Duration, metrics *monitoring.Metrics) Classifier {
	if ttl <= 0 {
		return next
	}
	return &Cached{
		next:    next,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *Cached) Classify(ctx context.Context, url, credential string) types.ClassificationResult {
	if credential == "" {
		return c.next.Classify(ctx, url, credential)
	}

	key := cacheKey(url, credential)
	if v, ok := c.cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.IncVerdictCacheHits()
		}
		return v.(types.ClassificationResult)
	}

	result := c.next.Classify(ctx, url, credential)
	if result.Definitive() {
		c.cache.SetDefault(key, result)
	}
	return result
}

// Len returns the number of cached verdicts, expired ones included until
// the janitor runs.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached verdict.
func (c *Cached) Flush() {
	c.cache.Flush()
}

func cacheKey(url, credential string) string {
	if normalized, err := utils.NormalizeURL(url); err == nil {
		url = normalized
	}
	return credential + "\x00" + url
}
