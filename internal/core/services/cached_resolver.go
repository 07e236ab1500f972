package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedRateResolver memoises successful resolutions for the lifetime of the process.
// Failures are never cached. It keeps nothing across runs.
type CachedRateResolver struct {
	BaseService
	next  ports.RateResolver
	cache *lru.Cache[domain.RateQuery, domain.RateResult]
}

// NewCachedRateResolver wraps next with an LRU of the given size.
// A size of zero or less returns next unchanged.
func NewCachedRateResolver(next ports.RateResolver, size int) (ports.RateResolver, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[domain.RateQuery, domain.RateResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate cache: %w", err)
	}
	return &CachedRateResolver{next: next, cache: cache}, nil
}

// Resolve implements ports.RateResolver.
func (c *CachedRateResolver) Resolve(ctx context.Context, currency domain.CurrencyCode, date time.Time) (domain.RateResult, error) {
	key := domain.RateQuery{Currency: currency, Date: domain.Day(date)}
	if res, ok := c.cache.Get(key); ok {
		c.LogDebug(ctx, "Rate cache hit", slog.String("query", key.String()))
		return res, nil
	}

	res, err := c.next.Resolve(ctx, currency, date)
	if err != nil {
		return domain.RateResult{}, err
	}
	c.cache.Add(key, res)
	return res, nil
}

// Len returns the number of cached resolutions.
func (c *CachedRateResolver) Len() int {
	return c.cache.Len()
}
