// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"time"

	"github.com/absmach/mgcache/cache"
	"github.com/absmach/mgcache/pkg/errors"
	"github.com/go-kit/kit/metrics"
)

var _ cache.Store = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	lookups metrics.Counter
	store   cache.Store
}

// MetricsMiddleware instruments the store by tracking request count and
// latency per method. Lookups are counted per "hit", "miss" and "error"
// result.
func MetricsMiddleware(store cache.Store, counter metrics.Counter, latency metrics.Histogram, lookups metrics.Counter) cache.Store {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		lookups: lookups,
		store:   store,
	}
}

func (mm *metricsMiddleware) Get(ctx context.Context, key string) (data []byte, err error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get").Add(1)
		mm.latency.With("method", "get").Observe(time.Since(begin).Seconds())
		mm.lookups.With("result", lookupResult(err)).Add(1)
	}(time.Now())

	return mm.store.Get(ctx, key)
}

func (mm *metricsMiddleware) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "set").Add(1)
		mm.latency.With("method", "set").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.store.Set(ctx, key, value, ttl)
}

func (mm *metricsMiddleware) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "set_nx").Add(1)
		mm.latency.With("method", "set_nx").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.store.SetNX(ctx, key, value, ttl)
}

func (mm *metricsMiddleware) Delete(ctx context.Context, keys ...string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "delete").Add(1)
		mm.latency.With("method", "delete").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.store.Delete(ctx, keys...)
}

func (mm *metricsMiddleware) DeletePrefix(ctx context.Context, prefix string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "delete_prefix").Add(1)
		mm.latency.With("method", "delete_prefix").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.store.DeletePrefix(ctx, prefix)
}

func (mm *metricsMiddleware) Close() error {
	return mm.store.Close()
}

func lookupResult(err error) string {
	switch {
	case err == nil:
		return "hit"
	case errors.Contains(err, cache.ErrCacheMiss):
		return "miss"
	default:
		return "error"
	}
}
