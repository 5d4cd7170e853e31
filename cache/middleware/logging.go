// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package middleware decorates cache stores with logging, metrics and
// tracing.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/mgcache/cache"
	"github.com/absmach/mgcache/pkg/errors"
)

var _ cache.Store = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	store  cache.Store
}

// LoggingMiddleware adds logging facilities to the store.
func LoggingMiddleware(store cache.Store, logger *slog.Logger) cache.Store {
	return &loggingMiddleware{
		logger: logger,
		store:  store,
	}
}

func (lm *loggingMiddleware) Get(ctx context.Context, key string) (data []byte, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("key", key),
		}
		switch {
		case err == nil:
			lm.logger.Debug("Get cache entry completed successfully", append(args, slog.Int("size", len(data)))...)
		case errors.Contains(err, cache.ErrCacheMiss):
			lm.logger.Debug("Get cache entry missed", args...)
		default:
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get cache entry failed", args...)
		}
	}(time.Now())

	return lm.store.Get(ctx, key)
}

func (lm *loggingMiddleware) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("entry",
				slog.String("key", key),
				slog.Int("size", len(value)),
				slog.String("ttl", ttl.String()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Set cache entry failed", args...)
			return
		}
		lm.logger.Debug("Set cache entry completed successfully", args...)
	}(time.Now())

	return lm.store.Set(ctx, key, value, ttl)
}

func (lm *loggingMiddleware) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("entry",
				slog.String("key", key),
				slog.Int("size", len(value)),
				slog.String("ttl", ttl.String()),
			),
			slog.Bool("stored", ok),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Set absent cache entry failed", args...)
			return
		}
		lm.logger.Debug("Set absent cache entry completed successfully", args...)
	}(time.Now())

	return lm.store.SetNX(ctx, key, value, ttl)
}

func (lm *loggingMiddleware) Delete(ctx context.Context, keys ...string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Any("keys", keys),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Delete cache entries failed", args...)
			return
		}
		lm.logger.Info("Delete cache entries completed successfully", args...)
	}(time.Now())

	return lm.store.Delete(ctx, keys...)
}

func (lm *loggingMiddleware) DeletePrefix(ctx context.Context, prefix string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("prefix", prefix),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Clear cache region failed", args...)
			return
		}
		lm.logger.Info("Clear cache region completed successfully", args...)
	}(time.Now())

	return lm.store.DeletePrefix(ctx, prefix)
}

func (lm *loggingMiddleware) Close() error {
	if err := lm.store.Close(); err != nil {
		lm.logger.Error("Close cache store failed", slog.Any("error", err))
		return err
	}
	lm.logger.Info("Cache store closed")

	return nil
}
