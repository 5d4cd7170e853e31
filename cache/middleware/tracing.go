// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"time"

	"github.com/absmach/mgcache/cache"
	"github.com/absmach/mgcache/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ cache.Store = (*tracingMiddleware)(nil)

type tracingMiddleware struct {
	tracer trace.Tracer
	store  cache.Store
}

// TracingMiddleware traces every store operation in its own span.
func TracingMiddleware(store cache.Store, tracer trace.Tracer) cache.Store {
	return &tracingMiddleware{
		tracer: tracer,
		store:  store,
	}
}

func (tm *tracingMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tm.tracer.Start(ctx, "get", trace.WithAttributes(
		attribute.String("key", key),
	))
	defer span.End()

	data, err := tm.store.Get(ctx, key)
	span.SetAttributes(attribute.Bool("hit", err == nil))
	if err != nil && !errors.Contains(err, cache.ErrCacheMiss) {
		record(span, err)
	}

	return data, err
}

func (tm *tracingMiddleware) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := tm.tracer.Start(ctx, "set", trace.WithAttributes(
		attribute.String("key", key),
		attribute.Int("size", len(value)),
		attribute.String("ttl", ttl.String()),
	))
	defer span.End()

	err := tm.store.Set(ctx, key, value, ttl)
	record(span, err)

	return err
}

func (tm *tracingMiddleware) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ctx, span := tm.tracer.Start(ctx, "set_nx", trace.WithAttributes(
		attribute.String("key", key),
		attribute.Int("size", len(value)),
		attribute.String("ttl", ttl.String()),
	))
	defer span.End()

	ok, err := tm.store.SetNX(ctx, key, value, ttl)
	span.SetAttributes(attribute.Bool("stored", ok))
	record(span, err)

	return ok, err
}

func (tm *tracingMiddleware) Delete(ctx context.Context, keys ...string) error {
	ctx, span := tm.tracer.Start(ctx, "delete", trace.WithAttributes(
		attribute.StringSlice("keys", keys),
	))
	defer span.End()

	err := tm.store.Delete(ctx, keys...)
	record(span, err)

	return err
}

func (tm *tracingMiddleware) DeletePrefix(ctx context.Context, prefix string) error {
	ctx, span := tm.tracer.Start(ctx, "delete_prefix", trace.WithAttributes(
		attribute.String("prefix", prefix),
	))
	defer span.End()

	err := tm.store.DeletePrefix(ctx, prefix)
	record(span, err)

	return err
}

func (tm *tracingMiddleware) Close() error {
	return tm.store.Close()
}

func record(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
