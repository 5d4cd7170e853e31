// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package redis contains the Redis implementations of the cache store and
// of the standalone key-value template.
package redis

import (
	"context"
	"strings"
	"time"

	"github.com/absmach/mgcache/cache"
	"github.com/absmach/mgcache/pkg/errors"
	"github.com/go-redis/redis/v8"
)

const scanCount = 256

var _ cache.Store = (*store)(nil)

type store struct {
	client *redis.Client
}

// NewStore returns a Redis backed cache store.
func NewStore(client *redis.Client) cache.Store {
	return &store{client: client}
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	// Redis returns Nil Reply when key does not exist.
	if err == redis.Nil {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrViewEntity, err)
	}

	return data, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCreateEntity, err)
	}

	return nil
}

func (s *store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, errors.Wrap(errors.ErrCreateEntity, err)
	}

	return ok, nil
}

func (s *store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(errors.ErrRemoveEntity, err)
	}

	return nil
}

func (s *store) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, escapePattern(prefix)+"*", scanCount).Iterator()
	keys := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanCount {
			if err := s.Delete(ctx, keys...); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(errors.ErrRemoveEntity, err)
	}

	return s.Delete(ctx, keys...)
}

func (s *store) Close() error {
	return s.client.Close()
}

var patternEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapePattern quotes the glob characters of a SCAN MATCH pattern.
func escapePattern(s string) string {
	return patternEscaper.Replace(s)
}
