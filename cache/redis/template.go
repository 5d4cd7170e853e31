// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package redis

import (
	"context"
	"time"

	"github.com/absmach/mgcache/cache"
	"github.com/absmach/mgcache/pkg/errors"
	"github.com/go-redis/redis/v8"
)

// Template gives direct key-value access to Redis with string keys and
// serialized values, outside of the cache regions. Hash fields are plain
// strings and hash values are serialized the same way as values.
type Template struct {
	client     *redis.Client
	serializer cache.Serializer
}

// NewTemplate returns a template encoding values with s.
func NewTemplate(client *redis.Client, s cache.Serializer) *Template {
	return &Template{
		client:     client,
		serializer: s,
	}
}

// Set stores v under key. A zero ttl keeps the key until it is deleted.
func (t *Template) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := t.serializer.Serialize(v)
	if err != nil {
		return err
	}
	if err := t.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Wrap(cache.ErrStore, err)
	}

	return nil
}

// Get returns the value stored under key or cache.ErrCacheMiss.
func (t *Template) Get(ctx context.Context, key string) (any, error) {
	data, err := t.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(cache.ErrStore, err)
	}

	return t.serializer.Deserialize(data)
}

// Delete removes keys and returns how many existed.
func (t *Template) Delete(ctx context.Context, keys ...string) (int64, error) {
	n, err := t.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.Wrap(cache.ErrStore, err)
	}

	return n, nil
}

// HSet stores v in field of the hash under key.
func (t *Template) HSet(ctx context.Context, key, field string, v any) error {
	data, err := t.serializer.Serialize(v)
	if err != nil {
		return err
	}
	if err := t.client.HSet(ctx, key, field, data).Err(); err != nil {
		return errors.Wrap(cache.ErrStore, err)
	}

	return nil
}

// HGet returns the value of field in the hash under key or
// cache.ErrCacheMiss.
func (t *Template) HGet(ctx context.Context, key, field string) (any, error) {
	data, err := t.client.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(cache.ErrStore, err)
	}

	return t.serializer.Deserialize(data)
}

// HGetAll returns every field of the hash under key. A missing key yields
// an empty map.
func (t *Template) HGetAll(ctx context.Context, key string) (map[string]any, error) {
	raw, err := t.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(cache.ErrStore, err)
	}

	fields := make(map[string]any, len(raw))
	for field, data := range raw {
		v, err := t.serializer.Deserialize([]byte(data))
		if err != nil {
			return nil, err
		}
		fields[field] = v
	}

	return fields, nil
}

// Expire sets the ttl of key and reports whether the key exists.
func (t *Template) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := t.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, errors.Wrap(cache.ErrStore, err)
	}

	return ok, nil
}

// TTL returns the remaining time to live of key. It returns -1 for keys
// without expiration and -2 for missing keys, as Redis does.
func (t *Template) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := t.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(cache.ErrStore, err)
	}

	return ttl, nil
}
