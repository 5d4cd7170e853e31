// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package cache binds a serialization and expiration policy to named cache
// regions kept in a remote key-value store.
package cache

import (
	"context"
	"time"

	"github.com/absmach/mgcache/pkg/errors"
)

// DefaultTTL is the expiration applied to entries of regions that do not
// override it.
const DefaultTTL = 3 * time.Minute

// KeySeparator joins a region name and an entry key.
const KeySeparator = "::"

var (
	// ErrCacheMiss indicates an absent or expired entry.
	ErrCacheMiss = errors.New("cache miss")

	// ErrStore indicates a failure of the remote store.
	ErrStore = errors.New("cache store failure")

	// ErrNullValue indicates a nil value put into a region that does not
	// cache null values.
	ErrNullValue = errors.New("null values are not cached")

	// ErrUnknownRegion indicates a region that is not configured on a
	// manager with dynamic regions disabled.
	ErrUnknownRegion = errors.New("unknown cache region")

	// ErrLoad indicates a failure of the loader passed to GetOrLoad.
	ErrLoad = errors.New("failed to load cache value")

	// ErrMalformedConfig indicates a config without a serializer or with a
	// negative TTL.
	ErrMalformedConfig = errors.New("malformed cache configuration")
)

// Serializer converts values to and from their stored form.
type Serializer interface {
	// Serialize encodes v. It fails on values that cannot be represented.
	Serialize(v any) ([]byte, error)

	// Deserialize reconstructs the value encoded in data.
	Deserialize(data []byte) (any, error)
}

// Store is the remote key-value store holding serialized entries.
type Store interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl stores it without expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value under key unless the key already exists and
	// reports whether it was stored.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Close releases the store connections.
	Close() error
}

// Loader produces the value for a missing key.
type Loader func(ctx context.Context) (any, error)

// Cache is a named region of the cache. Every entry of a region is
// stored with the region's Config.
type Cache interface {
	// Name returns the region name.
	Name() string

	// Config returns the policy of the region.
	Config() Config

	// Get returns the value cached under key or ErrCacheMiss.
	Get(ctx context.Context, key string) (any, error)

	// Put caches v under key for the region TTL.
	Put(ctx context.Context, key string, v any) error

	// PutIfAbsent caches v unless key is already cached and reports whether
	// v was stored.
	PutIfAbsent(ctx context.Context, key string, v any) (bool, error)

	// GetOrLoad returns the cached value or caches and returns the result
	// of load. Concurrent loads of the same key in a process are collapsed.
	GetOrLoad(ctx context.Context, key string, load Loader) (any, error)

	// Evict removes key from the region.
	Evict(ctx context.Context, key string) error

	// Clear removes every entry of the region.
	Clear(ctx context.Context) error
}
