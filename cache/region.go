// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"

	"github.com/absmach/mgcache/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// nullValue is stored for nil values in regions caching them. It can not
// collide with a serialized value since serializers reject nil.
var nullValue = []byte("null")

var _ Cache = (*region)(nil)

type region struct {
	name   string
	cfg    Config
	prefix string
	store  Store
	loads  singleflight.Group
}

func newRegion(name string, cfg Config, store Store) *region {
	return &region{
		name:   name,
		cfg:    cfg,
		prefix: cfg.prefix(name),
		store:  store,
	}
}

func (r *region) Name() string {
	return r.name
}

func (r *region) Config() Config {
	return r.cfg
}

func (r *region) Get(ctx context.Context, key string) (any, error) {
	data, err := r.store.Get(ctx, r.key(key))
	if err != nil {
		if errors.Contains(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, errors.Wrap(ErrStore, err)
	}
	if bytes.Equal(data, nullValue) {
		return nil, nil
	}

	return r.cfg.Serializer.Deserialize(data)
}

func (r *region) Put(ctx context.Context, key string, v any) error {
	data, err := r.encode(v)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key(key), data, r.cfg.TTL); err != nil {
		return errors.Wrap(ErrStore, err)
	}

	return nil
}

func (r *region) PutIfAbsent(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.encode(v)
	if err != nil {
		return false, err
	}
	ok, err := r.store.SetNX(ctx, r.key(key), data, r.cfg.TTL)
	if err != nil {
		return false, errors.Wrap(ErrStore, err)
	}

	return ok, nil
}

// GetOrLoad runs one load per key at a time in this process. The load is
// detached from the cancellation of the caller that started it, so callers
// sharing it only fail on their own context.
func (r *region) GetOrLoad(ctx context.Context, key string, load Loader) (any, error) {
	v, err := r.Get(ctx, key)
	if err == nil || !errors.Contains(err, ErrCacheMiss) {
		return v, err
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.loads.DoChan(key, func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return nil, errors.Wrap(ErrLoad, err)
		}
		if err := r.Put(loadCtx, key, v); err != nil {
			return nil, err
		}
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *region) Evict(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, r.key(key)); err != nil {
		return errors.Wrap(ErrStore, err)
	}

	return nil
}

func (r *region) Clear(ctx context.Context) error {
	if err := r.store.DeletePrefix(ctx, r.prefix); err != nil {
		return errors.Wrap(ErrStore, err)
	}

	return nil
}

func (r *region) key(key string) string {
	return r.prefix + key
}

func (r *region) encode(v any) ([]byte, error) {
	if v == nil {
		if !r.cfg.CacheNullValues {
			return nil, ErrNullValue
		}
		return nullValue, nil
	}

	return r.cfg.Serializer.Serialize(v)
}
