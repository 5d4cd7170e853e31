// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"time"

	"github.com/absmach/mgcache/cache"
	"github.com/stretchr/testify/mock"
)

var _ cache.Store = (*Store)(nil)

type Store struct {
	mock.Mock
}

func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ret := m.Called(ctx, key)

	var data []byte
	if v := ret.Get(0); v != nil {
		data = v.([]byte)
	}

	return data, ret.Error(1)
}

func (m *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ret := m.Called(ctx, key, value, ttl)

	return ret.Error(0)
}

func (m *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ret := m.Called(ctx, key, value, ttl)

	return ret.Bool(0), ret.Error(1)
}

func (m *Store) Delete(ctx context.Context, keys ...string) error {
	ret := m.Called(ctx, keys)

	return ret.Error(0)
}

func (m *Store) DeletePrefix(ctx context.Context, prefix string) error {
	ret := m.Called(ctx, prefix)

	return ret.Error(0)
}

func (m *Store) Close() error {
	ret := m.Called()

	return ret.Error(0)
}
