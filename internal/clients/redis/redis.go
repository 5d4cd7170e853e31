// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package redis connects the service to its Redis server.
package redis

import (
	"context"
	"time"

	"github.com/absmach/mgcache/pkg/errors"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
)

var errConnect = errors.New("failed to connect to redis server")

// Config defines the options used to create a Redis client.
type Config struct {
	URL            string        `env:"URL"             envDefault:"redis://localhost:6379/0"`
	PoolSize       int           `env:"POOL_SIZE"       envDefault:"10"`
	DialTimeout    time.Duration `env:"DIAL_TIMEOUT"    envDefault:"5s"`
	ConnectRetries uint64        `env:"CONNECT_RETRIES" envDefault:"5"`
}

// Connect creates a Redis client and waits for the server to answer a
// ping, retrying with exponential backoff.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(errConnect, err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	client := redis.NewClient(opts)

	ping := func() error {
		return client.Ping(ctx).Err()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.ConnectRetries), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		client.Close()
		return nil, errors.Wrap(errConnect, err)
	}

	return client, nil
}
