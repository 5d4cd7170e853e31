// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cache

import "time"

// Config is the policy applied to every entry of a region.
type Config struct {
	// TTL is the entry lifetime measured from the write. Zero disables
	// expiration.
	TTL time.Duration

	// KeyPrefix computes the prefix of the stored keys of a region. The
	// default yields "<region>::".
	KeyPrefix func(region string) string

	// Serializer encodes entry values.
	Serializer Serializer

	// CacheNullValues allows nil values to be cached.
	CacheNullValues bool
}

// DefaultConfig returns the default region policy: entries serialized with
// s, expiring DefaultTTL after they are written, keyed "<region>::<key>",
// nil values rejected.
func DefaultConfig(s Serializer) Config {
	return Config{
		TTL:        DefaultTTL,
		KeyPrefix:  DefaultKeyPrefix,
		Serializer: s,
	}
}

// DefaultKeyPrefix prefixes keys with the region name.
func DefaultKeyPrefix(region string) string {
	return region + KeySeparator
}

// WithTTL returns a copy of c expiring entries after ttl.
func (c Config) WithTTL(ttl time.Duration) Config {
	c.TTL = ttl
	return c
}

// WithKeyPrefix returns a copy of c using a fixed prefix in front of the
// region name, e.g. "shop:" yields "shop:<region>::<key>".
func (c Config) WithKeyPrefix(prefix string) Config {
	c.KeyPrefix = func(region string) string {
		return prefix + DefaultKeyPrefix(region)
	}
	return c
}

// WithSerializer returns a copy of c using s.
func (c Config) WithSerializer(s Serializer) Config {
	c.Serializer = s
	return c
}

// WithNullValues returns a copy of c caching nil values.
func (c Config) WithNullValues() Config {
	c.CacheNullValues = true
	return c
}

func (c Config) validate() error {
	if c.Serializer == nil || c.TTL < 0 {
		return ErrMalformedConfig
	}
	return nil
}

func (c Config) prefix(region string) string {
	if c.KeyPrefix == nil {
		return DefaultKeyPrefix(region)
	}
	return c.KeyPrefix(region)
}
