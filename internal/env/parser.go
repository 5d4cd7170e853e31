// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package env parses service configuration from environment variables.
package env

import (
	"github.com/caarlos0/env/v7"
)

// Options configures a Parse call.
type Options struct {
	// Environment replaces the process environment when set.
	Environment map[string]string

	// Prefix is prepended to every key.
	Prefix string

	// RequiredIfNoDef makes every key without envDefault required.
	RequiredIfNoDef bool
}

// Parse fills the env tagged fields of v.
func Parse(v any, opts ...Options) error {
	altOpts := make([]env.Options, 0, len(opts))
	for _, opt := range opts {
		altOpts = append(altOpts, env.Options{
			Environment:     opt.Environment,
			Prefix:          opt.Prefix,
			RequiredIfNoDef: opt.RequiredIfNoDef,
		})
	}

	return env.Parse(v, altOpts...)
}
