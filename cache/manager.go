// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sort"
	"sync"

	"github.com/absmach/mgcache/pkg/errors"
)

// Manager owns the regions of a store. It is built once and shared by
// every component that needs cache access.
type Manager struct {
	store    Store
	defaults Config
	dynamic  bool

	mu      sync.RWMutex
	regions map[string]*region
}

type managerOptions struct {
	configs map[string]Config
	names   []string
	dynamic bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

// WithRegionConfig overrides the default policy for the named region.
func WithRegionConfig(name string, cfg Config) ManagerOption {
	return func(o *managerOptions) {
		o.configs[name] = cfg
	}
}

// WithRegions creates the named regions with the default policy up front.
func WithRegions(names ...string) ManagerOption {
	return func(o *managerOptions) {
		o.names = append(o.names, names...)
	}
}

// WithDynamicRegions controls whether regions that were not configured up
// front are created on first use. It is enabled by default.
func WithDynamicRegions(enabled bool) ManagerOption {
	return func(o *managerOptions) {
		o.dynamic = enabled
	}
}

// NewManager returns a manager storing entries in store. Every region
// uses defaults unless overridden with WithRegionConfig.
func NewManager(store Store, defaults Config, opts ...ManagerOption) (*Manager, error) {
	if err := defaults.validate(); err != nil {
		return nil, err
	}
	o := managerOptions{
		configs: make(map[string]Config),
		dynamic: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		store:    store,
		defaults: defaults,
		dynamic:  o.dynamic,
		regions:  make(map[string]*region),
	}
	for _, name := range o.names {
		if name == "" {
			return nil, errors.Wrap(ErrMalformedConfig, ErrUnknownRegion)
		}
		m.regions[name] = newRegion(name, defaults, store)
	}
	for name, cfg := range o.configs {
		if name == "" {
			return nil, errors.Wrap(ErrMalformedConfig, ErrUnknownRegion)
		}
		if err := cfg.validate(); err != nil {
			return nil, errors.Wrap(err, errors.New(name))
		}
		m.regions[name] = newRegion(name, cfg, store)
	}

	return m, nil
}

// Cache returns the named region.
func (m *Manager) Cache(name string) (Cache, error) {
	if name == "" {
		return nil, ErrUnknownRegion
	}

	m.mu.RLock()
	r, ok := m.regions[name]
	m.mu.RUnlock()
	if ok {
		return r, nil
	}
	if !m.dynamic {
		return nil, errors.Wrap(ErrUnknownRegion, errors.New(name))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.regions[name]; ok {
		return r, nil
	}
	r = newRegion(name, m.defaults, m.store)
	m.regions[name] = r

	return r, nil
}

// Names returns the names of the existing regions in lexical order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.regions))
	for name := range m.regions {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Defaults returns the policy inherited by regions without an override.
func (m *Manager) Defaults() Config {
	return m.defaults
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
