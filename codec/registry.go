// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/absmach/mgcache/pkg/errors"
)

// Registry is the closed allow-list of types the codec is able to
// reconstruct. A type discriminator that is not registered is never
// instantiated.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewRegistry returns a registry holding the builtin scalar, temporal
// and container types.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
	for _, b := range builtins {
		r.add(b.name, b.typ)
	}

	return r
}

var builtins = []struct {
	name string
	typ  reflect.Type
}{
	{"string", reflect.TypeOf("")},
	{"bool", reflect.TypeOf(false)},
	{"int", reflect.TypeOf(int(0))},
	{"int32", reflect.TypeOf(int32(0))},
	{"int64", reflect.TypeOf(int64(0))},
	{"uint64", reflect.TypeOf(uint64(0))},
	{"float64", reflect.TypeOf(float64(0))},
	{"bytes", reflect.TypeOf([]byte(nil))},
	{"time", reflect.TypeOf(time.Time{})},
	{"duration", reflect.TypeOf(time.Duration(0))},
	{"date", reflect.TypeOf(Date{})},
	{"list", reflect.TypeOf([]any(nil))},
	{"map", reflect.TypeOf(map[string]any(nil))},
}

// Register adds the concrete type of sample to the allow-list under name.
func (r *Registry) Register(name string, sample any) error {
	if name == "" || sample == nil {
		return ErrMalformedType
	}
	typ := reflect.TypeOf(sample)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return errors.Wrap(ErrDuplicateType, errors.New(name))
	}
	if existing, ok := r.byType[typ]; ok {
		return errors.Wrap(ErrDuplicateType, errors.New(existing))
	}
	r.add(name, typ)

	return nil
}

// Register adds T to the registry under name.
//
//	codec.Register[Product](registry, "product")
func Register[T any](r *Registry, name string) error {
	var zero T
	typ := reflect.TypeOf(&zero).Elem()
	if typ.Kind() == reflect.Interface {
		return ErrMalformedType
	}

	return r.Register(name, reflect.Zero(typ).Interface())
}

// Names returns the registered discriminators in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *Registry) add(name string, typ reflect.Type) {
	r.byName[name] = typ
	r.byType[typ] = name
}

func (r *Registry) nameOf(typ reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byType[typ]
	return name, ok
}

func (r *Registry) typeOf(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.byName[name]
	return typ, ok
}
