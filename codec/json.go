// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package codec implements a type-preserving JSON serializer for cached
// values.
//
// Every value held in an interface position (the top-level value,
// interface typed struct fields, []any elements and map[string]any values)
// is written as a tagged envelope:
//
//	{"@type":"product","@value":{"name":"pen","added":{"@type":"date","@value":"2024-03-01"}}}
//
// Discriminators are resolved against a closed Registry, so a payload can
// only ever produce types the application registered.
package codec

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/absmach/mgcache/pkg/errors"
)

const (
	typeKey  = "@type"
	valueKey = "@value"
)

var (
	marshalerType       = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	unmarshalerType     = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

type tagged struct {
	Type  string `json:"@type"`
	Value any    `json:"@value"`
}

// JSON is the tagged JSON serializer.
type JSON struct {
	registry *Registry
}

// New returns a serializer resolving discriminators against r.
func New(r *Registry) *JSON {
	return &JSON{registry: r}
}

// Registry returns the allow-list backing the serializer.
func (c *JSON) Registry() *Registry {
	return c.registry
}

// Serialize encodes v as a tagged JSON document.
func (c *JSON) Serialize(v any) ([]byte, error) {
	if v == nil {
		return nil, errors.Wrap(ErrUnserializable, errors.New("nil value"))
	}
	e := &encodeState{registry: c.registry, visiting: make(map[visit]struct{})}
	tree, err := e.tag(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(ErrUnserializable, err)
	}

	return data, nil
}

// Deserialize decodes a document produced by Serialize back into a value
// of its original concrete type.
func (c *JSON) Deserialize(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrMalformedPayload, errors.New("trailing data after tagged value"))
	}

	return c.untag(raw)
}

// visit identifies a reference value by its address, type and length so
// that a slice and a sub-slice of it are distinct.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// encodeState holds the references on the path from the root to the value
// being encoded.
type encodeState struct {
	registry *Registry
	visiting map[visit]struct{}
}

// enter records the pointer, map or slice rv as being visited and fails
// when it is already on the path. The returned func removes it again, so
// values shared without a cycle still encode.
func (e *encodeState) enter(rv reflect.Value) (func(), error) {
	v := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		v.len = rv.Len()
	}
	if _, ok := e.visiting[v]; ok {
		return nil, errors.Wrap(ErrUnserializable, fmt.Errorf("cycle via %s", rv.Type()))
	}
	e.visiting[v] = struct{}{}

	return func() { delete(e.visiting, v) }, nil
}

func (e *encodeState) tag(rv reflect.Value) (any, error) {
	name, ok := e.registry.nameOf(rv.Type())
	if !ok {
		return nil, errors.Wrap(ErrUnserializable, errors.New(rv.Type().String()))
	}
	val, err := e.encode(rv)
	if err != nil {
		return nil, err
	}

	return tagged{Type: name, Value: val}, nil
}

func (e *encodeState) encode(rv reflect.Value) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}
	t := rv.Type()
	if t.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		return e.tag(rv.Elem())
	}
	if t.Kind() != reflect.Pointer && (t.Implements(marshalerType) || t.Implements(textMarshalerType)) {
		return rv.Interface(), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		leave, err := e.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		return e.encode(rv.Elem())
	case reflect.Struct:
		return e.encodeStruct(rv)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, errors.Wrap(ErrUnserializable, fmt.Errorf("map key type %s", t.Key()))
		}
		if rv.IsNil() {
			return nil, nil
		}
		leave, err := e.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			v, err := e.encode(iter.Value())
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = v
		}
		return m, nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
		leave, err := e.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		return e.encodeList(rv)
	case reflect.Array:
		return e.encodeList(rv)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Wrap(ErrUnserializable, fmt.Errorf("float value %v", f))
		}
		return rv.Interface(), nil
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Interface(), nil
	default:
		return nil, errors.Wrap(ErrUnserializable, fmt.Errorf("kind %s", t.Kind()))
	}
}

func (e *encodeState) encodeStruct(rv reflect.Value) (any, error) {
	fields := fieldsOf(rv.Type())
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		v, err := e.encode(fv)
		if err != nil {
			return nil, err
		}
		if f.quoted {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, errors.Wrap(ErrUnserializable, err)
			}
			v = string(data)
		}
		m[f.name] = v
	}

	return m, nil
}

func (e *encodeState) encodeList(rv reflect.Value) (any, error) {
	list := make([]any, rv.Len())
	for i := range list {
		v, err := e.encode(rv.Index(i))
		if err != nil {
			return nil, err
		}
		list[i] = v
	}

	return list, nil
}

func (c *JSON) untag(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 2 {
		return nil, errors.Wrap(ErrMalformedPayload, errors.New("expected a tagged object"))
	}
	name, ok := m[typeKey].(string)
	if !ok {
		return nil, errors.Wrap(ErrMalformedPayload, errors.New("missing type discriminator"))
	}
	value, ok := m[valueKey]
	if !ok {
		return nil, errors.Wrap(ErrMalformedPayload, errors.New("missing tagged value"))
	}
	typ, ok := c.registry.typeOf(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownType, errors.New(name))
	}

	ptr := reflect.New(typ)
	if err := c.decode(value, ptr.Elem()); err != nil {
		return nil, err
	}

	return ptr.Elem().Interface(), nil
}

// decode stores raw into the addressable value rv.
func (c *JSON) decode(raw any, rv reflect.Value) error {
	t := rv.Type()
	if t.Kind() == reflect.Interface {
		if raw == nil {
			rv.Set(reflect.Zero(t))
			return nil
		}
		v, err := c.untag(raw)
		if err != nil {
			return err
		}
		vv := reflect.ValueOf(v)
		if !vv.Type().AssignableTo(t) {
			return errors.Wrap(ErrMalformedPayload, fmt.Errorf("%s is not assignable to %s", vv.Type(), t))
		}
		rv.Set(vv)
		return nil
	}
	if t.Kind() != reflect.Pointer {
		pt := reflect.PointerTo(t)
		switch {
		case pt.Implements(unmarshalerType):
			data, err := json.Marshal(raw)
			if err != nil {
				return errors.Wrap(ErrMalformedPayload, err)
			}
			if err := rv.Addr().Interface().(json.Unmarshaler).UnmarshalJSON(data); err != nil {
				return errors.Wrap(ErrMalformedPayload, err)
			}
			return nil
		case pt.Implements(textUnmarshalerType):
			s, ok := raw.(string)
			if !ok {
				return mismatch(raw, t)
			}
			if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return errors.Wrap(ErrMalformedPayload, err)
			}
			return nil
		}
	}

	switch t.Kind() {
	case reflect.Pointer:
		if raw == nil {
			rv.Set(reflect.Zero(t))
			return nil
		}
		p := reflect.New(t.Elem())
		if err := c.decode(raw, p.Elem()); err != nil {
			return err
		}
		rv.Set(p)
		return nil
	case reflect.Struct:
		m, ok := raw.(map[string]any)
		if !ok {
			return mismatch(raw, t)
		}
		for _, f := range fieldsOf(t) {
			v, ok := m[f.name]
			if !ok {
				continue
			}
			if f.quoted {
				if v, ok = unquote(v); !ok {
					return mismatch(m[f.name], t)
				}
			}
			if err := c.decode(v, rv.FieldByIndex(f.index)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if raw == nil {
			rv.Set(reflect.Zero(t))
			return nil
		}
		m, ok := raw.(map[string]any)
		if !ok || t.Key().Kind() != reflect.String {
			return mismatch(raw, t)
		}
		mv := reflect.MakeMapWithSize(t, len(m))
		for k, v := range m {
			elem := reflect.New(t.Elem()).Elem()
			if err := c.decode(v, elem); err != nil {
				return err
			}
			mv.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
		}
		rv.Set(mv)
		return nil
	case reflect.Slice:
		if raw == nil {
			rv.Set(reflect.Zero(t))
			return nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			s, ok := raw.(string)
			if !ok {
				return mismatch(raw, t)
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return errors.Wrap(ErrMalformedPayload, err)
			}
			rv.SetBytes(b)
			return nil
		}
		list, ok := raw.([]any)
		if !ok {
			return mismatch(raw, t)
		}
		sv := reflect.MakeSlice(t, len(list), len(list))
		for i, v := range list {
			if err := c.decode(v, sv.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(sv)
		return nil
	case reflect.Array:
		list, ok := raw.([]any)
		if !ok || len(list) != rv.Len() {
			return mismatch(raw, t)
		}
		for i, v := range list {
			if err := c.decode(v, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return mismatch(raw, t)
		}
		rv.SetBool(b)
		return nil
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return mismatch(raw, t)
		}
		rv.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := raw.(json.Number)
		if !ok {
			return mismatch(raw, t)
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil || rv.OverflowInt(i) {
			return mismatch(raw, t)
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := raw.(json.Number)
		if !ok {
			return mismatch(raw, t)
		}
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil || rv.OverflowUint(u) {
			return mismatch(raw, t)
		}
		rv.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		n, ok := raw.(json.Number)
		if !ok {
			return mismatch(raw, t)
		}
		f, err := n.Float64()
		if err != nil || rv.OverflowFloat(f) {
			return mismatch(raw, t)
		}
		rv.SetFloat(f)
		return nil
	default:
		return mismatch(raw, t)
	}
}

// unquote reverses the ",string" struct tag option.
func unquote(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return nil, false
	}

	return json.Number(s), true
}

func mismatch(raw any, t reflect.Type) error {
	return errors.Wrap(ErrMalformedPayload, fmt.Errorf("cannot decode %T into %s", raw, t))
}
