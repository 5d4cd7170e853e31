// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"
	"strings"
	"sync"
)

// field is a struct field as seen on the wire. Names follow the json
// struct tag; anonymous struct fields without a tag are flattened into
// their parent and lose to fields declared on the parent itself.
type field struct {
	name      string
	index     []int
	omitEmpty bool
	quoted    bool
}

var fieldCache sync.Map // map[reflect.Type][]field

func fieldsOf(t reflect.Type) []field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]field)
	}
	fs, _ := fieldCache.LoadOrStore(t, collectFields(t, nil))

	return fs.([]field)
}

func collectFields(t reflect.Type, parent []int) []field {
	var embedded, own []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			embedded = append(embedded, collectFields(sf.Type, index)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		own = append(own, field{
			name:      name,
			index:     index,
			omitEmpty: hasOption(opts, "omitempty"),
			quoted:    hasOption(opts, "string") && quotable(sf.Type.Kind()),
		})
	}

	seen := make(map[string]bool, len(own))
	for _, f := range own {
		seen[f.name] = true
	}
	fields := own
	for _, f := range embedded {
		if seen[f.name] {
			continue
		}
		seen[f.name] = true
		fields = append(fields, f)
	}

	return fields
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

func quotable(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	default:
		return false
	}
}
