// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/absmach/mgcache/codec"
	"github.com/absmach/mgcache/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	Name     string     `json:"name"`
	Price    float64    `json:"price"`
	Tags     []string   `json:"tags,omitempty"`
	Released codec.Date `json:"released"`
	Stock    int        `json:"stock,string"`
	Extra    any        `json:"extra"`
	Parent   *product   `json:"parent,omitempty"`
	Ignored  string     `json:"-"`
}

type shape interface {
	Area() float64
}

type square struct {
	Side float64 `json:"side"`
}

func (s square) Area() float64 {
	return s.Side * s.Side
}

type circle struct {
	Radius float64 `json:"radius"`
}

func (c circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

type drawing struct {
	Title  string           `json:"title"`
	Shapes []shape          `json:"shapes"`
	Layers map[string]shape `json:"layers"`
}

type audit struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

type order struct {
	audit
	ID      string        `json:"id"`
	Timeout time.Duration `json:"timeout"`
	Due     *time.Time    `json:"due"`
}

type unregistered struct {
	Name string
}

func newSerializer(t *testing.T) *codec.JSON {
	r := codec.NewRegistry()
	require.Nil(t, codec.Register[product](r, "product"))
	require.Nil(t, codec.Register[*product](r, "product_ref"))
	require.Nil(t, codec.Register[square](r, "square"))
	require.Nil(t, codec.Register[circle](r, "circle"))
	require.Nil(t, codec.Register[drawing](r, "drawing"))
	require.Nil(t, codec.Register[order](r, "order"))

	return codec.New(r)
}

func TestSerializeRoundTrip(t *testing.T) {
	s := newSerializer(t)

	now := time.Date(2024, time.March, 1, 10, 30, 15, 123456789, time.UTC)
	due := now.Add(48 * time.Hour)
	released := codec.Date{Year: 2023, Month: time.December, Day: 24}

	cases := []struct {
		desc  string
		value any
	}{
		{desc: "string", value: "hello"},
		{desc: "empty string", value: ""},
		{desc: "bool", value: true},
		{desc: "int", value: 42},
		{desc: "negative int32", value: int32(-7)},
		{desc: "max int64", value: int64(math.MaxInt64)},
		{desc: "max uint64", value: uint64(math.MaxUint64)},
		{desc: "float64", value: 3.14159},
		{desc: "bytes", value: []byte("raw payload")},
		{desc: "time", value: now},
		{desc: "duration", value: 3 * time.Minute},
		{desc: "date", value: released},
		{desc: "zero date", value: codec.Date{}},
		{desc: "list of mixed values", value: []any{"a", 1, now, released, nil, []any{false}}},
		{desc: "map of mixed values", value: map[string]any{"name": "pen", "count": int64(3), "when": now, "nested": map[string]any{"ok": true}}},
		{
			desc: "registered struct with nested polymorphic field",
			value: product{
				Name:     "pen",
				Price:    1.25,
				Tags:     []string{"office", "blue"},
				Released: released,
				Stock:    12,
				Extra:    map[string]any{"restock": released, "supplier": "acme"},
			},
		},
		{
			desc: "registered pointer with parent",
			value: &product{
				Name:   "refill",
				Extra:  3 * time.Minute,
				Parent: &product{Name: "pen", Released: released},
			},
		},
		{
			desc:  "nil registered pointer",
			value: (*product)(nil),
		},
		{
			desc: "non empty interface fields",
			value: drawing{
				Title:  "plan",
				Shapes: []shape{square{Side: 2}, circle{Radius: 1.5}, nil},
				Layers: map[string]shape{"base": square{Side: 10}},
			},
		},
		{
			desc: "embedded struct with temporal fields",
			value: order{
				audit:   audit{CreatedAt: now, CreatedBy: "admin"},
				ID:      "ord-1",
				Timeout: 90 * time.Second,
				Due:     &due,
			},
		},
	}

	for _, tc := range cases {
		data, err := s.Serialize(tc.value)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected serialize error %s", tc.desc, err))

		got, err := s.Deserialize(data)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected deserialize error %s", tc.desc, err))
		assert.Equal(t, tc.value, got, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.value, got))
		assert.IsType(t, tc.value, got, fmt.Sprintf("%s: expected type %T got %T", tc.desc, tc.value, got))
	}
}

func TestSerializeWireFormat(t *testing.T) {
	s := newSerializer(t)

	cases := []struct {
		desc     string
		value    any
		expected string
	}{
		{
			desc:     "scalar is wrapped with its discriminator",
			value:    "pen",
			expected: `{"@type":"string","@value":"pen"}`,
		},
		{
			desc:     "date is written as calendar date",
			value:    codec.Date{Year: 2024, Month: time.March, Day: 1},
			expected: `{"@type":"date","@value":"2024-03-01"}`,
		},
		{
			desc:     "duration is written as nanoseconds",
			value:    3 * time.Minute,
			expected: `{"@type":"duration","@value":180000000000}`,
		},
		{
			desc:     "time is written as RFC 3339",
			value:    time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
			expected: `{"@type":"time","@value":"2024-03-01T10:00:00Z"}`,
		},
		{
			desc:  "nested interface field carries its own discriminator",
			value: product{Name: "pen", Stock: 2, Extra: codec.Date{Year: 2024, Month: time.March, Day: 1}},
			expected: `{"@type":"product","@value":{
				"name":"pen","price":0,"released":null,"stock":"2",
				"extra":{"@type":"date","@value":"2024-03-01"}}}`,
		},
		{
			desc:     "list elements carry discriminators",
			value:    []any{1, "a"},
			expected: `{"@type":"list","@value":[{"@type":"int","@value":1},{"@type":"string","@value":"a"}]}`,
		},
	}

	for _, tc := range cases {
		data, err := s.Serialize(tc.value)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.JSONEq(t, tc.expected, string(data), fmt.Sprintf("%s: unexpected wire format", tc.desc))
	}
}

func TestSerializeErrors(t *testing.T) {
	s := newSerializer(t)

	loop := &product{Name: "loop"}
	loop.Parent = loop

	selfMap := map[string]any{"name": "self"}
	selfMap["self"] = selfMap

	selfList := []any{"head", nil}
	selfList[1] = selfList

	indirect := &product{Name: "a", Parent: &product{Name: "b"}}
	indirect.Parent.Extra = indirect

	cases := []struct {
		desc  string
		value any
		err   error
	}{
		{desc: "nil value", value: nil, err: codec.ErrUnserializable},
		{desc: "unregistered struct", value: unregistered{Name: "x"}, err: codec.ErrUnserializable},
		{desc: "unregistered value nested in list", value: []any{"ok", unregistered{}}, err: codec.ErrUnserializable},
		{desc: "unregistered value nested in struct", value: product{Extra: unregistered{}}, err: codec.ErrUnserializable},
		{desc: "channel", value: make(chan int), err: codec.ErrUnserializable},
		{desc: "function nested in map", value: map[string]any{"fn": func() {}}, err: codec.ErrUnserializable},
		{desc: "NaN", value: math.NaN(), err: codec.ErrUnserializable},
		{desc: "infinity nested in list", value: []any{math.Inf(1)}, err: codec.ErrUnserializable},
		{desc: "time outside RFC 3339 range", value: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), err: codec.ErrUnserializable},
		{desc: "pointer referencing itself", value: loop, err: codec.ErrUnserializable},
		{desc: "map containing itself", value: selfMap, err: codec.ErrUnserializable},
		{desc: "list containing itself", value: selfList, err: codec.ErrUnserializable},
		{desc: "cycle through interface field", value: indirect, err: codec.ErrUnserializable},
	}

	for _, tc := range cases {
		_, err := s.Serialize(tc.value)
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s", tc.desc, tc.err, err))
	}
}

func TestSerializeSharedReferences(t *testing.T) {
	s := newSerializer(t)

	base := &product{Name: "base", Price: 1.5}
	attrs := map[string]any{"color": "red"}
	cases := []struct {
		desc  string
		value any
	}{
		{desc: "same pointer twice in list", value: []any{base, base}},
		{desc: "same pointer in sibling fields", value: product{Name: "child", Parent: base, Extra: base}},
		{desc: "same map twice in map", value: map[string]any{"a": attrs, "b": attrs}},
	}

	for _, tc := range cases {
		data, err := s.Serialize(tc.value)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		got, err := s.Deserialize(data)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, tc.value, got, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.value, got))
	}
}

func TestDeserializeErrors(t *testing.T) {
	s := newSerializer(t)

	cases := []struct {
		desc    string
		payload string
		err     error
	}{
		{desc: "type outside allow-list", payload: `{"@type":"os/exec.Cmd","@value":{"Path":"/bin/sh"}}`, err: codec.ErrUnknownType},
		{desc: "unregistered go type name", payload: `{"@type":"codec_test.unregistered","@value":{"Name":"x"}}`, err: codec.ErrUnknownType},
		{desc: "type outside allow-list nested in list", payload: `{"@type":"list","@value":[{"@type":"evil","@value":1}]}`, err: codec.ErrUnknownType},
		{desc: "type outside allow-list nested in struct", payload: `{"@type":"product","@value":{"name":"pen","extra":{"@type":"evil","@value":{}}}}`, err: codec.ErrUnknownType},
		{desc: "invalid json", payload: `not json`, err: codec.ErrMalformedPayload},
		{desc: "untagged value", payload: `"plain"`, err: codec.ErrMalformedPayload},
		{desc: "missing value", payload: `{"@type":"string","other":1}`, err: codec.ErrMalformedPayload},
		{desc: "missing discriminator", payload: `{"type":"string","@value":"x"}`, err: codec.ErrMalformedPayload},
		{desc: "extra envelope keys", payload: `{"@type":"string","@value":"x","extra":1}`, err: codec.ErrMalformedPayload},
		{desc: "value of the wrong kind", payload: `{"@type":"int","@value":"text"}`, err: codec.ErrMalformedPayload},
		{desc: "overflowing int32", payload: `{"@type":"int32","@value":4294967296}`, err: codec.ErrMalformedPayload},
		{desc: "untagged value in interface position", payload: `{"@type":"list","@value":["raw"]}`, err: codec.ErrMalformedPayload},
		{desc: "discriminator not implementing the field interface", payload: `{"@type":"drawing","@value":{"shapes":[{"@type":"string","@value":"x"}]}}`, err: codec.ErrMalformedPayload},
		{desc: "invalid date", payload: `{"@type":"date","@value":"2024-13-45"}`, err: codec.ErrMalformedPayload},
		{desc: "trailing data", payload: `{"@type":"string","@value":"x"} {}`, err: codec.ErrMalformedPayload},
	}

	for _, tc := range cases {
		v, err := s.Deserialize([]byte(tc.payload))
		assert.Nil(t, v, fmt.Sprintf("%s: expected nil value got %v", tc.desc, v))
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s", tc.desc, tc.err, err))
	}
}
