// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/absmach/mgcache/pkg/errors"

var (
	// ErrUnserializable indicates a value, or a value nested in it, that has
	// no representation in the tagged encoding.
	ErrUnserializable = errors.New("value is not serializable")

	// ErrUnknownType indicates a type discriminator outside the allow-list.
	ErrUnknownType = errors.New("type is not in the allow-list")

	// ErrMalformedPayload indicates a payload that is not a valid tagged value.
	ErrMalformedPayload = errors.New("malformed tagged payload")

	// ErrDuplicateType indicates a name or a type that is already registered.
	ErrDuplicateType = errors.New("type already registered")

	// ErrMalformedType indicates an empty name or an unregistrable type.
	ErrMalformedType = errors.New("malformed type registration")
)
