// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package uuid generates the instance IDs reported by the health endpoint.
package uuid

import (
	"github.com/absmach/mgcache"
	"github.com/absmach/mgcache/pkg/errors"
	"github.com/gofrs/uuid"
)

// ErrGeneratingID indicates error in generating UUID.
var ErrGeneratingID = errors.New("failed to generate uuid")

var _ mgcache.IDProvider = (*uuidProvider)(nil)

type uuidProvider struct {
	gen uuid.Generator
}

// New returns a provider of random (version 4) UUIDs.
func New() mgcache.IDProvider {
	return &uuidProvider{gen: uuid.NewGen()}
}

func (up *uuidProvider) ID() (string, error) {
	id, err := up.gen.NewV4()
	if err != nil {
		return "", errors.Wrap(ErrGeneratingID, err)
	}

	return id.String(), nil
}
