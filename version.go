// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mgcache

// Build information, set at link time with -ldflags "-X".
var (
	// Version is the released version of the service.
	Version = "0.0.0"

	// Commit is the git commit the service was built from.
	Commit = "ffffffff"

	// BuildTime is the time the service was built.
	BuildTime = "1970-01-01_00:00:00"
)
