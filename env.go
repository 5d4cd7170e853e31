// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mgcache

import "github.com/subosito/gotenv"

// LoadEnvFile loads environment variables defined in an .env formatted
// file. Variables already set in the environment are kept.
func LoadEnvFile(envfilepath string) error {
	return gotenv.Load(envfilepath)
}
