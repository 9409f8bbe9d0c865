// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package fieldsim

import (
	"os"

	"github.com/subosito/gotenv"
)

// LoadEnvFile loads environment variables defined in an .env formatted file.
// Variables already present in the process environment are kept.
// A missing file is not an error.
func LoadEnvFile(envfilepath string) error {
	if envfilepath == "" {
		return nil
	}
	if _, err := os.Stat(envfilepath); os.IsNotExist(err) {
		return nil
	}
	return gotenv.Load(envfilepath)
}
