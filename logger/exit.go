// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger

import "os"

// ExitWithError closes the current process with the given exit code.
// It is meant to be deferred in main so that deferred cleanups run first.
func ExitWithError(code *int) {
	os.Exit(*code)
}
