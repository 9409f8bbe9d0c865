// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package testsutil

import (
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

func GenerateUUID(t *testing.T) string {
	id, err := uuid.NewV4()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	return id.String()
}
