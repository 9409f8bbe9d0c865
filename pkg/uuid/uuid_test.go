// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uuid_test

import (
	"fmt"
	"testing"

	"github.com/absmach/fieldsim/pkg/uuid"
	guuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	provider := uuid.New()
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		id, err := provider.ID()
		require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
		parsed, err := guuid.FromString(id)
		require.Nil(t, err, fmt.Sprintf("expected a valid uuid got %s", id))
		assert.Equal(t, byte(guuid.V4), parsed.Version())
		assert.False(t, seen[id], fmt.Sprintf("duplicate id %s", id))
		seen[id] = true
	}
}

func TestMockID(t *testing.T) {
	provider := uuid.NewMock()
	for i := 1; i <= 3; i++ {
		id, err := provider.ID()
		require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
		assert.Equal(t, fmt.Sprintf("%s%012d", uuid.Prefix, i), id)
	}
}
