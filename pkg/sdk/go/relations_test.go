// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/absmach/fieldsim/internal/testsutil"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMembers(t *testing.T) {
	b := testsutil.NewBackend(t)
	mgsdk := newSession(t, b)

	field := b.AddAsset("North Field", fieldType)
	empty := b.AddAsset("South Field", fieldType)
	pump := b.AddAsset("Pump House", "Building")
	sm := b.AddDevice("SI-SM-001", moistureType)
	wm := b.AddDevice("SI-WM-001", meterType)
	b.Relate(field.ID, sm.ID)
	b.Relate(field.ID, wm.ID)
	b.Relate(field.ID, pump.ID)

	cases := []struct {
		desc    string
		fieldID string
		members []sdk.EntityID
	}{
		{
			desc:    "members of field with devices and an asset",
			fieldID: field.ID.ID,
			members: []sdk.EntityID{sm.ID, wm.ID},
		},
		{
			desc:    "members of field without relations",
			fieldID: empty.ID.ID,
			members: []sdk.EntityID{},
		},
	}

	for _, tc := range cases {
		members, err := mgsdk.FieldMembers(context.Background(), tc.fieldID)
		assert.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.ElementsMatch(t, tc.members, members, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.members, members))
	}

	rels, err := mgsdk.Relations(context.Background(), field.ID)
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	assert.Len(t, rels, 3)
}

func TestCreateRelation(t *testing.T) {
	b := testsutil.NewBackend(t)
	mgsdk := newSession(t, b)

	field := b.AddAsset("North Field", fieldType)
	valve := b.AddDevice("SI-VL-001", valveType)

	err := mgsdk.CreateRelation(context.Background(), sdk.Relation{From: field.ID, To: valve.ID})
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	rels := b.RelationsFrom(field.ID.ID)
	require.Len(t, rels, 1)
	assert.Equal(t, sdk.ContainsRelation, rels[0].Type)
	assert.Equal(t, sdk.CommonTypeGroup, rels[0].TypeGroup)
	assert.Equal(t, valve.ID, rels[0].To)
}
