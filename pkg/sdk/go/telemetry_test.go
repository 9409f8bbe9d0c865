// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/absmach/fieldsim/internal/testsutil"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeviceTelemetry(t *testing.T) {
	b := testsutil.NewBackend(t)
	mgsdk := newSDK(b)

	sm := b.AddDevice("SI-SM-001", moistureType)
	wm := b.AddDevice("SI-WM-001", meterType)
	b.FailTelemetry(b.Credentials(wm.ID.ID))

	cases := []struct {
		desc    string
		token   string
		payload sdk.Telemetry
		status  int
	}{
		{
			desc:    "send with valid device token",
			token:   b.Credentials(sm.ID.ID),
			payload: sdk.Telemetry{"moisture": 51.0, "battery": 88},
		},
		{
			desc:    "send with unknown device token",
			token:   "not-a-device",
			payload: sdk.Telemetry{"battery": 90},
			status:  http.StatusUnauthorized,
		},
		{
			desc:    "send rejected by backend",
			token:   b.Credentials(wm.ID.ID),
			payload: sdk.Telemetry{"pulseCounter": 12, "battery": 90},
			status:  http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		err := mgsdk.SendDeviceTelemetry(context.Background(), tc.token, tc.payload)
		if tc.status != 0 {
			assert.NotNil(t, err, fmt.Sprintf("%s: expected error", tc.desc))
			assert.Equal(t, tc.status, err.StatusCode(), fmt.Sprintf("%s: expected status %d got %d", tc.desc, tc.status, err.StatusCode()))
			continue
		}
		assert.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
	}

	samples := b.Samples(sm.ID.ID)
	require.Len(t, samples, 1)
	assert.Equal(t, 51.0, samples[0]["moisture"])
	assert.Equal(t, 0, b.Logins(), "device telemetry must not open a session")
}

func TestSendTelemetry(t *testing.T) {
	b := testsutil.NewBackend(t)
	mgsdk := newSession(t, b)
	field := b.AddAsset("North Field", fieldType)

	payload := sdk.Telemetry{
		"avgMoisture":      45.0,
		"irrigationState":  "IDLE",
		"irrigationTask":   "None",
		"schedulerEvents":  "[]",
		"waterConsumption": 120,
	}
	err := mgsdk.SendTelemetry(context.Background(), field.ID, payload)
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	samples := b.Samples(field.ID.ID)
	require.Len(t, samples, 1)
	assert.Equal(t, "IDLE", samples[0]["irrigationState"])
	assert.Equal(t, "[]", samples[0]["schedulerEvents"])
}

func TestLatestTelemetry(t *testing.T) {
	b := testsutil.NewBackend(t)
	mgsdk := newSession(t, b)
	sm := b.AddDevice("SI-SM-001", moistureType)
	silent := b.AddDevice("SI-SM-002", moistureType)
	b.SetLatest(sm.ID.ID, "moisture", "52.3")
	b.SetLatest(sm.ID.ID, "battery", "81")

	cases := []struct {
		desc   string
		entity sdk.EntityID
		keys   []string
		values map[string]string
	}{
		{
			desc:   "latest moisture",
			entity: sm.ID,
			keys:   []string{"moisture"},
			values: map[string]string{"moisture": "52.3"},
		},
		{
			desc:   "latest of several keys",
			entity: sm.ID,
			keys:   []string{"moisture", "battery", "pulseCounter"},
			values: map[string]string{"moisture": "52.3", "battery": "81"},
		},
		{
			desc:   "device without data",
			entity: silent.ID,
			keys:   []string{"moisture"},
			values: map[string]string{},
		},
	}

	for _, tc := range cases {
		values, err := mgsdk.LatestTelemetry(context.Background(), tc.entity, tc.keys...)
		assert.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, tc.values, values, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.values, values))
	}
}

func TestAttributes(t *testing.T) {
	b := testsutil.NewBackend(t)
	mgsdk := newSession(t, b)
	field := b.AddAsset("North Field", fieldType)

	attrs := sdk.Metadata{"cropType": "Corn", "minMoistureThreshold": 45.0, "maxMoistureThreshold": 80.0}
	err := mgsdk.SaveAttributes(context.Background(), field.ID, sdk.ServerScope, attrs)
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	got, err := mgsdk.Attributes(context.Background(), field.ID, "")
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	values := sdk.Metadata{}
	for _, a := range got {
		values[a.Key] = a.Value
	}
	assert.Equal(t, attrs, values)
}
