// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package provision_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/absmach/fieldsim/internal/testsutil"
	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/provision"
	"github.com/absmach/fieldsim/simulator"
	"github.com/absmach/fieldsim/simulator/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validLogin = sdk.Login{Username: testsutil.Username, Password: testsutil.Password}

func newService(t *testing.T, b *testsutil.Backend, login sdk.Login) provision.Service {
	m, err := provision.DefaultManifest()
	require.Nil(t, err, fmt.Sprintf("unexpected manifest error: %s", err))
	client := sdk.NewSDK(sdk.Config{BackendURL: b.URL(), RequestTimeout: 5 * time.Second})

	return provision.New(provision.Config{Login: login, Manifest: m}, client, mocks.NewRand(nil, nil), logger.NewMock())
}

func created(entities []provision.Entity) int {
	n := 0
	for _, e := range entities {
		if e.Created {
			n++
		}
	}
	return n
}

func createdDevices(devices []provision.Device) int {
	n := 0
	for _, d := range devices {
		if d.Created {
			n++
		}
	}
	return n
}

func TestProvision(t *testing.T) {
	b := testsutil.NewBackend(t)
	svc := newService(t, b, validLogin)

	res, err := svc.Provision(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Empty(t, res.Errors)
	assert.Equal(t, 3, created(res.Profiles))
	assert.Equal(t, 2, created(res.Fields))
	assert.Equal(t, 8, createdDevices(res.Devices))
	assert.Equal(t, 8, res.Relations)

	assert.Len(t, b.Profiles(), 3)
	assert.Len(t, b.Assets(), 2)
	assert.Len(t, b.Devices(), 8)

	for _, d := range res.Devices {
		assert.Equal(t, b.Credentials(d.ID), d.AccessToken, fmt.Sprintf("device %s: unexpected access token", d.Name))
		samples := b.Samples(d.ID)
		require.Len(t, samples, 1, fmt.Sprintf("device %s: expected one initial sample", d.Name))
		assert.Equal(t, 80.0, samples[0]["battery"], fmt.Sprintf("device %s: unexpected battery", d.Name))
		switch d.Type {
		case simulator.SoilMoistureSensor:
			assert.Equal(t, 45.0, samples[0]["moisture"])
		case simulator.WaterMeter:
			assert.Equal(t, 100000.0, samples[0]["pulseCounter"])
		}
	}

	for _, f := range res.Fields {
		attrs := b.Attributes(f.ID)
		assert.Contains(t, attrs, "cropType", fmt.Sprintf("field %s: expected crop type attribute", f.Name))
		assert.Contains(t, attrs, "minMoistureThreshold", fmt.Sprintf("field %s: expected threshold attribute", f.Name))
		assert.Len(t, b.RelationsFrom(f.ID), 4, fmt.Sprintf("field %s: expected four devices", f.Name))

		samples := b.Samples(f.ID)
		require.Len(t, samples, 1, fmt.Sprintf("field %s: expected one initial sample", f.Name))
		assert.Equal(t, 50.0, samples[0]["avgMoisture"])
		assert.Equal(t, "IDLE", samples[0]["irrigationState"])
		assert.Equal(t, "None", samples[0]["irrigationTask"])
		assert.Equal(t, "[]", samples[0]["schedulerEvents"])
		assert.Equal(t, 100.0, samples[0]["waterConsumption"])
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	b := testsutil.NewBackend(t)
	svc := newService(t, b, validLogin)

	first, err := svc.Provision(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	second, err := svc.Provision(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, 0, created(second.Profiles))
	assert.Equal(t, 0, created(second.Fields))
	assert.Equal(t, 0, createdDevices(second.Devices))
	assert.Equal(t, 0, second.Relations)

	for i, d := range second.Devices {
		assert.Equal(t, first.Devices[i].ID, d.ID, fmt.Sprintf("device %s: expected the existing id", d.Name))
		assert.Equal(t, first.Devices[i].AccessToken, d.AccessToken)
	}
	assert.Len(t, b.Profiles(), 3)
	assert.Len(t, b.Assets(), 2)
	assert.Len(t, b.Devices(), 8)
	for _, f := range second.Fields {
		assert.Len(t, b.RelationsFrom(f.ID), 4, fmt.Sprintf("field %s: relations should not be duplicated", f.Name))
	}
}

func TestProvisionSkipsExisting(t *testing.T) {
	b := testsutil.NewBackend(t)
	profile := b.AddProfile(simulator.WaterMeter)
	field := b.AddAsset("North Field", simulator.FieldType)
	sensor := b.AddDevice("SI-SM-001", simulator.SoilMoistureSensor)
	b.Relate(field.ID, sensor.ID)
	svc := newService(t, b, validLogin)

	res, err := svc.Provision(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, 2, created(res.Profiles))
	assert.Equal(t, 1, created(res.Fields))
	assert.Equal(t, 7, createdDevices(res.Devices))
	assert.Equal(t, 7, res.Relations)

	for _, p := range res.Profiles {
		if p.Name == simulator.WaterMeter {
			assert.Equal(t, profile.ID.ID, p.ID)
		}
	}
	assert.Equal(t, field.ID.ID, res.Fields[0].ID)
	assert.Equal(t, sensor.ID.ID, res.Devices[0].ID)
	assert.Len(t, b.RelationsFrom(field.ID.ID), 4)
}

func TestProvisionCollectsEntityErrors(t *testing.T) {
	b := testsutil.NewBackend(t)
	// An asset of another type holds the field name, so the field can
	// not be created and its devices stay unrelated.
	b.AddAsset("South Field", "Warehouse")
	svc := newService(t, b, validLogin)

	res, err := svc.Provision(context.Background())
	assert.True(t, errors.Contains(err, provision.ErrIncompleteProvisioning), fmt.Sprintf("expected %s got %s", provision.ErrIncompleteProvisioning, err))
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], provision.ErrFailedFieldCreation.Error())
	assert.Contains(t, res.Errors[0], "South Field")
	assert.Len(t, res.Fields, 1)
	assert.Len(t, res.Devices, 8)
	assert.Equal(t, 4, res.Relations)
}

func TestProvisionLoginFailure(t *testing.T) {
	b := testsutil.NewBackend(t)
	svc := newService(t, b, sdk.Login{Username: testsutil.Username, Password: "wrong"})

	res, err := svc.Provision(context.Background())
	assert.True(t, errors.Contains(err, provision.ErrFailedToCreateToken), fmt.Sprintf("expected %s got %s", provision.ErrFailedToCreateToken, err))
	assert.True(t, errors.Contains(err, errors.ErrAuthentication), fmt.Sprintf("expected %s got %s", errors.ErrAuthentication, err))
	assert.Empty(t, res.Devices)
	assert.Empty(t, b.Profiles())
}
