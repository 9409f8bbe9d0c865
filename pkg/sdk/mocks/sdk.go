// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/stretchr/testify/mock"
)

var _ sdk.SDK = (*SDK)(nil)

// SDK is a testify mock of the backend SDK.
type SDK struct {
	mock.Mock
}

func (m *SDK) CreateToken(ctx context.Context, lt sdk.Login) (sdk.Token, errors.SDKError) {
	ret := m.Called(ctx, lt)

	return ret.Get(0).(sdk.Token), sdkError(ret, 1)
}

func (m *SDK) RefreshToken(ctx context.Context) (sdk.Token, errors.SDKError) {
	ret := m.Called(ctx)

	return ret.Get(0).(sdk.Token), sdkError(ret, 1)
}

func (m *SDK) Devices(ctx context.Context, pm sdk.PageMetadata) (sdk.DevicesPage, errors.SDKError) {
	ret := m.Called(ctx, pm)

	return ret.Get(0).(sdk.DevicesPage), sdkError(ret, 1)
}

func (m *SDK) CreateDevice(ctx context.Context, d sdk.Device) (sdk.Device, errors.SDKError) {
	ret := m.Called(ctx, d)

	return ret.Get(0).(sdk.Device), sdkError(ret, 1)
}

func (m *SDK) DeviceCredentials(ctx context.Context, deviceID string) (sdk.DeviceCredentials, errors.SDKError) {
	ret := m.Called(ctx, deviceID)

	return ret.Get(0).(sdk.DeviceCredentials), sdkError(ret, 1)
}

func (m *SDK) DeviceProfiles(ctx context.Context, pm sdk.PageMetadata) (sdk.DeviceProfilesPage, errors.SDKError) {
	ret := m.Called(ctx, pm)

	return ret.Get(0).(sdk.DeviceProfilesPage), sdkError(ret, 1)
}

func (m *SDK) CreateDeviceProfile(ctx context.Context, dp sdk.DeviceProfile) (sdk.DeviceProfile, errors.SDKError) {
	ret := m.Called(ctx, dp)

	return ret.Get(0).(sdk.DeviceProfile), sdkError(ret, 1)
}

func (m *SDK) Assets(ctx context.Context, pm sdk.PageMetadata) (sdk.AssetsPage, errors.SDKError) {
	ret := m.Called(ctx, pm)

	return ret.Get(0).(sdk.AssetsPage), sdkError(ret, 1)
}

func (m *SDK) CreateAsset(ctx context.Context, a sdk.Asset) (sdk.Asset, errors.SDKError) {
	ret := m.Called(ctx, a)

	return ret.Get(0).(sdk.Asset), sdkError(ret, 1)
}

func (m *SDK) Relations(ctx context.Context, from sdk.EntityID) ([]sdk.Relation, errors.SDKError) {
	ret := m.Called(ctx, from)

	return ret.Get(0).([]sdk.Relation), sdkError(ret, 1)
}

func (m *SDK) FieldMembers(ctx context.Context, fieldID string) ([]sdk.EntityID, errors.SDKError) {
	ret := m.Called(ctx, fieldID)

	return ret.Get(0).([]sdk.EntityID), sdkError(ret, 1)
}

func (m *SDK) CreateRelation(ctx context.Context, r sdk.Relation) errors.SDKError {
	ret := m.Called(ctx, r)

	return sdkError(ret, 0)
}

func (m *SDK) SaveAttributes(ctx context.Context, entity sdk.EntityID, scope string, attrs sdk.Metadata) errors.SDKError {
	ret := m.Called(ctx, entity, scope, attrs)

	return sdkError(ret, 0)
}

func (m *SDK) Attributes(ctx context.Context, entity sdk.EntityID, scope string) ([]sdk.Attribute, errors.SDKError) {
	ret := m.Called(ctx, entity, scope)

	return ret.Get(0).([]sdk.Attribute), sdkError(ret, 1)
}

func (m *SDK) LatestTelemetry(ctx context.Context, entity sdk.EntityID, keys ...string) (map[string]string, errors.SDKError) {
	ret := m.Called(ctx, entity, keys)

	return ret.Get(0).(map[string]string), sdkError(ret, 1)
}

func (m *SDK) SendDeviceTelemetry(ctx context.Context, accessToken string, payload sdk.Telemetry) errors.SDKError {
	ret := m.Called(ctx, accessToken, payload)

	return sdkError(ret, 0)
}

func (m *SDK) SendTelemetry(ctx context.Context, entity sdk.EntityID, payload sdk.Telemetry) errors.SDKError {
	ret := m.Called(ctx, entity, payload)

	return sdkError(ret, 0)
}

func (m *SDK) Dashboards(ctx context.Context, pm sdk.PageMetadata) (sdk.DashboardsPage, errors.SDKError) {
	ret := m.Called(ctx, pm)

	return ret.Get(0).(sdk.DashboardsPage), sdkError(ret, 1)
}

func sdkError(ret mock.Arguments, i int) errors.SDKError {
	if err, ok := ret.Get(i).(errors.SDKError); ok {
		return err
	}

	return nil
}
