// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/absmach/fieldsim/pkg/errors"
)

const (
	devicesEndpoint        = "api/tenant/devices"
	deviceEndpoint         = "api/device"
	credentialsEndpoint    = "credentials"
	deviceProfilesEndpoint = "api/deviceProfiles"
	deviceProfileEndpoint  = "api/deviceProfile"

	defaultProfileType = "DEFAULT"
	disabledProvision  = "DISABLED"
)

// EntityID identifies any backend entity.
type EntityID struct {
	ID         string `json:"id"`
	EntityType string `json:"entityType"`
}

// Device represents a backend device. Type holds the device profile name.
type Device struct {
	ID              EntityID `json:"id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Label           string   `json:"label,omitempty"`
	DeviceProfileID EntityID `json:"deviceProfileId"`
	CreatedTime     int64    `json:"createdTime,omitempty"`
}

// DeviceCredentials holds the access token a device submits telemetry with.
type DeviceCredentials struct {
	DeviceID        EntityID `json:"deviceId"`
	CredentialsType string   `json:"credentialsType"`
	CredentialsID   string   `json:"credentialsId"`
}

// DeviceProfile represents a device profile.
type DeviceProfile struct {
	ID            EntityID `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Type          string   `json:"type,omitempty"`
	TransportType string   `json:"transportType,omitempty"`
	ProvisionType string   `json:"provisionType,omitempty"`
	ProfileData   Metadata `json:"profileData,omitempty"`
}

type createDeviceReq struct {
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Label           string    `json:"label,omitempty"`
	DeviceProfileID *EntityID `json:"deviceProfileId,omitempty"`
}

type createDeviceProfileReq struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Type          string   `json:"type"`
	TransportType string   `json:"transportType"`
	ProvisionType string   `json:"provisionType"`
	ProfileData   Metadata `json:"profileData"`
}

func (sdk *tbSDK) Devices(ctx context.Context, pm PageMetadata) (DevicesPage, errors.SDKError) {
	url := sdk.withQueryParams(devicesEndpoint, pm)

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, url, nil, http.StatusOK)
	if sdkerr != nil {
		return DevicesPage{}, sdkerr
	}

	var dp DevicesPage
	if err := json.Unmarshal(body, &dp); err != nil {
		return DevicesPage{}, errors.NewSDKError(err)
	}

	return dp, nil
}

func (sdk *tbSDK) CreateDevice(ctx context.Context, d Device) (Device, errors.SDKError) {
	req := createDeviceReq{
		Name:  d.Name,
		Type:  d.Type,
		Label: d.Label,
	}
	if d.DeviceProfileID.ID != "" {
		req.DeviceProfileID = &EntityID{ID: d.DeviceProfileID.ID, EntityType: EntityDeviceProfile}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return Device{}, errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s", sdk.backendURL, deviceEndpoint)
	body, sdkerr := sdk.authRequest(ctx, http.MethodPost, url, data, http.StatusOK)
	if sdkerr != nil {
		return Device{}, sdkerr
	}

	var device Device
	if err := json.Unmarshal(body, &device); err != nil {
		return Device{}, errors.NewSDKError(err)
	}

	return device, nil
}

func (sdk *tbSDK) DeviceCredentials(ctx context.Context, deviceID string) (DeviceCredentials, errors.SDKError) {
	url := fmt.Sprintf("%s/%s/%s/%s", sdk.backendURL, deviceEndpoint, deviceID, credentialsEndpoint)

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, url, nil, http.StatusOK)
	if sdkerr != nil {
		return DeviceCredentials{}, sdkerr
	}

	var dc DeviceCredentials
	if err := json.Unmarshal(body, &dc); err != nil {
		return DeviceCredentials{}, errors.NewSDKError(err)
	}
	if dc.CredentialsID == "" {
		return DeviceCredentials{}, errors.NewSDKError(errors.Wrap(ErrFailedFetch, errors.ErrNotFound))
	}

	return dc, nil
}

func (sdk *tbSDK) DeviceProfiles(ctx context.Context, pm PageMetadata) (DeviceProfilesPage, errors.SDKError) {
	url := sdk.withQueryParams(deviceProfilesEndpoint, pm)

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, url, nil, http.StatusOK)
	if sdkerr != nil {
		return DeviceProfilesPage{}, sdkerr
	}

	var dpp DeviceProfilesPage
	if err := json.Unmarshal(body, &dpp); err != nil {
		return DeviceProfilesPage{}, errors.NewSDKError(err)
	}

	return dpp, nil
}

func (sdk *tbSDK) CreateDeviceProfile(ctx context.Context, dp DeviceProfile) (DeviceProfile, errors.SDKError) {
	req := createDeviceProfileReq{
		Name:          dp.Name,
		Description:   dp.Description,
		Type:          valueOr(dp.Type, defaultProfileType),
		TransportType: valueOr(dp.TransportType, defaultProfileType),
		ProvisionType: valueOr(dp.ProvisionType, disabledProvision),
		ProfileData:   dp.ProfileData,
	}
	if req.ProfileData == nil {
		req.ProfileData = Metadata{
			"configuration":          Metadata{"type": defaultProfileType},
			"transportConfiguration": Metadata{"type": defaultProfileType},
		}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return DeviceProfile{}, errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s", sdk.backendURL, deviceProfileEndpoint)
	body, sdkerr := sdk.authRequest(ctx, http.MethodPost, url, data, http.StatusOK)
	if sdkerr != nil {
		return DeviceProfile{}, sdkerr
	}

	var profile DeviceProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return DeviceProfile{}, errors.NewSDKError(err)
	}

	return profile, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
